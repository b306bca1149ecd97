package recipeserver

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_flavr/internal/engine"
	"github.com/anatolykoptev/go_flavr/internal/engine/sources"
)

// ErrInvalidURL is returned for import targets that are not absolute http(s)
// URLs on a public host.
var ErrInvalidURL = errors.New("url must be an absolute http or https URL on a public host")

// Importer turns a single link into a RecipeCard from its metadata.
// Ingredients and steps stay empty: only title/thumbnail metadata is read.
type Importer struct {
	OEmbed *sources.OEmbed
	Pages  *sources.PageMeta
}

// Import resolves rawURL via oEmbed, falling back to the page's own meta tags.
// Metadata failures degrade to a placeholder card rather than an error.
func (im *Importer) Import(ctx context.Context, rawURL string) (engine.RecipeCard, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return engine.RecipeCard{}, ErrInvalidURL
	}
	if !engine.IsPublicHost(u.Hostname()) {
		return engine.RecipeCard{}, ErrInvalidURL
	}

	meta := im.lookup(ctx, rawURL)
	var item engine.RawItem
	if meta != nil {
		item = sources.MetadataItem(rawURL, meta)
	} else {
		item = engine.RawItem{Platform: sources.PlatformFor(rawURL), Link: rawURL}
	}
	return engine.Normalize(item, engine.TagImported), nil
}

func (im *Importer) lookup(ctx context.Context, rawURL string) *sources.Metadata {
	if im.OEmbed != nil {
		if meta := im.OEmbed.Lookup(ctx, rawURL); meta != nil {
			return meta
		}
	}
	if im.Pages == nil {
		return nil
	}
	meta, err := im.Pages.Lookup(ctx, rawURL)
	if err != nil {
		slog.Warn("import: page metadata unavailable", slog.String("url", rawURL), slog.Any("error", err))
		return nil
	}
	return meta
}
