package sources

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_flavr/internal/engine"
	"golang.org/x/sync/errgroup"
)

const curatedLookupConcurrency = 4

// Curated is a Source over a fixed list of content links, each resolved
// individually through oEmbed. Links that cannot be resolved are skipped.
type Curated struct {
	Links  []string
	OEmbed *OEmbed
}

// NewCurated builds the curated-links source.
func NewCurated(links []string, oe *OEmbed) *Curated {
	return &Curated{Links: links, OEmbed: oe}
}

func (c *Curated) Name() string { return "curated" }

// Fetch resolves every link concurrently and keeps list order.
func (c *Curated) Fetch(ctx context.Context) ([]engine.RawItem, error) {
	resolved := make([]*engine.RawItem, len(c.Links))

	var g errgroup.Group
	g.SetLimit(curatedLookupConcurrency)
	for i, link := range c.Links {
		g.Go(func() error {
			resolved[i] = c.resolve(ctx, link)
			return nil
		})
	}
	_ = g.Wait()

	items := make([]engine.RawItem, 0, len(resolved))
	for _, it := range resolved {
		if it != nil {
			items = append(items, *it)
		}
	}
	if len(items) == 0 && len(c.Links) > 0 {
		return nil, errors.New("curated: no link could be resolved")
	}
	return items, nil
}

func (c *Curated) resolve(ctx context.Context, link string) *engine.RawItem {
	meta := c.OEmbed.Lookup(ctx, link)
	if meta == nil {
		return nil
	}
	item := MetadataItem(link, meta)
	return &item
}

// MetadataItem turns resolved link metadata into a RawItem.
func MetadataItem(link string, meta *Metadata) engine.RawItem {
	item := engine.RawItem{
		Platform: meta.Platform,
		Title:    meta.Title,
		Link:     link,
		Image:    meta.ThumbnailURL,
		Author:   meta.AuthorName,
		Video:    meta.Video,
	}
	if meta.Platform == engine.PlatformYouTube {
		if id := extractVideoID(link); id != "" {
			item.NativeID = id
			item.Link = WatchURL(id)
		}
	}
	return item
}
