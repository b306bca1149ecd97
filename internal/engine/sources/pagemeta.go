package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_flavr/internal/engine"
)

// PageMeta reads OpenGraph/Twitter card tags from a page. It only looks at
// head metadata; recipe bodies are never extracted.
type PageMeta struct {
	Fetcher *engine.Fetcher
}

// NewPageMeta builds a page metadata reader.
func NewPageMeta(fetcher *engine.Fetcher) *PageMeta {
	return &PageMeta{Fetcher: fetcher}
}

// Lookup fetches pageURL and returns its title/image metadata.
func (p *PageMeta) Lookup(ctx context.Context, pageURL string) (*Metadata, error) {
	body, err := p.Fetcher.Get(ctx, pageURL, engine.AcceptHTML)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", pageURL, err)
	}
	meta, err := parsePageMeta(body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}
	return meta, nil
}

func parsePageMeta(body []byte, pageURL string) (*Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	meta := &Metadata{Platform: PlatformFor(pageURL)}
	meta.Title = firstNonEmpty(
		metaContent(doc, "og:title"),
		metaContent(doc, "twitter:title"),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	meta.AuthorName = firstNonEmpty(
		metaContent(doc, "author"),
		metaContent(doc, "article:author"),
	)
	meta.ProviderName = metaContent(doc, "og:site_name")

	image := firstNonEmpty(
		metaContent(doc, "og:image:secure_url"),
		metaContent(doc, "og:image"),
		metaContent(doc, "twitter:image"),
	)
	if image != "" {
		image = absoluteURL(pageURL, image)
		if isValidImageScheme(image) {
			meta.ThumbnailURL = image
		}
	}

	ogType := metaContent(doc, "og:type")
	meta.Video = strings.HasPrefix(ogType, "video") || metaContent(doc, "og:video") != ""
	return meta, nil
}

// metaContent reads <meta property=name> or <meta name=name>.
func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)).First()
	v, _ := sel.Attr("content")
	return strings.TrimSpace(v)
}

func absoluteURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
