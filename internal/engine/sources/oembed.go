package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_flavr/internal/engine"
)

// Metadata is the title/thumbnail summary of one content URL.
type Metadata struct {
	Title        string          `json:"title"`
	AuthorName   string          `json:"author_name,omitempty"`
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	ProviderName string          `json:"provider_name,omitempty"`
	Platform     engine.Platform `json:"platform"`
	Video        bool            `json:"video"`
}

// Provider is one oEmbed endpoint and the domains it serves.
type Provider struct {
	Name     string
	Domains  []string
	Endpoint string
	Platform engine.Platform
	Video    bool
}

// DefaultProviders are the oEmbed endpoints that need no credentials.
func DefaultProviders() []Provider {
	return []Provider{
		{Name: "YouTube", Domains: []string{"youtube.com", "youtu.be"}, Endpoint: "https://www.youtube.com/oembed", Platform: engine.PlatformYouTube, Video: true},
		{Name: "Vimeo", Domains: []string{"vimeo.com"}, Endpoint: "https://vimeo.com/api/oembed.json", Platform: engine.PlatformVideo, Video: true},
		{Name: "TikTok", Domains: []string{"tiktok.com"}, Endpoint: "https://www.tiktok.com/oembed", Platform: engine.PlatformTikTok, Video: true},
	}
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	ProviderName string `json:"provider_name"`
	Type         string `json:"type"`
}

// OEmbed resolves content URLs to metadata through provider endpoints.
type OEmbed struct {
	Fetcher   *engine.Fetcher
	Providers []Provider
}

// NewOEmbed builds a resolver over DefaultProviders.
func NewOEmbed(fetcher *engine.Fetcher) *OEmbed {
	return &OEmbed{Fetcher: fetcher, Providers: DefaultProviders()}
}

// ProviderFor picks the provider serving contentURL's domain.
func (o *OEmbed) ProviderFor(contentURL string) (Provider, bool) {
	host := hostOf(contentURL)
	if host == "" {
		return Provider{}, false
	}
	for _, p := range o.Providers {
		for _, d := range p.Domains {
			if hostMatches(host, d) {
				return p, true
			}
		}
	}
	return Provider{}, false
}

// Lookup returns metadata for contentURL, or nil when the domain is not
// recognized or the provider call fails.
func (o *OEmbed) Lookup(ctx context.Context, contentURL string) *Metadata {
	p, ok := o.ProviderFor(contentURL)
	if !ok {
		return nil
	}

	apiURL := p.Endpoint + "?" + url.Values{"url": {contentURL}, "format": {"json"}}.Encode()
	body, err := o.Fetcher.Get(ctx, apiURL, engine.AcceptJSON)
	if err != nil {
		slog.Warn("oembed lookup failed",
			slog.String("provider", p.Name),
			slog.String("url", contentURL),
			slog.Any("error", err))
		return nil
	}

	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("oembed decode failed",
			slog.String("provider", p.Name),
			slog.String("url", contentURL),
			slog.Any("error", fmt.Errorf("decode oembed: %w", err)))
		return nil
	}

	meta := &Metadata{
		Title:        strings.TrimSpace(resp.Title),
		AuthorName:   strings.TrimSpace(resp.AuthorName),
		ProviderName: resp.ProviderName,
		Platform:     p.Platform,
		Video:        p.Video || resp.Type == "video",
	}
	if isValidImageScheme(resp.ThumbnailURL) {
		meta.ThumbnailURL = resp.ThumbnailURL
	}
	if meta.ProviderName == "" {
		meta.ProviderName = p.Name
	}
	return meta
}

// PlatformFor classifies a content URL by domain, whether or not an oEmbed
// provider exists for it.
func PlatformFor(contentURL string) engine.Platform {
	host := hostOf(contentURL)
	switch {
	case hostMatches(host, "youtube.com"), hostMatches(host, "youtu.be"):
		return engine.PlatformYouTube
	case hostMatches(host, "instagram.com"):
		return engine.PlatformInstagram
	case hostMatches(host, "tiktok.com"):
		return engine.PlatformTikTok
	case hostMatches(host, "vimeo.com"):
		return engine.PlatformVideo
	}
	return engine.PlatformSource
}
