package engine

import (
	"context"
	"time"
)

// Platform tags where a card came from.
type Platform string

const (
	PlatformYouTube   Platform = "YouTube"
	PlatformBlog      Platform = "Blog"
	PlatformVideo     Platform = "Video"
	PlatformSource    Platform = "Source"
	PlatformInstagram Platform = "Instagram"
	PlatformTikTok    Platform = "TikTok"
)

// Source fetches raw items from one external provider.
// Implementations return an error for any failed call; the Aggregator
// isolates it and treats the source as having contributed nothing.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawItem, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc struct {
	ID string
	Fn func(ctx context.Context) ([]RawItem, error)
}

func (s SourceFunc) Name() string { return s.ID }

func (s SourceFunc) Fetch(ctx context.Context) ([]RawItem, error) { return s.Fn(ctx) }

// --- Internal types ---

// RawItem is one adapter result before normalization.
type RawItem struct {
	Platform    Platform
	NativeID    string // provider id (video id, guid); empty when unknown
	Title       string
	Link        string
	Image       string
	Author      string
	PublishedAt time.Time
	Video       bool // item is inherently playable
}

// --- Output types (JSON responses) ---

// CardSource points back at the original content.
type CardSource struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
}

// RecipeCard is the canonical record served by every endpoint.
type RecipeCard struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Image       string     `json:"image"`
	TimeMinutes int        `json:"timeMinutes"`
	Source      CardSource `json:"source"`
	Ingredients []string   `json:"ingredients"`
	Steps       []string   `json:"steps"`
	VideoURL    *string    `json:"videoUrl"`
	Tags        []string   `json:"tags"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// CacheEntry is the single trending slot: when it was built and what it holds.
type CacheEntry struct {
	Timestamp time.Time    `json:"timestamp"`
	Data      []RecipeCard `json:"data"`
}

// Age reports how old the entry is at now. A never-built entry is infinitely old.
func (e CacheEntry) Age(now time.Time) time.Duration {
	if e.Timestamp.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(e.Timestamp)
}
