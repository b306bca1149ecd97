package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// PlaceholderImage is served whenever a source has no thumbnail.
const PlaceholderImage = "https://images.unsplash.com/photo-1504674900247-0877df9cc836?auto=format&fit=crop&w=800&q=60"

const (
	defaultTitle   = "Imported"
	defaultMinutes = 30
	maxTitleRunes  = 200
)

// Standard tags.
const (
	TagAggregated = "aggregated"
	TagImported   = "imported"
	TagTrending   = "trending"
	TagVideo      = "video"
)

var idPrefixes = map[Platform]string{
	PlatformYouTube:   "yt",
	PlatformBlog:      "blog",
	PlatformVideo:     "vid",
	PlatformInstagram: "ig",
	PlatformTikTok:    "tt",
	PlatformSource:    "src",
}

// Normalize converts a RawItem into a RecipeCard. It performs no I/O.
func Normalize(item RawItem, tags ...string) RecipeCard {
	platform := item.Platform
	if platform == "" {
		platform = PlatformSource
	}

	title := CleanHTML(item.Title)
	if title == "" {
		title = defaultTitle
	}
	title = TruncateRunes(title, maxTitleRunes, "…")

	image := strings.TrimSpace(item.Image)
	if image == "" {
		image = PlaceholderImage
	}

	minutes := ExtractMinutes(title)
	if minutes == 0 {
		minutes = defaultMinutes
	}

	link := strings.TrimSpace(item.Link)
	card := RecipeCard{
		ID:          CardID(platform, item.NativeID, link),
		Title:       title,
		Image:       image,
		TimeMinutes: minutes,
		Source:      CardSource{Platform: platform, URL: link},
		Ingredients: []string{},
		Steps:       []string{},
		Tags:        normalizeTags(tags),
		Author:      strings.TrimSpace(item.Author),
	}
	if item.Video && link != "" {
		card.VideoURL = &link
	}
	if !item.PublishedAt.IsZero() {
		ts := item.PublishedAt.UTC()
		card.PublishedAt = &ts
	}
	return card
}

// CardID derives a stable id: prefix + native id when known, otherwise a
// hash of (platform, link). Only items with neither get a random id.
func CardID(platform Platform, nativeID, link string) string {
	prefix, ok := idPrefixes[platform]
	if !ok {
		prefix = idPrefixes[PlatformSource]
	}
	if id := strings.TrimSpace(nativeID); id != "" {
		return prefix + "_" + id
	}
	if link != "" {
		sum := sha256.Sum256([]byte(string(platform) + "|" + link))
		return prefix + "_" + hex.EncodeToString(sum[:6])
	}
	return prefix + "_" + uuid.NewString()
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
