package engine

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestNormalizeDefaults(t *testing.T) {
	card := Normalize(RawItem{})

	if card.Title != "Imported" {
		t.Errorf("Title = %q, want %q", card.Title, "Imported")
	}
	if card.Image != PlaceholderImage {
		t.Errorf("Image = %q, want placeholder", card.Image)
	}
	if card.TimeMinutes != 30 {
		t.Errorf("TimeMinutes = %d, want 30", card.TimeMinutes)
	}
	if card.Source.Platform != PlatformSource {
		t.Errorf("Platform = %q, want %q", card.Source.Platform, PlatformSource)
	}
	if card.Ingredients == nil || card.Steps == nil || card.Tags == nil {
		t.Error("Ingredients/Steps/Tags must be non-nil")
	}
	if card.VideoURL != nil {
		t.Errorf("VideoURL = %q, want nil", *card.VideoURL)
	}
	if !strings.HasPrefix(card.ID, "src_") {
		t.Errorf("ID = %q, want src_ prefix", card.ID)
	}
}

func TestNormalizeImageNeverEmpty(t *testing.T) {
	for _, img := range []string{"", "   ", "\n"} {
		if got := Normalize(RawItem{Title: "x", Image: img}).Image; got == "" {
			t.Errorf("Normalize(image=%q).Image is empty", img)
		}
	}
	if got := Normalize(RawItem{Image: " https://img.test/a.jpg "}).Image; got != "https://img.test/a.jpg" {
		t.Errorf("Image = %q, want trimmed source image", got)
	}
}

func TestNormalizeMinutes(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"Ready in 45 min", 45},
		{"Quick Soup", 30},
		{"10 MINUTE pasta", 10},
		{"Braised beef 180min", 180},
		{"0 min nonsense", 30},
		{"99999 min marathon", 30},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := Normalize(RawItem{Title: tt.title}).TimeMinutes; got != tt.want {
				t.Errorf("TimeMinutes(%q) = %d, want %d", tt.title, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	card := Normalize(RawItem{Title: "  <b>Mac &amp; Cheese</b>\n  in   one pot "})
	if card.Title != "Mac & Cheese in one pot" {
		t.Errorf("Title = %q", card.Title)
	}

	long := strings.Repeat("é", 500)
	card = Normalize(RawItem{Title: long})
	if n := utf8.RuneCountInString(card.Title); n > 201 {
		t.Errorf("long title has %d runes, want <= 201", n)
	}
	if !utf8.ValidString(card.Title) {
		t.Error("truncated title is not valid UTF-8")
	}
}

func TestNormalizeVideo(t *testing.T) {
	card := Normalize(RawItem{
		Platform: PlatformYouTube,
		NativeID: "abc123",
		Link:     "https://www.youtube.com/watch?v=abc123",
		Video:    true,
	})
	if card.ID != "yt_abc123" {
		t.Errorf("ID = %q, want yt_abc123", card.ID)
	}
	if card.VideoURL == nil || *card.VideoURL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("VideoURL = %v, want the watch link", card.VideoURL)
	}

	blog := Normalize(RawItem{Platform: PlatformBlog, Link: "https://blog.test/soup", Video: false})
	if blog.VideoURL != nil {
		t.Errorf("blog VideoURL = %q, want nil", *blog.VideoURL)
	}
}

func TestNormalizeTags(t *testing.T) {
	card := Normalize(RawItem{Title: "x"}, "Trending", " aggregated ", "trending", "", "VIDEO")
	want := []string{"trending", "aggregated", "video"}
	if len(card.Tags) != len(want) {
		t.Fatalf("Tags = %v, want %v", card.Tags, want)
	}
	for i := range want {
		if card.Tags[i] != want[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, card.Tags[i], want[i])
		}
	}
}

func TestNormalizePublishedAt(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	at := time.Date(2026, 2, 1, 15, 0, 0, 0, loc)
	card := Normalize(RawItem{Title: "x", PublishedAt: at, Author: " Chef "})
	if card.PublishedAt == nil || !card.PublishedAt.Equal(at) || card.PublishedAt.Location() != time.UTC {
		t.Errorf("PublishedAt = %v, want %v in UTC", card.PublishedAt, at)
	}
	if card.Author != "Chef" {
		t.Errorf("Author = %q, want Chef", card.Author)
	}
	if Normalize(RawItem{Title: "x"}).PublishedAt != nil {
		t.Error("zero PublishedAt should stay nil")
	}
}

func TestCardID(t *testing.T) {
	t.Run("native id", func(t *testing.T) {
		if got := CardID(PlatformYouTube, "dQw4w9WgXcQ", "https://youtu.be/x"); got != "yt_dQw4w9WgXcQ" {
			t.Errorf("CardID = %q", got)
		}
	})

	t.Run("hashed link is stable", func(t *testing.T) {
		a := CardID(PlatformBlog, "", "https://blog.test/soup")
		b := CardID(PlatformBlog, "", "https://blog.test/soup")
		if a != b {
			t.Errorf("CardID not deterministic: %q != %q", a, b)
		}
		if !strings.HasPrefix(a, "blog_") || len(a) != len("blog_")+12 {
			t.Errorf("CardID = %q, want blog_ + 12 hex chars", a)
		}
	})

	t.Run("platform is part of the hash", func(t *testing.T) {
		a := CardID(PlatformBlog, "", "https://x.test/1")
		b := CardID(PlatformSource, "", "https://x.test/1")
		if strings.TrimPrefix(a, "blog_") == strings.TrimPrefix(b, "src_") {
			t.Errorf("different platforms produced the same hash: %q %q", a, b)
		}
	})

	t.Run("no link falls back to random", func(t *testing.T) {
		a := CardID(PlatformVideo, "", "")
		b := CardID(PlatformVideo, "", "")
		if a == b {
			t.Errorf("random ids collided: %q", a)
		}
		if !strings.HasPrefix(a, "vid_") {
			t.Errorf("CardID = %q, want vid_ prefix", a)
		}
	})

	t.Run("prefixes", func(t *testing.T) {
		tests := []struct {
			platform Platform
			prefix   string
		}{
			{PlatformYouTube, "yt_"},
			{PlatformBlog, "blog_"},
			{PlatformVideo, "vid_"},
			{PlatformInstagram, "ig_"},
			{PlatformTikTok, "tt_"},
			{PlatformSource, "src_"},
			{Platform("Other"), "src_"},
		}
		for _, tt := range tests {
			if got := CardID(tt.platform, "1", ""); got != tt.prefix+"1" {
				t.Errorf("CardID(%q) = %q, want %q", tt.platform, got, tt.prefix+"1")
			}
		}
	})
}

func TestExtractMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Ready in 45 min", 45},
		{"20mins flat", 20},
		{"No time here", 0},
		{"", 0},
		{"1441 min", 0},
	}
	for _, tt := range tests {
		if got := ExtractMinutes(tt.in); got != tt.want {
			t.Errorf("ExtractMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Creamy PASTA bake", "pasta") {
		t.Error("ContainsFold should ignore case")
	}
	if ContainsFold("Soup", "pasta") {
		t.Error("ContainsFold false positive")
	}
}
