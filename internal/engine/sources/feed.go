package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/anatolykoptev/go_flavr/internal/engine"
	"github.com/mmcdole/gofeed"
)

// FeedKind selects how a syndication feed is interpreted.
type FeedKind string

const (
	FeedBlog    FeedKind = "blog"    // article feed, not playable
	FeedChannel FeedKind = "channel" // YouTube channel uploads
)

// Per-feed entry caps.
const (
	maxBlogEntries    = 8
	maxChannelEntries = 5
)

// Feed is a Source over one RSS/Atom feed.
type Feed struct {
	URL     string
	Kind    FeedKind
	Fetcher *engine.Fetcher
}

// NewFeed builds a feed source.
func NewFeed(feedURL string, kind FeedKind, fetcher *engine.Fetcher) *Feed {
	return &Feed{URL: feedURL, Kind: kind, Fetcher: fetcher}
}

func (f *Feed) Name() string {
	name := string(f.Kind) + ":" + hostOf(f.URL)
	if u, err := url.Parse(f.URL); err == nil {
		if id := u.Query().Get("channel_id"); id != "" {
			name += "/" + id
		}
	}
	return name
}

// Fetch downloads and parses the feed, returning at most the per-kind cap of
// the most recent entries.
func (f *Feed) Fetch(ctx context.Context) ([]engine.RawItem, error) {
	body, err := f.Fetcher.Get(ctx, f.URL, engine.AcceptFeed)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", f.URL, err)
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.URL, err)
	}
	return f.convert(feed), nil
}

func (f *Feed) convert(feed *gofeed.Feed) []engine.RawItem {
	entries := make([]*gofeed.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it != nil {
			entries = append(entries, it)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return itemTime(entries[i]).After(itemTime(entries[j]))
	})

	limit := maxBlogEntries
	if f.Kind == FeedChannel {
		limit = maxChannelEntries
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]engine.RawItem, 0, len(entries))
	for _, it := range entries {
		link := f.resolve(strings.TrimSpace(it.Link))
		raw := engine.RawItem{
			Title:       it.Title,
			Link:        link,
			Image:       ExtractImageURL(it),
			PublishedAt: itemTime(it),
		}
		if len(it.Authors) > 0 && it.Authors[0] != nil {
			raw.Author = it.Authors[0].Name
		} else if feed.Title != "" {
			raw.Author = feed.Title
		}

		switch f.Kind {
		case FeedChannel:
			raw.Platform = engine.PlatformYouTube
			raw.Video = true
			raw.NativeID = channelVideoID(it)
			if raw.Link == "" && raw.NativeID != "" {
				raw.Link = WatchURL(raw.NativeID)
			}
		default:
			raw.Platform = engine.PlatformBlog
		}
		items = append(items, raw)
	}
	return items
}

// resolve makes relative entry links absolute against the feed URL.
func (f *Feed) resolve(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.IsAbs() {
		return link
	}
	base, err := url.Parse(f.URL)
	if err != nil {
		return link
	}
	return base.ResolveReference(u).String()
}

func itemTime(it *gofeed.Item) time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return *it.UpdatedParsed
	}
	return time.Time{}
}

// channelVideoID reads yt:videoId, falling back to the "yt:video:<id>" guid
// and finally the link.
func channelVideoID(it *gofeed.Item) string {
	if yt, ok := it.Extensions["yt"]; ok {
		if ids := yt["videoId"]; len(ids) > 0 && ids[0].Value != "" {
			return strings.TrimSpace(ids[0].Value)
		}
	}
	if id, ok := strings.CutPrefix(it.GUID, "yt:video:"); ok && id != "" {
		return id
	}
	return extractVideoID(it.Link)
}
