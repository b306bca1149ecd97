package sources

import (
	"github.com/anatolykoptev/go_flavr/internal/engine"
)

// BlogFeeds are the recipe blogs polled by /discover.
var BlogFeeds = []string{
	"https://www.budgetbytes.com/feed/",
	"https://www.recipetineats.com/feed/",
	"https://minimalistbaker.com/feed/",
	"https://cookieandkate.com/feed/",
	"https://www.seriouseats.com/rss",
}

// ChannelFeeds are YouTube channel upload feeds polled by /discover.
var ChannelFeeds = []string{
	"https://www.youtube.com/feeds/videos.xml?channel_id=UCJFp8uSYCjXOMnkUyb3CQ3Q", // Tasty
	"https://www.youtube.com/feeds/videos.xml?channel_id=UChBEbMKI1eCcejTtmI32UEw", // Joshua Weissman
	"https://www.youtube.com/feeds/videos.xml?channel_id=UCRIZtPl9nb9RiXc9btSTQNw", // Food Wishes
}

// CuratedLinks are hand-picked videos resolved through oEmbed.
var CuratedLinks = []string{
	"https://www.youtube.com/watch?v=1-SJGQ2HLp8",
	"https://www.youtube.com/watch?v=bJUiWdM__Qw",
	"https://vimeo.com/76979871",
}

// DiscoverSources assembles the /discover fan-out: blog feeds, channel feeds,
// then curated links.
func DiscoverSources(fetcher *engine.Fetcher, oe *OEmbed, blogs, channels, curated []string) []engine.Source {
	out := make([]engine.Source, 0, len(blogs)+len(channels)+1)
	for _, u := range blogs {
		out = append(out, NewFeed(u, FeedBlog, fetcher))
	}
	for _, u := range channels {
		out = append(out, NewFeed(u, FeedChannel, fetcher))
	}
	if len(curated) > 0 {
		out = append(out, NewCurated(curated, oe))
	}
	return out
}
