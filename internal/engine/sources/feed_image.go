package sources

import (
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// ExtractImageURL returns the first thumbnail present on a feed entry.
// Priority: item image > media:thumbnail > media:group/media:thumbnail >
// media:content (image) > image enclosure > itunes:image.
// Only http/https URLs are accepted.
func ExtractImageURL(item *gofeed.Item) string {
	if item.Image != nil && isValidImageScheme(item.Image.URL) {
		return item.Image.URL
	}

	if media, ok := item.Extensions["media"]; ok {
		if u := mediaThumbnail(media); u != "" {
			return u
		}
		// YouTube channel feeds nest everything under media:group.
		for _, group := range media["group"] {
			if u := mediaThumbnail(group.Children); u != "" {
				return u
			}
		}
		if u := mediaContentImage(media); u != "" {
			return u
		}
	}

	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && isValidImageScheme(enc.URL) {
			return enc.URL
		}
	}

	if item.ITunesExt != nil && isValidImageScheme(item.ITunesExt.Image) {
		return item.ITunesExt.Image
	}
	return ""
}

func mediaThumbnail(m map[string][]ext.Extension) string {
	for _, thumb := range m["thumbnail"] {
		if u := thumb.Attrs["url"]; isValidImageScheme(u) {
			return u
		}
	}
	return ""
}

func mediaContentImage(m map[string][]ext.Extension) string {
	for _, c := range m["content"] {
		if c.Attrs["medium"] == "image" || strings.HasPrefix(c.Attrs["type"], "image/") {
			if u := c.Attrs["url"]; isValidImageScheme(u) {
				return u
			}
		}
	}
	return ""
}

// isValidImageScheme returns true if the URL has http or https scheme.
func isValidImageScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
