package sources

import (
	"net/url"
	"regexp"
	"strings"
)

// YouTube support is split across files by responsibility:
//   youtube.go         URL helpers shared by every YouTube path
//   youtube_search.go  trending search via the Data API v3
//   feed.go            channel uploads via the public Atom feed

const ytWatchURL = "https://www.youtube.com/watch?v="

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// extractVideoID pulls the 11-char video ID from any YouTube URL format.
func extractVideoID(rawURL string) string {
	m := videoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// WatchURL returns the canonical watch link for a video id.
func WatchURL(videoID string) string {
	return ytWatchURL + videoID
}

// hostOf returns the lowercased host of rawURL without a leading "www." or "m.".
func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	return host
}

// hostMatches reports whether host is domain or one of its subdomains.
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
