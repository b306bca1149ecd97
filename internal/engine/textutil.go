package engine

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	minutesRe = regexp.MustCompile(`(?i)(\d+)\s*min`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// CleanHTML strips HTML tags, unescapes entities and collapses whitespace.
func CleanHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// ExtractMinutes finds the first "<N> min" in title.
// Returns 0 when there is no usable match.
func ExtractMinutes(title string) int {
	m := minutesRe.FindStringSubmatch(title)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 || n > 24*60 {
		return 0
	}
	return n
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
