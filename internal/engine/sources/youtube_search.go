package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_flavr/internal/engine"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTube search via the Data API v3, restricted to recent uploads and ordered by
// view count as a popularity proxy.

const ytRecentWindow = 14 * 24 * time.Hour

// YouTubeSearch is a Source for one trending query term.
type YouTubeSearch struct {
	Query    string
	APIKeys  []string // primary first; later keys are tried on quota errors
	Batch    int
	Client   *http.Client
	Endpoint string // API base override; empty uses the public endpoint
	Retry    engine.RetryConfig
	Now      func() time.Time
}

// NewYouTubeSearch builds a search source for query. Empty keys are dropped;
// with no key left the source is a no-op.
func NewYouTubeSearch(query string, apiKeys []string, batch int, client *http.Client) *YouTubeSearch {
	var keys []string
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return &YouTubeSearch{
		Query:   query,
		APIKeys: keys,
		Batch:   batch,
		Client:  client,
		Retry:   engine.DefaultRetryConfig,
		Now:     time.Now,
	}
}

// YouTubeSearchSources builds one source per query term.
func YouTubeSearchSources(queries, apiKeys []string, batch int, client *http.Client) []engine.Source {
	out := make([]engine.Source, 0, len(queries))
	for _, q := range queries {
		out = append(out, NewYouTubeSearch(q, apiKeys, batch, client))
	}
	return out
}

func (y *YouTubeSearch) Name() string { return "youtube:" + y.Query }

// Fetch runs the search. Without an API key it returns no items and no error.
func (y *YouTubeSearch) Fetch(ctx context.Context) ([]engine.RawItem, error) {
	if len(y.APIKeys) == 0 {
		slog.Debug("youtube: no API key configured, skipping", slog.String("query", y.Query))
		return nil, nil
	}

	var lastErr error
	for i, key := range y.APIKeys {
		items, err := engine.RetryDo(ctx, y.Retry, func() ([]engine.RawItem, error) {
			return y.search(ctx, key)
		})
		if err == nil {
			return items, nil
		}
		lastErr = err
		if !isQuotaError(err) {
			break
		}
		if i+1 < len(y.APIKeys) {
			slog.Debug("youtube data API key failed, trying fallback", slog.Any("err", err))
		}
	}
	return nil, fmt.Errorf("youtube search %q: %w", y.Query, lastErr)
}

func (y *YouTubeSearch) search(ctx context.Context, apiKey string) ([]engine.RawItem, error) {
	svc, err := y.service(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	batch := y.Batch
	if batch <= 0 {
		batch = 10
	}
	batch = min(batch, engine.YouTubeMaxBatch)

	now := time.Now
	if y.Now != nil {
		now = y.Now
	}
	publishedAfter := now().Add(-ytRecentWindow).UTC().Format(time.RFC3339)

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(y.Query).
		Type("video").
		Order("viewCount").
		PublishedAfter(publishedAfter).
		MaxResults(int64(batch)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	items := make([]engine.RawItem, 0, len(resp.Items))
	for _, r := range resp.Items {
		if r.Id == nil || r.Id.VideoId == "" || r.Snippet == nil {
			continue
		}
		item := engine.RawItem{
			Platform: engine.PlatformYouTube,
			NativeID: r.Id.VideoId,
			Title:    r.Snippet.Title,
			Link:     WatchURL(r.Id.VideoId),
			Image:    bestThumbnail(r.Snippet.Thumbnails),
			Author:   r.Snippet.ChannelTitle,
			Video:    true,
		}
		if ts, err := time.Parse(time.RFC3339, r.Snippet.PublishedAt); err == nil {
			item.PublishedAt = ts
		}
		items = append(items, item)
	}
	return items, nil
}

func (y *YouTubeSearch) service(ctx context.Context, apiKey string) (*youtube.Service, error) {
	base := y.Client
	if base == nil {
		base = http.DefaultClient
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	client := &http.Client{
		Timeout:   base.Timeout,
		Transport: &transport.APIKey{Key: apiKey, Transport: rt},
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if y.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(y.Endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}

// bestThumbnail prefers the largest rendition present.
func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// isQuotaError reports whether err means this key is exhausted or rejected.
func isQuotaError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusForbidden || gErr.Code == http.StatusTooManyRequests
	}
	return false
}
