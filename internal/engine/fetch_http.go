package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Accept headers for the kinds of documents the adapters read.
const (
	AcceptFeed = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
	AcceptJSON = "application/json"
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

const defaultMaxBody = 4 << 20

// ErrBodyTooLarge is returned when a response exceeds Fetcher.MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher performs outbound GETs with retry and per-host pacing.
type Fetcher struct {
	Client          *http.Client
	Limiter         *HostRateLimiter
	UserAgent       string
	MaxTries        uint
	InitialInterval time.Duration
	MaxBodyBytes    int64
}

// NewFetcher returns a Fetcher with the service defaults.
func NewFetcher(client *http.Client, limiter *HostRateLimiter) *Fetcher {
	if client == nil {
		client = NewHTTPClient(10 * time.Second)
	}
	return &Fetcher{
		Client:          client,
		Limiter:         limiter,
		UserAgent:       UserAgentBot,
		MaxTries:        3,
		InitialInterval: 500 * time.Millisecond,
		MaxBodyBytes:    defaultMaxBody,
	}
}

// Get fetches rawURL and returns the body. Non-2xx responses come back as
// *StatusError; 429 and 5xx are retried with exponential backoff.
func (f *Fetcher) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	operation := func() ([]byte, error) {
		if err := f.Limiter.WaitForHost(ctx, rawURL); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rate limit %s: %w", rawURL, err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", f.UserAgent)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := f.Client.Do(req)
		if err != nil {
			if isRetryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
			if IsRetryableStatus(resp.StatusCode) {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}

		limit := f.MaxBodyBytes
		if limit <= 0 {
			limit = defaultMaxBody
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rawURL, err)
		}
		if int64(len(body)) > limit {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, rawURL, limit))
		}
		return body, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.InitialInterval
	bo.MaxInterval = 5 * time.Second

	tries := f.MaxTries
	if tries == 0 {
		tries = 1
	}
	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(tries), backoff.WithMaxElapsedTime(30*time.Second))
}
