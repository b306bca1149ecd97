package engine

import (
	"net/http"
	"time"
)

// Limits applied by the endpoints.
const (
	TrendingLimit        = 36
	DiscoverDefaultLimit = 30
	DiscoverMaxLimit     = 60
	YouTubeMaxBatch      = 50
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Port                  string
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	TrendingQueries       []string
	TrendingPerQuery      int
	TrendingLimit         int
	TrendingTTL           time.Duration
	AdminSecret           string
	RedisURL              string
	FetchTimeout          time.Duration // per outbound HTTP request
	SourceTimeout         time.Duration // per adapter within one aggregation run
	HostInterval          time.Duration // min spacing between calls to one host
	HTTPClient            *http.Client
}

// DefaultTrendingQueries seed the video search when TRENDING_QUERIES is unset.
var DefaultTrendingQueries = []string{
	"easy dinner recipe",
	"quick pasta recipe",
	"healthy meal prep",
	"one pot recipe",
	"air fryer recipe",
	"dessert recipe",
}

// WithDefaults fills zero fields with the service defaults.
func (c Config) WithDefaults() Config {
	if c.Port == "" {
		c.Port = "8080"
	}
	if len(c.TrendingQueries) == 0 {
		c.TrendingQueries = DefaultTrendingQueries
	}
	if c.TrendingPerQuery <= 0 {
		c.TrendingPerQuery = 12
	}
	c.TrendingPerQuery = min(c.TrendingPerQuery, YouTubeMaxBatch)
	if c.TrendingLimit <= 0 {
		c.TrendingLimit = TrendingLimit
	}
	if c.TrendingTTL <= 0 {
		c.TrendingTTL = 15 * time.Minute
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = 8 * time.Second
	}
	if c.HostInterval < 0 {
		c.HostInterval = 0
	}
	if c.HTTPClient == nil {
		c.HTTPClient = NewHTTPClient(c.FetchTimeout)
	}
	return c
}
