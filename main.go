// go_flavr: Flavr Collector, a recipe aggregation relay.
//
// Serves trending recipe videos (YouTube search, cached) and on-demand
// discovery (blog feeds, channel feeds, curated oEmbed links) as JSON over
// HTTP, plus the same pipelines as MCP tools on /mcp.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go_flavr/internal/engine"
	"github.com/anatolykoptev/go_flavr/internal/engine/sources"
	"github.com/anatolykoptev/go_flavr/internal/recipeserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	initLogger(env.Str("LOG_LEVEL", "info"), env.Str("LOG_FORMAT", "text"))

	cfg := loadConfig()
	slog.Info("starting go_flavr",
		slog.String("version", version),
		slog.String("port", cfg.Port),
		slog.Int("trending_queries", len(cfg.TrendingQueries)),
		slog.Bool("youtube_key", cfg.YouTubeAPIKey != "" || cfg.YouTubeAPIKeyFallback != ""),
		slog.Bool("admin_secret", cfg.AdminSecret != ""))

	srv := newServer(cfg)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()
	slog.Info("listening", slog.String("addr", httpSrv.Addr))

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	return engine.Config{
		Port:                  env.Str("PORT", "8080"),
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		TrendingQueries:       env.List("TRENDING_QUERIES", ""),
		TrendingPerQuery:      env.Int("TRENDING_PER_QUERY", 12),
		TrendingLimit:         env.Int("TRENDING_LIMIT", engine.TrendingLimit),
		TrendingTTL:           time.Duration(env.Int("TRENDING_TTL_MINUTES", 15)) * time.Minute,
		AdminSecret:           env.Str("ADMIN_SECRET", ""),
		RedisURL:              env.Str("REDIS_URL", ""),
		FetchTimeout:          env.Duration("FETCH_TIMEOUT", 10*time.Second),
		SourceTimeout:         env.Duration("SOURCE_TIMEOUT", 8*time.Second),
		HostInterval:          env.Duration("HOST_INTERVAL", 250*time.Millisecond),
	}.WithDefaults()
}

func newServer(cfg engine.Config) *recipeserver.Server {
	limiter := engine.NewHostRateLimiter(cfg.HostInterval)
	fetcher := engine.NewFetcher(cfg.HTTPClient, limiter)
	// Import targets come from callers; only public addresses are dialed.
	pageFetcher := engine.NewFetcher(engine.NewPublicHTTPClient(cfg.FetchTimeout), limiter)
	oe := sources.NewOEmbed(fetcher)

	// Trending: YouTube search per query, cached for the TTL.
	keys := []string{cfg.YouTubeAPIKey, cfg.YouTubeAPIKeyFallback}
	if cfg.YouTubeAPIKey == "" && cfg.YouTubeAPIKeyFallback == "" {
		slog.Warn("YOUTUBE_API_KEY not set, trending will be empty")
	}
	trendingAgg := engine.NewAggregator("trending",
		sources.YouTubeSearchSources(cfg.TrendingQueries, keys, cfg.TrendingPerQuery, cfg.HTTPClient),
		cfg.SourceTimeout,
		engine.TagTrending, engine.TagAggregated, engine.TagVideo)
	trendingLimit := cfg.TrendingLimit
	trending := engine.NewFreshnessCache("trending", cfg.TrendingTTL,
		func(ctx context.Context) ([]engine.RecipeCard, error) {
			return trendingAgg.Build(ctx, "", trendingLimit)
		},
		engine.WithRedis(engine.NewRedisClient(cfg.RedisURL), "flavr:trending"))

	// Discover: feeds and curated links, recomputed per request.
	discover := engine.NewAggregator("discover",
		sources.DiscoverSources(fetcher, oe, sources.BlogFeeds, sources.ChannelFeeds, sources.CuratedLinks),
		cfg.SourceTimeout,
		engine.TagAggregated)

	srv := &recipeserver.Server{
		Trending:    trending,
		Discover:    discover,
		Importer:    &recipeserver.Importer{OEmbed: oe, Pages: sources.NewPageMeta(pageFetcher)},
		AdminSecret: cfg.AdminSecret,
		Started:     time.Now(),
	}
	if cfg.AdminSecret == "" {
		slog.Warn("ADMIN_SECRET not set, /admin/refresh-trending is disabled")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "go_flavr",
		Version: version,
	}, nil)
	tools := srv.RegisterTools(mcpServer)
	srv.MCP = mcpServer
	slog.Info("tools registered", slog.Int("count", tools))
	return srv
}

func initLogger(level, format string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
