package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Aggregator fans out to a fixed set of sources and merges their results.
type Aggregator struct {
	name          string
	sources       []Source
	tags          []string
	sourceTimeout time.Duration
}

// NewAggregator builds an aggregator named name (used for logs and metrics).
// Every card it produces carries tags.
func NewAggregator(name string, sources []Source, sourceTimeout time.Duration, tags ...string) *Aggregator {
	return &Aggregator{
		name:          name,
		sources:       sources,
		tags:          tags,
		sourceTimeout: sourceTimeout,
	}
}

// Sources returns the configured sources in fan-out order.
func (a *Aggregator) Sources() []Source { return a.sources }

// Build runs the fan-out -> normalize -> dedupe -> filter -> cap pipeline.
// limit <= 0 disables the cap. Per-source failures never surface here; the only
// error is the caller's context ending before the merge.
func (a *Aggregator) Build(ctx context.Context, filter string, limit int) ([]RecipeCard, error) {
	var out []RecipeCard
	err := TrackOperation(ctx, a.name, func(ctx context.Context) error {
		var err error
		out, err = a.build(ctx, filter, limit)
		return err
	})
	return out, err
}

func (a *Aggregator) build(ctx context.Context, filter string, limit int) ([]RecipeCard, error) {
	// --- Parallel fetch ---
	results := make([][]RawItem, len(a.sources))
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, src)
			return nil // non-fatal
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s aggregation: %w", a.name, err)
	}

	// --- Normalize + merge in configuration order ---
	var merged []RecipeCard
	for _, items := range results {
		for _, item := range items {
			merged = append(merged, Normalize(item, a.tags...))
		}
	}

	merged = Dedupe(merged)
	merged = FilterCards(merged, filter)
	merged = Truncate(merged, limit)

	slog.Debug("aggregation done",
		slog.String("pipeline", a.name),
		slog.Int("sources", len(a.sources)),
		slog.Int("cards", len(merged)))
	return merged, nil
}

// fetchOne runs a single source under its own timeout, converting errors
// and panics into an empty contribution.
func (a *Aggregator) fetchOne(ctx context.Context, src Source) (items []RawItem) {
	name := src.Name()
	if a.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.sourceTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("source panicked",
				slog.String("pipeline", a.name),
				slog.String("source", name),
				slog.Any("panic", r))
			recordSource(name, "panic", 0)
			items = nil
		}
	}()

	items, err := src.Fetch(ctx)
	if err != nil {
		slog.Warn("source unavailable",
			slog.String("pipeline", a.name),
			slog.String("source", name),
			slog.Any("error", err))
		recordSource(name, "error", 0)
		return nil
	}
	recordSource(name, "ok", len(items))
	return items
}

// Dedupe keeps the first card for every id, preserving first-seen order.
func Dedupe(cards []RecipeCard) []RecipeCard {
	seen := make(map[string]bool, len(cards))
	out := make([]RecipeCard, 0, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// FilterCards keeps cards whose title or any tag contains filter, ignoring case.
// An empty filter keeps everything.
func FilterCards(cards []RecipeCard, filter string) []RecipeCard {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return cards
	}
	out := make([]RecipeCard, 0, len(cards))
	for _, c := range cards {
		if matchesFilter(c, filter) {
			out = append(out, c)
		}
	}
	return out
}

func matchesFilter(c RecipeCard, filter string) bool {
	if ContainsFold(c.Title, filter) {
		return true
	}
	for _, t := range c.Tags {
		if ContainsFold(t, filter) {
			return true
		}
	}
	return false
}

// Truncate caps cards at limit; limit <= 0 means no cap.
func Truncate(cards []RecipeCard, limit int) []RecipeCard {
	if limit > 0 && len(cards) > limit {
		return cards[:limit]
	}
	return cards
}

// ClampLimit applies the discover limit rules: non-positive -> def, above max -> max.
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
