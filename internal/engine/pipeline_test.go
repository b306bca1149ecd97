package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSource(name string, items ...RawItem) Source {
	return SourceFunc{ID: name, Fn: func(context.Context) ([]RawItem, error) { return items, nil }}
}

func failingSource(name string) Source {
	return SourceFunc{ID: name, Fn: func(context.Context) ([]RawItem, error) {
		return nil, errors.New("upstream unavailable")
	}}
}

func video(id, title string) RawItem {
	return RawItem{
		Platform: PlatformYouTube,
		NativeID: id,
		Title:    title,
		Link:     "https://www.youtube.com/watch?v=" + id,
		Video:    true,
	}
}

func ids(cards []RecipeCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestDedupe(t *testing.T) {
	in := []RecipeCard{{ID: "A", Title: "first"}, {ID: "B"}, {ID: "A", Title: "second"}, {ID: "C"}}
	got := Dedupe(in)
	assert.Equal(t, []string{"A", "B", "C"}, ids(got))
	assert.Equal(t, "first", got[0].Title, "first occurrence wins")

	// Idempotent.
	assert.Equal(t, ids(got), ids(Dedupe(got)))

	assert.Empty(t, Dedupe(nil))
}

func TestFilterCards(t *testing.T) {
	cards := []RecipeCard{
		{ID: "1", Title: "Creamy Pasta Bake", Tags: []string{"aggregated"}},
		{ID: "2", Title: "Tomato Soup", Tags: []string{"trending", "video"}},
		{ID: "3", Title: "Green Salad", Tags: []string{"aggregated"}},
	}
	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"1", "2", "3"}},
		{"   ", []string{"1", "2", "3"}},
		{"PASTA", []string{"1"}},
		{"video", []string{"2"}},
		{"aggreg", []string{"1", "3"}},
		{"sushi", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterCards(cards, tt.filter)))
		})
	}
}

func TestTruncate(t *testing.T) {
	cards := make([]RecipeCard, 50)
	for i := range cards {
		cards[i].ID = fmt.Sprintf("c%02d", i)
	}
	got := Truncate(cards, 36)
	require.Len(t, got, 36)
	assert.Equal(t, "c00", got[0].ID)
	assert.Equal(t, "c35", got[35].ID)

	assert.Len(t, Truncate(cards, 0), 50, "limit 0 disables the cap")
	assert.Len(t, Truncate(cards[:3], 36), 3)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 30},
		{-5, 30},
		{10, 10},
		{60, 60},
		{61, 60},
		{1000, 60},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in, DiscoverDefaultLimit, DiscoverMaxLimit); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAggregatorMergesInSourceOrder(t *testing.T) {
	slow := SourceFunc{ID: "slow", Fn: func(ctx context.Context) ([]RawItem, error) {
		time.Sleep(30 * time.Millisecond)
		return []RawItem{video("a", "Alpha"), video("b", "Beta")}, nil
	}}
	fast := staticSource("fast", video("b", "Beta again"), video("c", "Gamma"))

	agg := NewAggregator("test", []Source{slow, fast}, time.Second, TagTrending, TagAggregated)
	cards, err := agg.Build(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"yt_a", "yt_b", "yt_c"}, ids(cards))
	assert.Equal(t, "Beta", cards[1].Title, "earlier source wins a duplicate")
	assert.Equal(t, []string{"trending", "aggregated"}, cards[0].Tags)
}

func TestAggregatorCap(t *testing.T) {
	items := make([]RawItem, 50)
	for i := range items {
		items[i] = video(fmt.Sprintf("v%02d", i), fmt.Sprintf("Recipe %d", i))
	}
	agg := NewAggregator("test", []Source{staticSource("yt", items...)}, time.Second)

	cards, err := agg.Build(context.Background(), "", TrendingLimit)
	require.NoError(t, err)
	require.Len(t, cards, 36)
	assert.Equal(t, "yt_v00", cards[0].ID)
	assert.Equal(t, "yt_v35", cards[35].ID)
}

func TestAggregatorFilterBeforeCap(t *testing.T) {
	items := []RawItem{
		video("1", "Soup one"), video("2", "Pasta one"), video("3", "Soup two"),
		video("4", "Pasta two"), video("5", "Pasta three"),
	}
	agg := NewAggregator("test", []Source{staticSource("yt", items...)}, time.Second)
	cards, err := agg.Build(context.Background(), "pasta", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"yt_2", "yt_4"}, ids(cards))
}

func TestAggregatorIsolatesFailures(t *testing.T) {
	panicky := SourceFunc{ID: "panicky", Fn: func(context.Context) ([]RawItem, error) {
		panic("boom")
	}}
	hanging := SourceFunc{ID: "hanging", Fn: func(ctx context.Context) ([]RawItem, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	good := staticSource("good", video("ok", "Still here"))

	agg := NewAggregator("test", []Source{failingSource("down"), panicky, hanging, good}, 50*time.Millisecond)
	start := time.Now()
	cards, err := agg.Build(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"yt_ok"}, ids(cards))
	assert.Less(t, time.Since(start), 2*time.Second, "hanging source must be cut off by its timeout")
}

func TestAggregatorAllSourcesFail(t *testing.T) {
	agg := NewAggregator("test", []Source{failingSource("a"), failingSource("b")}, time.Second)
	cards, err := agg.Build(context.Background(), "", 0)
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestAggregatorNoSources(t *testing.T) {
	agg := NewAggregator("test", nil, time.Second)
	cards, err := agg.Build(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestAggregatorCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	agg := NewAggregator("test", []Source{staticSource("yt", video("a", "A"))}, time.Second)
	cards, err := agg.Build(ctx, "", 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, cards)
}

func TestAggregatorSources(t *testing.T) {
	srcs := []Source{staticSource("a"), staticSource("b")}
	agg := NewAggregator("test", srcs, time.Second)
	require.Len(t, agg.Sources(), 2)
	assert.Equal(t, "a", agg.Sources()[0].Name())
}
