package recipeserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/anatolykoptev/go_flavr/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectTools(t *testing.T, env *testEnv) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "go_flavr", Version: "test"}, nil)
	require.Equal(t, 3, env.srv.RegisterTools(server))

	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool[T any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (T, *mcp.CallToolResult) {
	t.Helper()
	var out T
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if res.IsError || res.StructuredContent == nil {
		return out, res
	}
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out, res
}

func TestRegisterToolsList(t *testing.T) {
	cs := connectTools(t, newTestEnv(t))
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"trending_recipes", "discover_recipes", "lookup_recipe_link"}, names)
}

func TestTrendingTool(t *testing.T) {
	env := newTestEnv(t)
	cs := connectTools(t, env)

	out, res := callTool[CardsOutput](t, cs, "trending_recipes", map[string]any{})
	require.False(t, res.IsError)
	assert.Equal(t, 2, out.Count)
	require.Len(t, out.Cards, 2)
	assert.Equal(t, "yt_pasta1", out.Cards[0].ID)

	out, _ = callTool[CardsOutput](t, cs, "trending_recipes", map[string]any{"query": "soup"})
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, int32(1), env.builds.Load())
}

func TestDiscoverTool(t *testing.T) {
	env := newTestEnv(t)
	cs := connectTools(t, env)

	out, res := callTool[CardsOutput](t, cs, "discover_recipes", map[string]any{"limit": 7})
	require.False(t, res.IsError)
	assert.Equal(t, 7, out.Count)
	assert.Equal(t, 7, env.discover.limit)

	out, _ = callTool[CardsOutput](t, cs, "discover_recipes", map[string]any{})
	assert.Equal(t, engine.DiscoverDefaultLimit, out.Count)

	_, _ = callTool[CardsOutput](t, cs, "discover_recipes", map[string]any{"limit": 1000})
	assert.Equal(t, engine.DiscoverMaxLimit, env.discover.limit)
}

func TestLookupTool(t *testing.T) {
	cs := connectTools(t, newTestEnv(t))

	card, res := callTool[engine.RecipeCard](t, cs, "lookup_recipe_link", map[string]any{"url": "https://www.tiktok.com/@chef/video/123"})
	require.False(t, res.IsError)
	assert.Equal(t, engine.PlatformTikTok, card.Source.Platform)
	assert.Equal(t, []string{"imported"}, card.Tags)

	_, res = callTool[engine.RecipeCard](t, cs, "lookup_recipe_link", map[string]any{"url": "ftp://files.test/a"})
	assert.True(t, res.IsError)

	_, res = callTool[engine.RecipeCard](t, cs, "lookup_recipe_link", map[string]any{"url": "http://169.254.169.254/latest/meta-data/"})
	assert.True(t, res.IsError, "metadata address is refused")
}
