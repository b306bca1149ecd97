package recipeserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_flavr/internal/engine"
	"github.com/anatolykoptev/go_flavr/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TrendingInput is the input for the trending_recipes tool.
type TrendingInput struct {
	Query string `json:"query,omitempty" jsonschema:"Optional case-insensitive filter on title or tags"`
}

// DiscoverInput is the input for the discover_recipes tool.
type DiscoverInput struct {
	Query string `json:"query,omitempty" jsonschema:"Optional case-insensitive filter on title or tags"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default: 30, max: 60)"`
}

// LookupInput is the input for the lookup_recipe_link tool.
type LookupInput struct {
	URL string `json:"url" jsonschema:"Recipe page or video URL"`
}

// CardsOutput is the structured output shared by the list tools.
type CardsOutput struct {
	Count int                 `json:"count"`
	Cards []engine.RecipeCard `json:"cards"`
}

// RegisterTools registers the recipe tools on the given MCP server:
// trending_recipes, discover_recipes, lookup_recipe_link. It returns the
// number of tools added.
func (s *Server) RegisterTools(server *mcp.Server) int {
	registrars := []func(*mcp.Server){
		s.registerTrending,
		s.registerDiscover,
		s.registerLookup,
	}
	for _, register := range registrars {
		register(server)
	}
	return len(registrars)
}

func (s *Server) registerTrending(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "trending_recipes",
		Description: "Popular recipe videos from the last two weeks, refreshed every few minutes. Returns recipe cards (title, image, estimated minutes, source link, video URL, tags).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input TrendingInput) (*mcp.CallToolResult, CardsOutput, error) {
		cards, err := s.Trending.Get(ctx, false)
		if err != nil {
			return nil, CardsOutput{}, fmt.Errorf("trending: %w", err)
		}
		cards = toolutil.Cards(engine.FilterCards(cards, toolutil.NormQuery(input.Query)))
		return nil, CardsOutput{Count: len(cards), Cards: cards}, nil
	})
}

func (s *Server) registerDiscover(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "discover_recipes",
		Description: "Fresh recipes from curated blogs, cooking channels and hand-picked videos. Computed on every call; supports a text filter and a result limit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input DiscoverInput) (*mcp.CallToolResult, CardsOutput, error) {
		limit := engine.ClampLimit(input.Limit, engine.DiscoverDefaultLimit, engine.DiscoverMaxLimit)
		cards, err := s.Discover.Build(ctx, toolutil.NormQuery(input.Query), limit)
		if err != nil {
			return nil, CardsOutput{}, fmt.Errorf("discover: %w", err)
		}
		cards = toolutil.Cards(cards)
		return nil, CardsOutput{Count: len(cards), Cards: cards}, nil
	})
}

func (s *Server) registerLookup(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "lookup_recipe_link",
		Description: "Resolve a recipe page or video link into a recipe card using oEmbed or the page's OpenGraph tags. Ingredients and steps are not extracted.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input LookupInput) (*mcp.CallToolResult, engine.RecipeCard, error) {
		if input.URL == "" {
			return nil, engine.RecipeCard{}, fmt.Errorf("url is required")
		}
		card, err := s.Importer.Import(ctx, input.URL)
		if err != nil {
			return nil, engine.RecipeCard{}, err
		}
		return nil, card, nil
	})
}
