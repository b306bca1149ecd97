// Package toolutil provides shared helper functions for the REST handlers and MCP tools.
package toolutil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_flavr/internal/engine"
)

// NormQuery trims a free-text filter.
func NormQuery(q string) string {
	return strings.TrimSpace(q)
}

// ParseLimit reads a limit parameter leniently: anything unparsable or
// non-positive falls back to def, anything above maxLimit is clamped.
func ParseLimit(raw string, def, maxLimit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return engine.ClampLimit(n, def, maxLimit)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", slog.Any("error", err))
	}
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// Cards guarantees a JSON array ("[]", never "null").
func Cards(cards []engine.RecipeCard) []engine.RecipeCard {
	if cards == nil {
		return []engine.RecipeCard{}
	}
	return cards
}
