package recipeserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_flavr/internal/engine"
	"github.com/anatolykoptev/go_flavr/internal/toolutil"
)

const adminSecretHeader = "X-Admin-Secret"

type refreshResponse struct {
	OK          bool      `json:"ok"`
	Count       int       `json:"count"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

type healthResponse struct {
	OK     bool    `json:"ok"`
	Uptime float64 `json:"uptime"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Flavr Collector is running. Use GET /trending, GET /discover, POST /import")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	toolutil.WriteJSON(w, http.StatusOK, healthResponse{
		OK:     true,
		Uptime: time.Since(s.Started).Seconds(),
	})
}

// handleTrending serves the cached trending list; q filters the cached copy.
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Trending.Get(r.Context(), false)
	if err != nil {
		s.internalError(w, "trending", err)
		return
	}
	cards = engine.FilterCards(cards, toolutil.NormQuery(r.URL.Query().Get("q")))
	toolutil.WriteJSON(w, http.StatusOK, toolutil.Cards(cards))
}

func (s *Server) handleRefreshTrending(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		toolutil.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}
	entry, err := s.Trending.Refresh(r.Context())
	if err != nil {
		s.internalError(w, "refresh-trending", err)
		return
	}
	toolutil.WriteJSON(w, http.StatusOK, refreshResponse{
		OK:          true,
		Count:       len(entry.Data),
		RefreshedAt: entry.Timestamp.UTC(),
	})
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := toolutil.ParseLimit(q.Get("limit"), engine.DiscoverDefaultLimit, engine.DiscoverMaxLimit)
	cards, err := s.Discover.Build(r.Context(), toolutil.NormQuery(q.Get("q")), limit)
	if err != nil {
		s.internalError(w, "discover", err)
		return
	}
	toolutil.WriteJSON(w, http.StatusOK, toolutil.Cards(cards))
}

type importRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		toolutil.WriteError(w, http.StatusMethodNotAllowed, "Use POST /import with JSON { url }")
		return
	}
	var req importRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		toolutil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		toolutil.WriteError(w, http.StatusBadRequest, "Missing url")
		return
	}
	card, err := s.Importer.Import(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, ErrInvalidURL) {
			toolutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.internalError(w, "import", err)
		return
	}
	toolutil.WriteJSON(w, http.StatusOK, card)
}

// authorized checks the shared secret from the header or the secret query
// parameter. An unset secret rejects every request.
func (s *Server) authorized(r *http.Request) bool {
	if s.AdminSecret == "" {
		return false
	}
	got := r.Header.Get(adminSecretHeader)
	if got == "" {
		got = r.URL.Query().Get("secret")
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.AdminSecret)) == 1
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error("request failed", slog.String("op", op), slog.Any("error", err))
	toolutil.WriteError(w, http.StatusInternalServerError, "internal error")
}
