package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/kmoran-dev/soundshelf/internal/catalog"
)

// SongHandler proxies catalog search to the iTunes Search API.
type SongHandler struct {
	catalog *catalog.Client
}

// NewSongHandler creates a new SongHandler.
func NewSongHandler(c *catalog.Client) *SongHandler {
	return &SongHandler{catalog: c}
}

// HandleSearch searches the catalog.
// GET /api/songs/search?term=...&limit=...
func (h *SongHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("term"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	songs, err := h.catalog.Search(r.Context(), term, limit)
	if err != nil {
		respondError(w, err, "search songs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"songs": songs,
		"count": len(songs),
	})
}

// HandleTrending returns the current top songs.
// GET /api/songs/trending?limit=...
func (h *SongHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	songs, err := h.catalog.Trending(r.Context(), limit)
	if err != nil {
		respondError(w, err, "get trending songs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"songs": songs,
		"count": len(songs),
	})
}
