package handler

import (
	"net/http"

	"github.com/kmoran-dev/soundshelf/internal/service"
)

// FavoritesHandler handles favorite-track HTTP requests.
type FavoritesHandler struct {
	favorites *service.FavoritesService
}

// NewFavoritesHandler creates a new FavoritesHandler.
func NewFavoritesHandler(favorites *service.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites}
}

// HandleList returns the caller's favorites.
// GET /api/favorites
func (h *FavoritesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	favorites, err := h.favorites.List(r.Context(), user.ID)
	if err != nil {
		respondError(w, err, "list favorites")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"favorites": toFavoriteDTOs(favorites),
	})
}

// HandleAdd favorites a track.
// POST /api/favorites
func (h *FavoritesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req trackRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	favorite, err := h.favorites.Add(r.Context(), user.ID, req.toTrack())
	if err != nil {
		respondError(w, err, "add favorite")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"favorite": toFavoriteDTO(favorite),
	})
}

// HandleContains reports whether the caller has favorited a track.
// GET /api/favorites/{trackId}
func (h *FavoritesHandler) HandleContains(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	trackID, ok := pathID(w, r, "trackId")
	if !ok {
		return
	}

	isFavorite, err := h.favorites.Contains(r.Context(), user.ID, trackID)
	if err != nil {
		respondError(w, err, "check favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": isFavorite})
}

// HandleRemove unfavorites a track.
// DELETE /api/favorites/{trackId}
func (h *FavoritesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	trackID, ok := pathID(w, r, "trackId")
	if !ok {
		return
	}

	if err := h.favorites.Remove(r.Context(), user.ID, trackID); err != nil {
		respondError(w, err, "remove favorite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
