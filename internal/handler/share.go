package handler

import (
	"net/http"

	"github.com/kmoran-dev/soundshelf/internal/service"
)

// ShareHandler resolves share links to playlists.
type ShareHandler struct {
	playlists *service.PlaylistService
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(playlists *service.PlaylistService) *ShareHandler {
	return &ShareHandler{playlists: playlists}
}

// HandleGetShared returns a shared playlist by its token. No auth: the
// token itself is the capability. A token whose playlist has gone private
// resolves as not found.
// GET /api/shared/{token}
func (h *ShareHandler) HandleGetShared(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	detail, err := h.playlists.ResolveByShareToken(r.Context(), token)
	if err != nil {
		respondError(w, err, "resolve shared playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": toSharedPlaylistDTO(detail),
	})
}
