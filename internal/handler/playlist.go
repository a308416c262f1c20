package handler

import (
	"net/http"
	"strconv"

	"github.com/kmoran-dev/soundshelf/internal/service"
)

// PlaylistHandler handles playlist HTTP requests.
type PlaylistHandler struct {
	playlists *service.PlaylistService
}

// NewPlaylistHandler creates a new PlaylistHandler.
func NewPlaylistHandler(playlists *service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists}
}

// HandleList returns the caller's playlists with song counts.
// GET /api/playlists
func (h *PlaylistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	summaries, err := h.playlists.ListByOwner(r.Context(), user.ID)
	if err != nil {
		respondError(w, err, "list playlists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlists": toPlaylistSummaryDTOs(summaries),
	})
}

// HandleCreate creates a playlist.
// POST /api/playlists
// Request: {"name":"...","description":"...","isPublic":false}
func (h *PlaylistHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"isPublic"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	playlist, err := h.playlists.Create(r.Context(), user.ID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		respondError(w, err, "create playlist")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"playlist": toPlaylistDTO(playlist),
	})
}

// HandleGet returns a playlist with its songs. Works for the owner and,
// for public playlists, for anyone including anonymous callers.
// GET /api/playlists/{id}
func (h *PlaylistHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var callerID *int64
	if user := UserFromContext(r.Context()); user != nil {
		callerID = &user.ID
	}

	detail, access, err := h.playlists.Get(r.Context(), id, callerID)
	if err != nil {
		respondError(w, err, "get playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": toPlaylistDetailDTO(detail, access.IsOwner),
	})
}

// HandleUpdate renames a playlist.
// PUT /api/playlists/{id}
// Request: {"name":"...","description":"..."}
func (h *PlaylistHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	playlist, err := h.playlists.Update(r.Context(), id, user.ID, req.Name, req.Description)
	if err != nil {
		respondError(w, err, "update playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": toPlaylistDTO(playlist),
	})
}

// HandleSetVisibility toggles a playlist between public and private.
// PUT /api/playlists/{id}/visibility
// Request: {"isPublic":true}
func (h *PlaylistHandler) HandleSetVisibility(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		IsPublic bool `json:"isPublic"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	playlist, err := h.playlists.SetVisibility(r.Context(), id, user.ID, req.IsPublic)
	if err != nil {
		respondError(w, err, "set playlist visibility")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": toPlaylistDTO(playlist),
	})
}

// HandleDelete deletes a playlist and its songs.
// DELETE /api/playlists/{id}
func (h *PlaylistHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.playlists.Delete(r.Context(), id, user.ID); err != nil {
		respondError(w, err, "delete playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleAddSong adds a track to a playlist.
// POST /api/playlists/{id}/songs
func (h *PlaylistHandler) HandleAddSong(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req trackRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	song, err := h.playlists.AddTrack(r.Context(), id, user.ID, req.toTrack())
	if err != nil {
		respondError(w, err, "add track to playlist")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"song": toPlaylistSongDTO(song),
	})
}

// HandleRemoveSong removes a track from a playlist.
// DELETE /api/playlists/{id}/songs/{trackId}
func (h *PlaylistHandler) HandleRemoveSong(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	trackID, ok := pathID(w, r, "trackId")
	if !ok {
		return
	}

	if err := h.playlists.RemoveTrack(r.Context(), id, user.ID, trackID); err != nil {
		respondError(w, err, "remove track from playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// HandleSearchPublic searches public playlists. No authentication needed.
// GET /api/playlists/public/search?term=...&limit=...
func (h *PlaylistHandler) HandleSearchPublic(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	summaries, err := h.playlists.SearchPublic(r.Context(), term, limit)
	if err != nil {
		respondError(w, err, "search public playlists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlists": toPlaylistSummaryDTOs(summaries),
	})
}

// pathID parses an int64 path value, writing a 400 response on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return id, true
}
