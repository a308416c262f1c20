package handler

import (
	"net/http"
	"strconv"

	"github.com/kmoran-dev/soundshelf/internal/service"
)

// HistoryHandler handles listening-history HTTP requests.
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// HandleList returns a page of the caller's history.
// GET /api/history?limit=...&offset=...
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, total, err := h.history.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		respondError(w, err, "list history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history": toHistoryEntryDTOs(entries),
		"total":   total,
	})
}

// HandleRecord appends a play to the caller's history.
// POST /api/history
func (h *HistoryHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req trackRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	entry, err := h.history.Record(r.Context(), user.ID, req.toTrack())
	if err != nil {
		respondError(w, err, "record play")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"entry": toHistoryEntryDTO(entry),
	})
}

// HandleRecentlyPlayed returns the latest play per distinct track.
// GET /api/history/recent?limit=...
func (h *HistoryHandler) HandleRecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.history.RecentlyPlayed(r.Context(), user.ID, limit)
	if err != nil {
		respondError(w, err, "list recently played")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history": toHistoryEntryDTOs(entries),
	})
}

// HandleClear deletes the caller's entire history.
// DELETE /api/history
func (h *HistoryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.history.Clear(r.Context(), user.ID); err != nil {
		respondError(w, err, "clear history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
