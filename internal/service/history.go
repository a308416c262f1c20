package service

import (
	"context"
	"fmt"

	"github.com/kmoran-dev/soundshelf/internal/domain"
)

// HistoryService handles a user's listening history.
type HistoryService struct {
	history domain.HistoryRepository
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(history domain.HistoryRepository) *HistoryService {
	return &HistoryService{history: history}
}

// Record appends a play to the user's history. Duplicate tracks are fine;
// each call is a separate listen.
func (s *HistoryService) Record(ctx context.Context, userID int64, track domain.Track) (*domain.HistoryEntry, error) {
	if track.TrackID == 0 || track.TrackName == "" || track.ArtistName == "" {
		return nil, fmt.Errorf("%w: trackId, trackName, and artistName are required", domain.ErrInvalidInput)
	}
	return s.history.Add(ctx, userID, track)
}

// List returns a page of the user's history, newest first, along with the
// total number of entries.
func (s *HistoryService) List(ctx context.Context, userID int64, limit, offset int) ([]domain.HistoryEntry, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.history.ListByUser(ctx, userID, limit, offset)
}

// RecentlyPlayed returns the latest play per distinct track, newest first.
func (s *HistoryService) RecentlyPlayed(ctx context.Context, userID int64, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.history.RecentlyPlayed(ctx, userID, limit)
}

// Clear deletes the user's entire history.
func (s *HistoryService) Clear(ctx context.Context, userID int64) error {
	return s.history.Clear(ctx, userID)
}
