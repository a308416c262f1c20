package domain

import (
	"context"
	"time"
)

// HistoryEntry records a single play of a track. Duplicate tracks are
// expected; each row is a distinct listen.
type HistoryEntry struct {
	ID     int64
	UserID int64
	Track
	PlayedAt time.Time
}

// HistoryRepository defines persistence operations for listening history.
type HistoryRepository interface {
	Add(ctx context.Context, userID int64, track Track) (*HistoryEntry, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]HistoryEntry, int, error)
	// RecentlyPlayed returns the most recent play per distinct track.
	RecentlyPlayed(ctx context.Context, userID int64, limit int) ([]HistoryEntry, error)
	Clear(ctx context.Context, userID int64) error
}
