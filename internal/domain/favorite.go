package domain

import (
	"context"
	"time"
)

// Favorite is a track a user has marked as a favorite. A user can favorite
// a given track at most once.
type Favorite struct {
	ID     int64
	UserID int64
	Track
	AddedAt time.Time
}

// FavoriteRepository defines persistence operations for favorites.
type FavoriteRepository interface {
	Add(ctx context.Context, userID int64, track Track) (*Favorite, error)
	Remove(ctx context.Context, userID, trackID int64) error
	ListByUser(ctx context.Context, userID int64) ([]Favorite, error)
	Contains(ctx context.Context, userID, trackID int64) (bool, error)
}
