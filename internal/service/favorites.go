package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kmoran-dev/soundshelf/internal/domain"
)

// FavoritesService handles a user's favorite tracks.
type FavoritesService struct {
	favorites domain.FavoriteRepository
}

// NewFavoritesService creates a new FavoritesService.
func NewFavoritesService(favorites domain.FavoriteRepository) *FavoritesService {
	return &FavoritesService{favorites: favorites}
}

// Add marks a track as a favorite. A track can be favorited at most once
// per user.
func (s *FavoritesService) Add(ctx context.Context, userID int64, track domain.Track) (*domain.Favorite, error) {
	if track.TrackID == 0 || track.TrackName == "" || track.ArtistName == "" {
		return nil, fmt.Errorf("%w: trackId, trackName, and artistName are required", domain.ErrInvalidInput)
	}

	favorite, err := s.favorites.Add(ctx, userID, track)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: track already in favorites", domain.ErrConflict)
		}
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	return favorite, nil
}

// Remove unfavorites a track.
func (s *FavoritesService) Remove(ctx context.Context, userID, trackID int64) error {
	if err := s.favorites.Remove(ctx, userID, trackID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: track not in favorites", domain.ErrNotFound)
		}
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// List returns the user's favorites, most recently added first.
func (s *FavoritesService) List(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	return s.favorites.ListByUser(ctx, userID)
}

// Contains reports whether the user has favorited the given track.
func (s *FavoritesService) Contains(ctx context.Context, userID, trackID int64) (bool, error) {
	return s.favorites.Contains(ctx, userID, trackID)
}
