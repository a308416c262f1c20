package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kmoran-dev/soundshelf/internal/domain"
)

// FavoriteRepository implements domain.FavoriteRepository using SQLite.
type FavoriteRepository struct {
	db *sql.DB
}

func (r *FavoriteRepository) Add(ctx context.Context, userID int64, track domain.Track) (*domain.Favorite, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, track_id, track_name, artist_name, artwork_url, preview_url, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, track.TrackID, track.TrackName, track.ArtistName, track.ArtworkURL, track.PreviewURL, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("insert favorite: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get favorite id: %w", err)
	}

	return &domain.Favorite{ID: id, UserID: userID, Track: track, AddedAt: now}, nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, trackID int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id = ? AND track_id = ?", userID, trackID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return requireRowAffected(result)
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, track_id, track_name, artist_name, artwork_url, preview_url, added_at
		 FROM favorites WHERE user_id = ? ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []domain.Favorite
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.TrackID, &f.TrackName,
			&f.ArtistName, &f.ArtworkURL, &f.PreviewURL, &f.AddedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (r *FavoriteRepository) Contains(ctx context.Context, userID, trackID int64) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM favorites WHERE user_id = ? AND track_id = ?",
		userID, trackID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return true, nil
}
