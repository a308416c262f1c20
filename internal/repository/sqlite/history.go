package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kmoran-dev/soundshelf/internal/domain"
)

// HistoryRepository implements domain.HistoryRepository using SQLite.
type HistoryRepository struct {
	db *sql.DB
}

func (r *HistoryRepository) Add(ctx context.Context, userID int64, track domain.Track) (*domain.HistoryEntry, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO listening_history (user_id, track_id, track_name, artist_name, artwork_url, preview_url, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, track.TrackID, track.TrackName, track.ArtistName, track.ArtworkURL, track.PreviewURL, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get history id: %w", err)
	}

	return &domain.HistoryEntry{ID: id, UserID: userID, Track: track, PlayedAt: now}, nil
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.HistoryEntry, int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, track_id, track_name, artist_name, artwork_url, preview_url, played_at
		 FROM listening_history WHERE user_id = ?
		 ORDER BY played_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries, err := scanHistory(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM listening_history WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	return entries, total, nil
}

func (r *HistoryRepository) RecentlyPlayed(ctx context.Context, userID int64, limit int) ([]domain.HistoryEntry, error) {
	// One row per distinct track: the latest play wins.
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, track_id, track_name, artist_name, artwork_url, preview_url, played_at
		 FROM listening_history
		 WHERE user_id = ? AND id IN (
		     SELECT MAX(id) FROM listening_history WHERE user_id = ? GROUP BY track_id
		 )
		 ORDER BY played_at DESC, id DESC LIMIT ?`,
		userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recently played: %w", err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (r *HistoryRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM listening_history WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func scanHistory(rows *sql.Rows) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.TrackID, &e.TrackName,
			&e.ArtistName, &e.ArtworkURL, &e.PreviewURL, &e.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
