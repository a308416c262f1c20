package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kmoran-dev/soundshelf/internal/domain"
)

// PlaylistRepository implements domain.PlaylistRepository using SQLite.
type PlaylistRepository struct {
	db *sql.DB
}

func (r *PlaylistRepository) Create(ctx context.Context, playlist *domain.Playlist) error {
	now := time.Now().UTC()
	var token sql.NullString
	if playlist.ShareToken != nil {
		token = sql.NullString{String: *playlist.ShareToken, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO playlists (user_id, name, description, is_public, share_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		playlist.OwnerID, playlist.Name, playlist.Description, playlist.IsPublic, token, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get playlist id: %w", err)
	}

	playlist.ID = id
	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	return nil
}

func (r *PlaylistRepository) GetByID(ctx context.Context, id int64) (*domain.Playlist, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, is_public, share_token, created_at, updated_at
		 FROM playlists WHERE id = ?`, id)
	return scanPlaylist(row)
}

func (r *PlaylistRepository) GetByShareToken(ctx context.Context, token string) (*domain.Playlist, error) {
	// The is_public gate is authoritative: a token column value on a
	// playlist that has gone private must not resolve.
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, is_public, share_token, created_at, updated_at
		 FROM playlists WHERE share_token = ? AND is_public = 1`, token)
	return scanPlaylist(row)
}

func scanPlaylist(row *sql.Row) (*domain.Playlist, error) {
	p := &domain.Playlist{}
	var token sql.NullString
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.IsPublic,
		&token, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan playlist: %w", err)
	}
	if token.Valid {
		p.ShareToken = &token.String
	}
	return p, nil
}

func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.PlaylistSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.name, p.description, p.is_public, p.share_token,
		        p.created_at, p.updated_at, u.name, COUNT(ps.id)
		 FROM playlists p
		 JOIN users u ON u.id = p.user_id
		 LEFT JOIN playlist_songs ps ON ps.playlist_id = p.id
		 WHERE p.user_id = ?
		 GROUP BY p.id
		 ORDER BY p.updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]domain.PlaylistSummary, error) {
	var summaries []domain.PlaylistSummary
	for rows.Next() {
		var s domain.PlaylistSummary
		var token sql.NullString
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.IsPublic,
			&token, &s.CreatedAt, &s.UpdatedAt, &s.OwnerName, &s.SongCount); err != nil {
			return nil, fmt.Errorf("scan playlist summary: %w", err)
		}
		if token.Valid {
			s.ShareToken = &token.String
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *PlaylistRepository) Update(ctx context.Context, id int64, name, description string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, description, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}
	return requireRowAffected(result)
}

// UpdateVisibility flips a playlist's visibility in a single conditional
// UPDATE so that concurrent toggles on the same playlist cannot race.
// When publishing, an existing token is kept (COALESCE) and the supplied
// one is installed only if the row has none; when unpublishing, the token
// is cleared and can never resolve again.
func (r *PlaylistRepository) UpdateVisibility(ctx context.Context, id int64, makePublic bool, token string) error {
	var (
		result sql.Result
		err    error
	)
	if makePublic {
		result, err = r.db.ExecContext(ctx,
			`UPDATE playlists
			 SET is_public = 1, share_token = COALESCE(share_token, ?), updated_at = ?
			 WHERE id = ?`,
			token, time.Now().UTC(), id)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE playlists
			 SET is_public = 0, share_token = NULL, updated_at = ?
			 WHERE id = ?`,
			time.Now().UTC(), id)
	}
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update playlist visibility: %w", err)
	}
	return requireRowAffected(result)
}

func (r *PlaylistRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return requireRowAffected(result)
}

// AddSong inserts the track and touches the parent's updated_at in one
// transaction, so a failure leaves neither change behind.
func (r *PlaylistRepository) AddSong(ctx context.Context, playlistID int64, track domain.Track) (*domain.PlaylistSong, error) {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin add song: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO playlist_songs (playlist_id, track_id, track_name, artist_name, artwork_url, preview_url, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		playlistID, track.TrackID, track.TrackName, track.ArtistName, track.ArtworkURL, track.PreviewURL, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("insert playlist song: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get song id: %w", err)
	}

	// Touch the parent row so owner listings sort recently edited first.
	if _, err := tx.ExecContext(ctx,
		"UPDATE playlists SET updated_at = ? WHERE id = ?", now, playlistID); err != nil {
		return nil, fmt.Errorf("touch playlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add song: %w", err)
	}

	return &domain.PlaylistSong{
		ID:         id,
		PlaylistID: playlistID,
		Track:      track,
		AddedAt:    now,
	}, nil
}

func (r *PlaylistRepository) RemoveSong(ctx context.Context, playlistID, trackID int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM playlist_songs WHERE playlist_id = ? AND track_id = ?",
		playlistID, trackID)
	if err != nil {
		return fmt.Errorf("delete playlist song: %w", err)
	}
	return requireRowAffected(result)
}

func (r *PlaylistRepository) ListSongs(ctx context.Context, playlistID int64) ([]domain.PlaylistSong, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, playlist_id, track_id, track_name, artist_name, artwork_url, preview_url, added_at
		 FROM playlist_songs WHERE playlist_id = ? ORDER BY added_at DESC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	var songs []domain.PlaylistSong
	for rows.Next() {
		var s domain.PlaylistSong
		if err := rows.Scan(&s.ID, &s.PlaylistID, &s.TrackID, &s.TrackName,
			&s.ArtistName, &s.ArtworkURL, &s.PreviewURL, &s.AddedAt); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

func (r *PlaylistRepository) HasSong(ctx context.Context, playlistID, trackID int64) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM playlist_songs WHERE playlist_id = ? AND track_id = ?",
		playlistID, trackID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check playlist song: %w", err)
	}
	return true, nil
}

func (r *PlaylistRepository) SearchPublic(ctx context.Context, term string, limit int) ([]domain.PlaylistSummary, error) {
	base := `SELECT p.id, p.user_id, p.name, p.description, p.is_public, p.share_token,
	                p.created_at, p.updated_at, u.name, COUNT(ps.id)
	         FROM playlists p
	         JOIN users u ON u.id = p.user_id
	         LEFT JOIN playlist_songs ps ON ps.playlist_id = p.id
	         WHERE p.is_public = 1`

	var (
		rows *sql.Rows
		err  error
	)
	// Ordering is deliberate: most substantial public playlists first,
	// ties broken by recency.
	tail := ` GROUP BY p.id ORDER BY COUNT(ps.id) DESC, p.created_at DESC LIMIT ?`
	if term = strings.TrimSpace(term); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		rows, err = r.db.QueryContext(ctx,
			base+` AND (LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ? OR LOWER(u.name) LIKE ?)`+tail,
			pattern, pattern, pattern, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, base+tail, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search public playlists: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func requireRowAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
