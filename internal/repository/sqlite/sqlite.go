package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kmoran-dev/soundshelf/internal/domain"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database handle and exposes the repositories backed
// by it. It implements domain.Database.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Set a reasonable connection pool for SQLite.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Close closes the underlying database handle.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() domain.UserRepository {
	return &UserRepository{db: db.SqlDB}
}

// Playlists returns the playlist repository backed by this database.
func (db *DB) Playlists() domain.PlaylistRepository {
	return &PlaylistRepository{db: db.SqlDB}
}

// Favorites returns the favorite repository backed by this database.
func (db *DB) Favorites() domain.FavoriteRepository {
	return &FavoriteRepository{db: db.SqlDB}
}

// History returns the listening history repository backed by this database.
func (db *DB) History() domain.HistoryRepository {
	return &HistoryRepository{db: db.SqlDB}
}
