package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kmoran-dev/soundshelf/internal/repository/sqlite"
	"github.com/kmoran-dev/soundshelf/internal/service"
)

const testJWTSecret = "test-secret-0123456789abcdef0123456789"

// newTestDB opens a migrated SQLite database in a temp dir.
func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	return service.NewAuthService(db.Users(), testJWTSecret, 24*time.Hour, 4), db
}

func newTestPlaylistService(t *testing.T) (*service.PlaylistService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	return service.NewPlaylistService(db.Playlists(), db.Users()), db
}

// seedUserForTest inserts a user directly and returns its ID.
func seedUserForTest(t *testing.T, db *sqlite.DB, email string) int64 {
	t.Helper()

	auth := service.NewAuthService(db.Users(), testJWTSecret, 24*time.Hour, 4)
	user, err := auth.Register(context.Background(), "Test User", email, "password123")
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user.ID
}
