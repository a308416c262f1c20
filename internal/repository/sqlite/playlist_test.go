package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kmoran-dev/soundshelf/internal/domain"
	"github.com/kmoran-dev/soundshelf/internal/repository/sqlite"
)

var _ domain.PlaylistRepository = (*sqlite.PlaylistRepository)(nil)

func seedPlaylist(t *testing.T, db *sqlite.DB, ownerID int64, token string) *domain.Playlist {
	t.Helper()

	p := &domain.Playlist{OwnerID: ownerID, Name: "Seed Playlist"}
	if token != "" {
		p.IsPublic = true
		p.ShareToken = &token
	}
	if err := db.Playlists().Create(context.Background(), p); err != nil {
		t.Fatalf("seed playlist: %v", err)
	}
	return p
}

func TestPlaylistRepository_UpdateVisibility_PublishKeepsExistingToken(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	p := seedPlaylist(t, db, owner, "existingtoken00000000000000000001")

	// Publishing an already-public playlist with a candidate token must
	// keep the stored one: the COALESCE only fills a NULL column.
	if err := db.Playlists().UpdateVisibility(ctx, p.ID, true, "candidate0000000000000000000002"); err != nil {
		t.Fatalf("UpdateVisibility: %v", err)
	}

	current, err := db.Playlists().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.ShareToken == nil || *current.ShareToken != "existingtoken00000000000000000001" {
		t.Fatalf("expected existing token to survive, got %v", current.ShareToken)
	}
}

func TestPlaylistRepository_UpdateVisibility_PublishInstallsTokenWhenEmpty(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	p := seedPlaylist(t, db, owner, "")

	if err := db.Playlists().UpdateVisibility(ctx, p.ID, true, "freshtoken0000000000000000000003"); err != nil {
		t.Fatalf("UpdateVisibility: %v", err)
	}

	current, _ := db.Playlists().GetByID(ctx, p.ID)
	if !current.IsPublic {
		t.Fatal("expected public playlist")
	}
	if current.ShareToken == nil || *current.ShareToken != "freshtoken0000000000000000000003" {
		t.Fatalf("expected candidate token installed, got %v", current.ShareToken)
	}
}

func TestPlaylistRepository_UpdateVisibility_UnpublishClearsToken(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	p := seedPlaylist(t, db, owner, "sometoken00000000000000000000004")

	if err := db.Playlists().UpdateVisibility(ctx, p.ID, false, ""); err != nil {
		t.Fatalf("UpdateVisibility: %v", err)
	}

	current, _ := db.Playlists().GetByID(ctx, p.ID)
	if current.IsPublic {
		t.Fatal("expected private playlist")
	}
	if current.ShareToken != nil {
		t.Fatalf("expected token cleared, got %q", *current.ShareToken)
	}
}

func TestPlaylistRepository_UpdateVisibility_Missing(t *testing.T) {
	db := newMigratedDB(t)

	err := db.Playlists().UpdateVisibility(context.Background(), 404, true, "tok")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaylistRepository_TokenUniqueConstraint(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	seedPlaylist(t, db, owner, "collidingtoken000000000000000005")

	dup := &domain.Playlist{OwnerID: owner, Name: "Dup", IsPublic: true}
	token := "collidingtoken000000000000000005"
	dup.ShareToken = &token
	if err := db.Playlists().Create(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate token, got %v", err)
	}
}

func TestPlaylistRepository_GetByShareToken_RequiresPublic(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	p := seedPlaylist(t, db, owner, "gatedtoken0000000000000000000006")

	if _, err := db.Playlists().GetByShareToken(ctx, "gatedtoken0000000000000000000006"); err != nil {
		t.Fatalf("GetByShareToken while public: %v", err)
	}

	// Force the row private while leaving the token column populated: the
	// lookup must treat is_public as the authoritative gate.
	if _, err := db.SqlDB.ExecContext(ctx,
		"UPDATE playlists SET is_public = 0 WHERE id = ?", p.ID); err != nil {
		t.Fatalf("force private: %v", err)
	}

	_, err := db.Playlists().GetByShareToken(ctx, "gatedtoken0000000000000000000006")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("stale token with private row must not resolve, got %v", err)
	}
}

func TestPlaylistRepository_SongUniquePerPlaylist(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	p1 := seedPlaylist(t, db, owner, "")
	p2 := seedPlaylist(t, db, owner, "")

	track := domain.Track{TrackID: 9, TrackName: "Song", ArtistName: "Artist"}
	if _, err := db.Playlists().AddSong(ctx, p1.ID, track); err != nil {
		t.Fatalf("AddSong: %v", err)
	}
	if _, err := db.Playlists().AddSong(ctx, p1.ID, track); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict within a playlist, got %v", err)
	}
	// Same track in a different playlist is fine.
	if _, err := db.Playlists().AddSong(ctx, p2.ID, track); err != nil {
		t.Fatalf("AddSong to other playlist: %v", err)
	}
}

func TestPlaylistRepository_HasSong(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	p := seedPlaylist(t, db, owner, "")

	has, err := db.Playlists().HasSong(ctx, p.ID, 9)
	if err != nil {
		t.Fatalf("HasSong: %v", err)
	}
	if has {
		t.Fatal("empty playlist should not contain the track")
	}

	track := domain.Track{TrackID: 9, TrackName: "Song", ArtistName: "Artist"}
	if _, err := db.Playlists().AddSong(ctx, p.ID, track); err != nil {
		t.Fatalf("AddSong: %v", err)
	}

	has, err = db.Playlists().HasSong(ctx, p.ID, 9)
	if err != nil {
		t.Fatalf("HasSong: %v", err)
	}
	if !has {
		t.Fatal("expected track to be reported present")
	}
}

func TestPlaylistRepository_AddSongIsAtomic(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	p := seedPlaylist(t, db, owner, "")

	before, err := db.Playlists().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	track := domain.Track{TrackID: 9, TrackName: "Song", ArtistName: "Artist"}
	if _, err := db.Playlists().AddSong(ctx, p.ID, track); err != nil {
		t.Fatalf("AddSong: %v", err)
	}

	// The insert and the parent touch land together.
	after, err := db.Playlists().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.UpdatedAt.Before(before.UpdatedAt) {
		t.Fatal("expected updated_at to advance with the song insert")
	}

	// A failed add (missing parent) leaves no song row behind.
	if _, err := db.Playlists().AddSong(ctx, 9999, track); err == nil {
		t.Fatal("expected error adding to a missing playlist")
	}
	var orphans int
	if err := db.SqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = 9999").Scan(&orphans); err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("expected no partial rows, found %d", orphans)
	}
}

func TestPlaylistRepository_DeleteCascadesSongs(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	p := seedPlaylist(t, db, owner, "")

	track := domain.Track{TrackID: 9, TrackName: "Song", ArtistName: "Artist"}
	if _, err := db.Playlists().AddSong(ctx, p.ID, track); err != nil {
		t.Fatalf("AddSong: %v", err)
	}

	if err := db.Playlists().Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int
	if err := db.SqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = ?", p.ID).Scan(&count); err != nil {
		t.Fatalf("count songs: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cascade delete, found %d orphan songs", count)
	}
}
