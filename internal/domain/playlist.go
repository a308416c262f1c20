package domain

import (
	"context"
	"time"
)

// Playlist is a named collection of tracks owned by exactly one user.
// ShareToken is non-nil if and only if the playlist is public; the token
// grants anonymous read access and is never reused once cleared.
type Playlist struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	IsPublic    bool
	ShareToken  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlaylistSong is a track entry within a playlist.
type PlaylistSong struct {
	ID         int64
	PlaylistID int64
	Track
	AddedAt time.Time
}

// PlaylistSummary is a playlist row joined with its owner name and song
// count, used for listings and public search results.
type PlaylistSummary struct {
	Playlist
	OwnerName string
	SongCount int
}

// Access describes what a caller may do with a playlist.
type Access struct {
	CanRead bool
	IsOwner bool
}

// PlaylistRepository defines persistence operations for playlists and their
// song entries.
//
// UpdateVisibility must be atomic with respect to concurrent calls on the
// same playlist: publishing keeps an existing token if one is present and
// installs the given one otherwise, unpublishing clears it. The service
// never performs a separate read-then-write for visibility changes.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *Playlist) error
	GetByID(ctx context.Context, id int64) (*Playlist, error)
	// GetByShareToken resolves only playlists that are currently public.
	GetByShareToken(ctx context.Context, token string) (*Playlist, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]PlaylistSummary, error)
	Update(ctx context.Context, id int64, name, description string) error
	UpdateVisibility(ctx context.Context, id int64, makePublic bool, token string) error
	Delete(ctx context.Context, id int64) error

	AddSong(ctx context.Context, playlistID int64, track Track) (*PlaylistSong, error)
	RemoveSong(ctx context.Context, playlistID, trackID int64) error
	ListSongs(ctx context.Context, playlistID int64) ([]PlaylistSong, error)
	HasSong(ctx context.Context, playlistID, trackID int64) (bool, error)

	SearchPublic(ctx context.Context, term string, limit int) ([]PlaylistSummary, error)
}
