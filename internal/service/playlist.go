package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/kmoran-dev/soundshelf/internal/domain"
)

// PlaylistService owns the playlist authorization and sharing rules:
// ownership checks, public/private visibility transitions, share token
// issuance, and track membership.
type PlaylistService struct {
	playlists domain.PlaylistRepository
	users     domain.UserRepository
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(playlists domain.PlaylistRepository, users domain.UserRepository) *PlaylistService {
	return &PlaylistService{playlists: playlists, users: users}
}

// PlaylistDetail is a playlist together with its songs and the owner's
// display name. It carries no other owner-identifying data.
type PlaylistDetail struct {
	domain.Playlist
	OwnerName string
	Songs     []domain.PlaylistSong
}

// Create creates a playlist for the given owner. A public playlist gets a
// fresh share token; a private one has none. On the (negligible) chance of
// a token collision the insert is retried once with a new token.
func (s *PlaylistService) Create(ctx context.Context, ownerID int64, name, description string, isPublic bool) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name is required", domain.ErrInvalidInput)
	}

	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	playlist := &domain.Playlist{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
	}

	for attempt := 0; ; attempt++ {
		if isPublic {
			token, err := generateShareToken()
			if err != nil {
				return nil, err
			}
			playlist.ShareToken = &token
		}

		err := s.playlists.Create(ctx, playlist)
		if err == nil {
			return playlist, nil
		}
		if errors.Is(err, domain.ErrConflict) && isPublic && attempt == 0 {
			continue
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: share token collision", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create playlist: %w", err)
	}
}

// Update renames a playlist. Owner only.
func (s *PlaylistService) Update(ctx context.Context, playlistID, callerID int64, name, description string) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name is required", domain.ErrInvalidInput)
	}

	if _, err := s.AuthorizeWrite(ctx, playlistID, callerID); err != nil {
		return nil, err
	}

	if err := s.playlists.Update(ctx, playlistID, name, strings.TrimSpace(description)); err != nil {
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	return s.playlists.GetByID(ctx, playlistID)
}

// Delete removes a playlist and its songs. Owner only.
func (s *PlaylistService) Delete(ctx context.Context, playlistID, callerID int64) error {
	if _, err := s.AuthorizeWrite(ctx, playlistID, callerID); err != nil {
		return err
	}
	return s.playlists.Delete(ctx, playlistID)
}

// SetVisibility applies the visibility transition table:
//
//	private -> public:  mint a new share token
//	public  -> public:  keep the existing token (never rotate)
//	public  -> private: clear the token; old links are dead for good
//	private -> private: no-op
//
// A later re-publish mints a fresh token, so previously distributed links
// never resurrect. The repository applies the change as a single atomic
// statement; this method never does a read-then-write on the token column.
func (s *PlaylistService) SetVisibility(ctx context.Context, playlistID, callerID int64, makePublic bool) (*domain.Playlist, error) {
	if _, err := s.AuthorizeWrite(ctx, playlistID, callerID); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		var candidate string
		if makePublic {
			token, err := generateShareToken()
			if err != nil {
				return nil, err
			}
			candidate = token
		}

		err := s.playlists.UpdateVisibility(ctx, playlistID, makePublic, candidate)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && makePublic && attempt == 0 {
			continue
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: share token collision", domain.ErrConflict)
		}
		return nil, err
	}

	return s.playlists.GetByID(ctx, playlistID)
}

// AuthorizeRead decides whether a caller may read a playlist. callerID is
// nil for anonymous callers. Reading is granted to the owner and, for
// public playlists, to everyone. A private playlist read by a non-owner
// fails with ErrForbidden rather than ErrNotFound: the caller learns the
// playlist exists but is private.
func (s *PlaylistService) AuthorizeRead(ctx context.Context, playlistID int64, callerID *int64) (domain.Access, error) {
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return domain.Access{}, err
	}

	if callerID != nil && *callerID == playlist.OwnerID {
		return domain.Access{CanRead: true, IsOwner: true}, nil
	}
	if playlist.IsPublic {
		return domain.Access{CanRead: true}, nil
	}
	return domain.Access{}, fmt.Errorf("%w: playlist is private", domain.ErrForbidden)
}

// AuthorizeWrite grants mutation rights strictly to the owner. Public
// visibility never grants write access.
func (s *PlaylistService) AuthorizeWrite(ctx context.Context, playlistID, callerID int64) (*domain.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != callerID {
		return nil, fmt.Errorf("%w: only the owner may modify a playlist", domain.ErrForbidden)
	}
	return playlist, nil
}

// Get returns a playlist with its songs after a read authorization check.
func (s *PlaylistService) Get(ctx context.Context, playlistID int64, callerID *int64) (*PlaylistDetail, domain.Access, error) {
	access, err := s.AuthorizeRead(ctx, playlistID, callerID)
	if err != nil {
		return nil, domain.Access{}, err
	}

	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, domain.Access{}, err
	}

	detail, err := s.buildDetail(ctx, playlist)
	if err != nil {
		return nil, domain.Access{}, err
	}
	return detail, access, nil
}

// ListByOwner returns the caller's playlists with song counts, most
// recently updated first.
func (s *PlaylistService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.PlaylistSummary, error) {
	return s.playlists.ListByOwner(ctx, ownerID)
}

// ResolveByShareToken resolves a share link to a readable playlist. The
// playlist must be public at lookup time; the mere presence of a matching
// token value never grants access, which closes the race where a playlist
// goes private while an old link is in flight.
func (s *PlaylistService) ResolveByShareToken(ctx context.Context, token string) (*PlaylistDetail, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: share token is required", domain.ErrInvalidInput)
	}

	playlist, err := s.playlists.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, playlist)
}

// AddTrack adds a track to a playlist. Owner only; a track may appear in a
// playlist at most once.
func (s *PlaylistService) AddTrack(ctx context.Context, playlistID, callerID int64, track domain.Track) (*domain.PlaylistSong, error) {
	if track.TrackID == 0 || track.TrackName == "" || track.ArtistName == "" {
		return nil, fmt.Errorf("%w: trackId, trackName, and artistName are required", domain.ErrInvalidInput)
	}

	if _, err := s.AuthorizeWrite(ctx, playlistID, callerID); err != nil {
		return nil, err
	}

	song, err := s.playlists.AddSong(ctx, playlistID, track)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: track already in playlist", domain.ErrConflict)
		}
		return nil, fmt.Errorf("add track: %w", err)
	}
	return song, nil
}

// RemoveTrack removes a track from a playlist. Owner only.
func (s *PlaylistService) RemoveTrack(ctx context.Context, playlistID, callerID, trackID int64) error {
	if _, err := s.AuthorizeWrite(ctx, playlistID, callerID); err != nil {
		return err
	}

	if err := s.playlists.RemoveSong(ctx, playlistID, trackID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: track not in playlist", domain.ErrNotFound)
		}
		return fmt.Errorf("remove track: %w", err)
	}
	return nil
}

// SearchPublic searches public playlists by name, description, or owner
// name. Results are ordered by song count descending, then creation time
// descending. No authorization is needed; only public rows are considered.
func (s *PlaylistService) SearchPublic(ctx context.Context, term string, limit int) ([]domain.PlaylistSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.playlists.SearchPublic(ctx, term, limit)
}

func (s *PlaylistService) buildDetail(ctx context.Context, playlist *domain.Playlist) (*PlaylistDetail, error) {
	songs, err := s.playlists.ListSongs(ctx, playlist.ID)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}

	owner, err := s.users.GetByID(ctx, playlist.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}

	return &PlaylistDetail{
		Playlist:  *playlist,
		OwnerName: owner.Name,
		Songs:     songs,
	}, nil
}

func generateShareToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
