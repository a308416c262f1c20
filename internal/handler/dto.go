package handler

import (
	"time"

	"github.com/kmoran-dev/soundshelf/internal/domain"
	"github.com/kmoran-dev/soundshelf/internal/service"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// PlaylistDTO is the JSON representation of a playlist row.
type PlaylistDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IsPublic    bool    `json:"isPublic"`
	ShareToken  *string `json:"shareToken"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toPlaylistDTO(p *domain.Playlist) PlaylistDTO {
	return PlaylistDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		IsPublic:    p.IsPublic,
		ShareToken:  p.ShareToken,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

// PlaylistSummaryDTO is a playlist listing row with owner and song count.
type PlaylistSummaryDTO struct {
	PlaylistDTO
	OwnerName string `json:"ownerName"`
	SongCount int    `json:"songCount"`
}

func toPlaylistSummaryDTOs(summaries []domain.PlaylistSummary) []PlaylistSummaryDTO {
	dtos := make([]PlaylistSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = PlaylistSummaryDTO{
			PlaylistDTO: toPlaylistDTO(&s.Playlist),
			OwnerName:   s.OwnerName,
			SongCount:   s.SongCount,
		}
	}
	return dtos
}

// PlaylistSongDTO is a track entry within a playlist.
type PlaylistSongDTO struct {
	ID            int64  `json:"id"`
	TrackID       int64  `json:"trackId"`
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	PreviewURL    string `json:"previewUrl"`
	AddedAt       string `json:"addedAt"`
}

func toPlaylistSongDTO(s *domain.PlaylistSong) PlaylistSongDTO {
	return PlaylistSongDTO{
		ID:            s.ID,
		TrackID:       s.TrackID,
		TrackName:     s.TrackName,
		ArtistName:    s.ArtistName,
		ArtworkURL100: s.ArtworkURL,
		PreviewURL:    s.PreviewURL,
		AddedAt:       s.AddedAt.Format(time.RFC3339),
	}
}

func toPlaylistSongDTOs(songs []domain.PlaylistSong) []PlaylistSongDTO {
	dtos := make([]PlaylistSongDTO, len(songs))
	for i := range songs {
		dtos[i] = toPlaylistSongDTO(&songs[i])
	}
	return dtos
}

// PlaylistDetailDTO is a playlist with its songs, for the detail and
// shared-link views.
type PlaylistDetailDTO struct {
	PlaylistDTO
	OwnerName string            `json:"ownerName"`
	IsOwner   bool              `json:"isOwner"`
	Songs     []PlaylistSongDTO `json:"songs"`
}

func toPlaylistDetailDTO(d *service.PlaylistDetail, isOwner bool) PlaylistDetailDTO {
	return PlaylistDetailDTO{
		PlaylistDTO: toPlaylistDTO(&d.Playlist),
		OwnerName:   d.OwnerName,
		IsOwner:     isOwner,
		Songs:       toPlaylistSongDTOs(d.Songs),
	}
}

// SharedPlaylistDTO is the anonymous view of a shared playlist. It omits
// the share token and visibility flags; the viewer already has the link.
type SharedPlaylistDTO struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OwnerName   string            `json:"ownerName"`
	Songs       []PlaylistSongDTO `json:"songs"`
	CreatedAt   string            `json:"createdAt"`
}

func toSharedPlaylistDTO(d *service.PlaylistDetail) SharedPlaylistDTO {
	return SharedPlaylistDTO{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		OwnerName:   d.OwnerName,
		Songs:       toPlaylistSongDTOs(d.Songs),
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}

// FavoriteDTO is a favorited track.
type FavoriteDTO struct {
	ID            int64  `json:"id"`
	TrackID       int64  `json:"trackId"`
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	PreviewURL    string `json:"previewUrl"`
	AddedAt       string `json:"addedAt"`
}

func toFavoriteDTO(f *domain.Favorite) FavoriteDTO {
	return FavoriteDTO{
		ID:            f.ID,
		TrackID:       f.TrackID,
		TrackName:     f.TrackName,
		ArtistName:    f.ArtistName,
		ArtworkURL100: f.ArtworkURL,
		PreviewURL:    f.PreviewURL,
		AddedAt:       f.AddedAt.Format(time.RFC3339),
	}
}

func toFavoriteDTOs(favorites []domain.Favorite) []FavoriteDTO {
	dtos := make([]FavoriteDTO, len(favorites))
	for i := range favorites {
		dtos[i] = toFavoriteDTO(&favorites[i])
	}
	return dtos
}

// HistoryEntryDTO is a recorded play.
type HistoryEntryDTO struct {
	ID            int64  `json:"id"`
	TrackID       int64  `json:"trackId"`
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	PreviewURL    string `json:"previewUrl"`
	PlayedAt      string `json:"playedAt"`
}

func toHistoryEntryDTO(e *domain.HistoryEntry) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:            e.ID,
		TrackID:       e.TrackID,
		TrackName:     e.TrackName,
		ArtistName:    e.ArtistName,
		ArtworkURL100: e.ArtworkURL,
		PreviewURL:    e.PreviewURL,
		PlayedAt:      e.PlayedAt.Format(time.RFC3339),
	}
}

func toHistoryEntryDTOs(entries []domain.HistoryEntry) []HistoryEntryDTO {
	dtos := make([]HistoryEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toHistoryEntryDTO(&entries[i])
	}
	return dtos
}

// trackRequest is the shared request body for adding a track to a
// playlist, favorites, or history.
type trackRequest struct {
	TrackID       int64  `json:"trackId"`
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	PreviewURL    string `json:"previewUrl"`
}

func (t trackRequest) toTrack() domain.Track {
	return domain.Track{
		TrackID:    t.TrackID,
		TrackName:  t.TrackName,
		ArtistName: t.ArtistName,
		ArtworkURL: t.ArtworkURL100,
		PreviewURL: t.PreviewURL,
	}
}
