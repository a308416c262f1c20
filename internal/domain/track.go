package domain

// Track holds the denormalized display metadata for a song as returned by
// the catalog API. Playlists, favorites, and history all store this shape
// rather than referencing a local songs table.
type Track struct {
	TrackID    int64
	TrackName  string
	ArtistName string
	ArtworkURL string
	PreviewURL string
}
