package handler

import (
	"net/http"
	"time"

	"github.com/kmoran-dev/soundshelf/internal/catalog"
	"github.com/kmoran-dev/soundshelf/internal/service"
)

// RouteConfig bundles the services the routes are built from.
type RouteConfig struct {
	Auth         *service.AuthService
	Playlists    *service.PlaylistService
	Favorites    *service.FavoritesService
	History      *service.HistoryService
	Catalog      *catalog.Client
	LoginLimiter *service.Throttle
	CookieSecure bool
	CookieMaxAge time.Duration
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, cfg RouteConfig) {
	authHandler := NewAuthHandler(cfg.Auth, cfg.CookieSecure, cfg.CookieMaxAge)
	playlistHandler := NewPlaylistHandler(cfg.Playlists)
	shareHandler := NewShareHandler(cfg.Playlists)
	songHandler := NewSongHandler(cfg.Catalog)
	favoritesHandler := NewFavoritesHandler(cfg.Favorites)
	historyHandler := NewHistoryHandler(cfg.History)

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(cfg.Auth, h)
	}
	optionalAuth := func(h http.HandlerFunc) http.Handler {
		return OptionalAuth(cfg.Auth, h)
	}
	rateLimited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(cfg.LoginLimiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("POST /api/auth/register", rateLimited(authHandler.HandleRegister))
	mux.Handle("POST /api/auth/login", rateLimited(authHandler.HandleLogin))
	mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)
	mux.Handle("GET /api/auth/me", requireAuth(authHandler.HandleMe))

	mux.Handle("GET /api/playlists", requireAuth(playlistHandler.HandleList))
	mux.Handle("POST /api/playlists", requireAuth(playlistHandler.HandleCreate))
	mux.HandleFunc("GET /api/playlists/public/search", playlistHandler.HandleSearchPublic)
	mux.Handle("GET /api/playlists/{id}", optionalAuth(playlistHandler.HandleGet))
	mux.Handle("PUT /api/playlists/{id}", requireAuth(playlistHandler.HandleUpdate))
	mux.Handle("DELETE /api/playlists/{id}", requireAuth(playlistHandler.HandleDelete))
	mux.Handle("PUT /api/playlists/{id}/visibility", requireAuth(playlistHandler.HandleSetVisibility))
	mux.Handle("POST /api/playlists/{id}/songs", requireAuth(playlistHandler.HandleAddSong))
	mux.Handle("DELETE /api/playlists/{id}/songs/{trackId}", requireAuth(playlistHandler.HandleRemoveSong))

	mux.HandleFunc("GET /api/shared/{token}", shareHandler.HandleGetShared)

	mux.HandleFunc("GET /api/songs/search", songHandler.HandleSearch)
	mux.HandleFunc("GET /api/songs/trending", songHandler.HandleTrending)

	mux.Handle("GET /api/favorites", requireAuth(favoritesHandler.HandleList))
	mux.Handle("POST /api/favorites", requireAuth(favoritesHandler.HandleAdd))
	mux.Handle("GET /api/favorites/{trackId}", requireAuth(favoritesHandler.HandleContains))
	mux.Handle("DELETE /api/favorites/{trackId}", requireAuth(favoritesHandler.HandleRemove))

	mux.Handle("GET /api/history", requireAuth(historyHandler.HandleList))
	mux.Handle("POST /api/history", requireAuth(historyHandler.HandleRecord))
	mux.Handle("GET /api/history/recent", requireAuth(historyHandler.HandleRecentlyPlayed))
	mux.Handle("DELETE /api/history", requireAuth(historyHandler.HandleClear))
}
