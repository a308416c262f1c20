package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kmoran-dev/soundshelf/internal/catalog"
	"github.com/kmoran-dev/soundshelf/internal/config"
	"github.com/kmoran-dev/soundshelf/internal/handler"
	"github.com/kmoran-dev/soundshelf/internal/repository/sqlite"
	"github.com/kmoran-dev/soundshelf/internal/service"
)

func main() {
	cfg, err := config.Load(os.Getenv("SOUNDSHELF_CONFIG"))
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	authService := service.NewAuthService(db.Users(), cfg.Auth.JWTSecret, tokenTTL, cfg.Auth.BcryptCost)
	playlistService := service.NewPlaylistService(db.Playlists(), db.Users())
	favoritesService := service.NewFavoritesService(db.Favorites())
	historyService := service.NewHistoryService(db.History())
	catalogClient := catalog.NewClient(
		cfg.Catalog.BaseURL,
		time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second,
		cfg.Catalog.RequestsPerSecond,
	)
	loginLimiter := service.NewThrottle(
		float64(cfg.Auth.LoginRatePerMinute)/60.0,
		cfg.Auth.LoginRatePerMinute,
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.RouteConfig{
		Auth:         authService,
		Playlists:    playlistService,
		Favorites:    favoritesService,
		History:      historyService,
		Catalog:      catalogClient,
		LoginLimiter: loginLimiter,
		CookieSecure: cfg.Server.CookieSecure,
		CookieMaxAge: tokenTTL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.SecurityHeaders(handler.RequestID(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
