// Package main is the entry point for the VibeSync player service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/config"
	"github.com/edumarques81/vibesync-player/internal/domain/auth"
	"github.com/edumarques81/vibesync-player/internal/domain/chat"
	"github.com/edumarques81/vibesync-player/internal/domain/notify"
	"github.com/edumarques81/vibesync-player/internal/domain/player"
	"github.com/edumarques81/vibesync-player/internal/domain/requests"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
	"github.com/edumarques81/vibesync-player/internal/infra/mpd"
	"github.com/edumarques81/vibesync-player/internal/infra/store"
	"github.com/edumarques81/vibesync-player/internal/transport/httpapi"
	"github.com/edumarques81/vibesync-player/internal/transport/socketio"
	"github.com/edumarques81/vibesync-player/internal/version"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Music Player Companion Service")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", cfg.Port).
		Str("api_url", cfg.APIURL).
		Str("data_dir", cfg.DataDir).
		Str("mpd_host", cfg.MPDHost).
		Int("mpd_port", cfg.MPDPort).
		Bool("password_set", cfg.MPDPassword != "").
		Msg("Configuration")

	db := store.NewDB(cfg.DBPath())
	if err := db.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open local state")
	}
	defer db.Close()

	api := backend.New(cfg.APIURL,
		backend.WithUserAgent(versionInfo.UserAgent()),
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithRetry(cfg.RetryCount, backend.DefaultRetryWait, backend.DefaultRetryMaxWait),
		backend.WithTokenSource(db),
	)
	defer api.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		output    player.Output
		mpdClient *mpd.Client
	)
	if cfg.MPDEnabled() {
		mpdClient = mpd.NewClient(cfg.MPDHost, cfg.MPDPort, cfg.MPDPassword)
		if err := mpdClient.Connect(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MPD")
		}
		defer mpdClient.Close()
		output = mpd.NewOutput(mpdClient)
		log.Info().Str("addr", mpdClient.Addr()).Msg("MPD connection verified")
	} else {
		log.Warn().Msg("No MPD host configured, playing without audio output")
	}

	session := player.NewSession(output, api, player.WithListenRecorder(api, db))

	if mpdClient != nil {
		events, err := mpdClient.Watch("player")
		if err != nil {
			log.Warn().Err(err).Msg("MPD watcher unavailable, polling only")
		}
		monitor := mpd.NewMonitor(mpdClient, session, cfg.PollInterval)
		go monitor.Run(ctx, events)
	}

	center := notify.NewCenter(api, db)
	review := requests.NewReview(api, center)
	assistant := chat.NewSession(api)

	accounts := auth.NewService(api, db,
		auth.WithPlayer(session),
		auth.WithNotifier(center),
		auth.WithRejection(func(err error) bool {
			st := backend.StatusOf(err)
			return st == http.StatusUnauthorized || st == http.StatusForbidden
		}),
	)
	if user, err := accounts.Refresh(ctx); err == nil {
		log.Info().Str("user", user.Name).Str("role", string(user.Role)).Msg("Session restored")
	} else if !errors.Is(err, auth.ErrSignedOut) {
		log.Warn().Err(err).Msg("Failed to verify stored session")
	}

	socketServer, err := socketio.NewServer(session, socketio.WithMaxExternalClients(cfg.MaxExternalClients))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	apiServer := httpapi.NewServer(httpapi.Deps{
		Player:        session,
		Stats:         api,
		Library:       api,
		Browse:        api,
		Editor:        api,
		Playlists:     api,
		Account:       api,
		Auth:          accounts,
		Prefs:         db,
		Requests:      review,
		Notifications: center,
		Chat:          assistant,
		Users:         db,
	})
	apiServer.Mount("/socket.io/*", socketServer)
	if cfg.StaticDir != "" {
		log.Info().Str("dir", cfg.StaticDir).Msg("Serving static files")
		apiServer.Mount("/*", spaHandler(cfg.StaticDir))
	}

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     apiServer,
		ReadTimeout: 30 * time.Second,
		// Dashboards fan out to the backend with retries.
		WriteTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
