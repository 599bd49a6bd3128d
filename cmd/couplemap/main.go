package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/impossibleiman/couplemap/internal/adapter/driven/tiles"
	httphandler "github.com/impossibleiman/couplemap/internal/adapter/driving/http"
	webhandler "github.com/impossibleiman/couplemap/internal/adapter/driving/web"
	"github.com/impossibleiman/couplemap/internal/application"
	"github.com/impossibleiman/couplemap/internal/config"
	"github.com/impossibleiman/couplemap/internal/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration, with an optional .env file underneath the
	// process environment.
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"storage", cfg.Storage,
		"max_upload_bytes", cfg.MaxUploadBytes,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the key/value backend.
	kv, closeKV, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()

	// 4. Restore both place lists, seeding examples where nothing is stored.
	store := application.NewPlaceStore(kv, log)
	if err := store.Restore(ctx); err != nil {
		return err
	}

	// 5. Wire services and driving adapters.
	photos := application.NewPhotoService(cfg.MaxUploadBytes)
	places := application.NewPlaceService(store, photos, time.Now, log)

	tileURL := cfg.TileURL
	if tileURL == "" {
		tileURL = tiles.DefaultURLTemplate
	}
	tileClient := tiles.NewClient(tileURL)

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(places, photos, cfg.MaxUploadBytes, log))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(places, tileClient, cfg.MaxUploadBytes, log))

	handler := httphandler.ApplyMiddleware(mux, log)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	log.Info("couplemap started", "listen_addr", cfg.ListenAddr, "tile_url", tileURL)

	// 6. Wait for a shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 7. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}
