// Command flickr-proxy serves the Flickr REST API through a shared cache
// and token store, with a browser login for obtaining the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/flickr-client/internal/config"
	"github.com/Sternrassler/flickr-client/pkg/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if !cfg.LogPretty && logging.IsTerminal(os.Stderr) {
		cfg.LogPretty = true
	}
	logger := logging.Setup(cfg.Logging())

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flickrClient, res, err := cfg.NewClient(ctx, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.CacheBackend).Msg("Failed to create Flickr client")
	}
	defer res.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newServer(flickrClient, newSessionManager(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Shutdown incomplete")
		}
	}()

	logger.Info().
		Str("addr", cfg.ListenAddr).
		Str("backend", cfg.CacheBackend).
		Str("base_url", flickrClient.BaseURL()).
		Msg("Starting Flickr proxy")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Flickr proxy stopped")
}
