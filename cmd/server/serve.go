package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/requestline/internal/app"
	"github.com/cesargomez89/requestline/internal/cache"
	"github.com/cesargomez89/requestline/internal/config"
	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/enrichment"
	httpapp "github.com/cesargomez89/requestline/internal/http"
	"github.com/cesargomez89/requestline/internal/httpclient"
	"github.com/cesargomez89/requestline/internal/live"
	"github.com/cesargomez89/requestline/internal/llm"
	"github.com/cesargomez89/requestline/internal/logger"
	"github.com/cesargomez89/requestline/internal/spotify"
	"github.com/cesargomez89/requestline/internal/store"
)

const cachePurgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var lookupCache enrichment.Cache = db
	var redisCache *cache.Redis
	if cfg.RedisURL != "" {
		redisCache, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		lookupCache = redisCache
		log.Info("Using Redis lookup cache")
	} else {
		go purgeCache(ctx, db, log)
	}

	upstream := httpclient.NewClient(nil, cfg.UpstreamRPS,
		httpclient.WithRetryBase(constants.DefaultRetryBase),
		httpclient.WithMaxAttempts(constants.DefaultRetryCount),
	)

	var spotifyEnricher *spotify.Enricher
	if cfg.SpotifyEnabled() {
		tokens := spotify.NewTokenCache(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyTokenURL, upstream.GetUnderlyingClient(), log)
		spotifyEnricher = spotify.NewEnricher(spotify.NewClient(upstream, tokens, cfg.SpotifyAPIURL), log)
	}

	provider := newProvider(cfg, spotifyEnricher, upstream, lookupCache, log)
	log.Info("Enrichment configured", "provider", provider.Name())

	hub := live.NewHub(log)
	go hub.Run()

	enricher := app.NewEnricher(db, provider, hub, cfg.EnrichTimeout, log)
	sessions := app.NewSessionService(db, hub, log)
	submissions := app.NewSubmissionService(db, enricher, hub, log)

	h := httpapp.NewHandler(sessions, submissions, hub, log)
	h.PublicURL = cfg.PublicURL
	h.Checks["db"] = db
	if redisCache != nil {
		h.Checks["redis"] = redisCache
	}
	if spotifyEnricher != nil {
		h.Suggester = spotifyEnricher
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapp.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			hub.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if err := enricher.Shutdown(shutdownCtx); err != nil {
		log.Warn("Enrichment tasks abandoned", "error", err)
	}
	hub.Stop()

	log.Info("Server exiting")
	return nil
}

// newProvider builds the configured enrichment provider behind the lookup
// cache.
func newProvider(cfg *config.Config, spotifyEnricher *spotify.Enricher, upstream *httpclient.Client, lookupCache enrichment.Cache, log *logger.Logger) enrichment.Provider {
	var source enrichment.Source
	switch cfg.ResolvedProvider() {
	case constants.ProviderSpotify:
		if spotifyEnricher != nil {
			source = spotifyEnricher
		}
	case constants.ProviderOpenAI:
		source = llm.NewEnricher(llm.NewClient(upstream, cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), log)
	}
	if source == nil {
		return enrichment.Noop{}
	}
	return enrichment.NewCachedProvider(source, lookupCache, cfg.CacheTTL, log)
}

func purgeCache(ctx context.Context, db *store.DB, log *logger.Logger) {
	ticker := time.NewTicker(cachePurgeInterval)
	defer ticker.Stop()

	for {
		n, err := db.PurgeExpiredCache(ctx)
		if err != nil && ctx.Err() == nil {
			log.Warn("Failed to purge lookup cache", "error", err)
		} else if n > 0 {
			log.Debug("Purged expired lookups", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
