package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/agora/internal/adapters/http/api"
	"github.com/okian/agora/internal/adapters/source"
	"github.com/okian/agora/internal/adapters/tokenizer"
	app "github.com/okian/agora/internal/app"
	"github.com/okian/agora/internal/config"
	"github.com/okian/agora/internal/domain/keywords"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Err(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(log),
		app.WithConnectors(buildConnectors(ctx, cfg, log)...),
		app.WithTagger(buildTagger(cfg)),
		app.WithCandidatePool(seedPool(cfg)),
		app.WithStopWords(cfg.StopWords),
		app.WithCatalogSize(cfg.CatalogSize),
		app.WithPollInterval(time.Duration(cfg.PollIntervalSeconds)*time.Second),
		app.WithFetchTimeout(time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
		app.WithZeroScores(cfg.IncludeZeroScores),
		app.WithSelfMatchExclusion(cfg.ExcludeSelfMatches),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()

	apiServer := api.NewServer(svc, svc, api.WithMaxMessageLimit(cfg.MaxMessageLimit))
	apiServer.Register(ctx, mux)

	// The websocket hub observes both the ledger and the catalog.
	svc.SubscribeLedger(apiServer.Hub())
	svc.SubscribeCatalog(apiServer.Hub())
	defer apiServer.Hub().Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Err(err))
	}

	log.Info(ctx, "server stopped")
}

// buildConnectors assembles one connector per configured source.
func buildConnectors(ctx context.Context, cfg *config.Config, log logger.Logger) []source.Connector {
	var connectors []source.Connector
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		connectors = append(connectors, source.NewSlack(cfg.SlackToken, cfg.SlackChannel))
	}
	if cfg.TelegramToken != "" {
		connectors = append(connectors, source.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID))
	}
	if len(connectors) == 0 {
		log.Warn(ctx, "no source credentials configured; ledger will only grow through pushed messages")
	}
	return connectors
}

// buildTagger selects the remote tagging service when configured.
func buildTagger(cfg *config.Config) keywords.Tagger {
	if cfg.TokenizerEndpoint == "" {
		return tokenizer.NewHeuristic()
	}
	return tokenizer.NewRemote(cfg.TokenizerEndpoint)
}

// seedPool converts configured seed channels into catalog candidates.
func seedPool(cfg *config.Config) []model.CatalogEntry {
	pool := make([]model.CatalogEntry, len(cfg.SeedChannels))
	for i, c := range cfg.SeedChannels {
		pool[i] = model.CatalogEntry{
			Name:     c.Name,
			Source:   model.Source(c.Source),
			Keywords: c.Keywords,
		}
	}
	return pool
}
