package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/api"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/config"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/feedback"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/fingerprint"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/logging"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/promotion"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/ranking"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/signal"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/storage"
)

// app is the wired engine shared by every command.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	registry *catalog.Registry
	stats    *ranking.StatsCache
	ranker   *ranking.Ranker
	recorder *feedback.Recorder
	promoter *promotion.Engine
}

func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadFrom(configPath(cmd))
	if err != nil {
		return config.Config{}, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, cmd.ErrOrStderr())
}

// newApp opens storage and builds the catalog from the persisted snippets
// plus the configured seed file. Logs go to logOut.
func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	logger := logging.New(cfg.Log.Level, logOut)
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		logger.Warn("invalid log level, using info", "level", cfg.Log.Level)
	}
	logging.SetDefault(logger)

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}

	registry := catalog.New(store, catalog.WithLogger(logger))
	n, err := registry.Load(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	logger.Debug("catalog loaded from storage", "snippets", n)

	if cfg.Catalog.SeedFile != "" {
		n, err = registry.LoadFile(ctx, cfg.Catalog.SeedFile)
		if err != nil {
			logger.Warn("seed file not loaded", "path", cfg.Catalog.SeedFile, "error", err)
		} else {
			logger.Debug("seed snippets registered", "path", cfg.Catalog.SeedFile, "snippets", n)
		}
	}

	stats := ranking.NewStatsCache(store, cfg.Ranking.StatsTTL)
	ranker := ranking.NewRanker(registry, stats, cfg.Ranking.BoostWeight)
	ranker.SetLogger(logger)

	classifier := signal.New(signal.Config{
		RapidFollowup: cfg.Signals.RapidFollowup,
		TimeGap:       cfg.Signals.TimeGap,
	})
	recorder := feedback.NewRecorder(store, classifier, fingerprint.NewExtractor(), feedback.WithLogger(logger))

	promoter := promotion.NewEngine(store, registry, fingerprint.Thresholds{
		MinFrequency: cfg.Promotion.MinFrequency,
		MinAvgScore:  cfg.Promotion.MinAvgScore,
	})
	promoter.SetLogger(logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: registry,
		stats:    stats,
		ranker:   ranker,
		recorder: recorder,
		promoter: promoter,
	}, nil
}

func (a *app) deps() api.Deps {
	return api.Deps{
		Catalog:  a.registry,
		Ranker:   a.ranker,
		Recorder: a.recorder,
		Promoter: a.promoter,
		Stats:    a.stats,
	}
}

func (a *app) Close() error {
	return a.store.Close()
}
