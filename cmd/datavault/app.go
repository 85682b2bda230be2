package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/erazemk/datavault/internal/config"
	"github.com/erazemk/datavault/internal/db"
	"github.com/erazemk/datavault/internal/inventory"
	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/store"
	"github.com/erazemk/datavault/internal/suggest"
	"github.com/erazemk/datavault/internal/telemetry"
)

// app is the state every command works on.
type app struct {
	cfg     *config.Config
	db      *sql.DB
	repo    *inventory.Repository
	metrics *telemetry.Metrics
	gateway *suggest.Gateway // nil when no API key is configured

	closeLog func()
}

// openApp loads the configuration, sets up logging, opens the database and
// loads the collection.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *dbFlag != "" {
		cfg.DB = *dbFlag
	}
	if *logFlag != "" {
		cfg.Log = *logFlag
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	closeLog, err := setupLogger(cfg.Log, level)
	if err != nil {
		return nil, err
	}

	database, err := db.OpenAndMigrate(cfg.DB)
	if err != nil {
		closeLog()
		return nil, err
	}
	slog.Debug("database ready", "path", cfg.DB)

	a := &app{
		cfg:      cfg,
		db:       database,
		repo:     inventory.New(store.ItemStore{DB: database}),
		metrics:  telemetry.New(),
		closeLog: closeLog,
	}

	if err := a.repo.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.metrics.SetItems(a.repo.Len())
	a.repo.OnChange(a.itemChanged)

	if err := a.setupGateway(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// itemChanged logs and counts a saved mutation.
func (a *app) itemChanged(op inventory.Op, item model.Item, count int) {
	a.metrics.Mutation(string(op), count)
	slog.Info("item "+opVerb(op), "id", item.ID, "name", item.Name, "items", count)
}

func opVerb(op inventory.Op) string {
	switch op {
	case inventory.OpAdd:
		return "created"
	case inventory.OpUpdate:
		return "updated"
	case inventory.OpSell:
		return "sold"
	case inventory.OpRevalue:
		return "revalued"
	case inventory.OpRemove:
		return "deleted"
	}
	return string(op)
}

// setupGateway builds the suggestion gateway for the configured provider.
// Without an API key suggestions stay disabled.
func (a *app) setupGateway(ctx context.Context) error {
	s := a.cfg.Suggest
	key := s.APIKey()
	if key == "" {
		slog.Debug("suggestions disabled", "reason", "no API key", "env", s.APIKeyEnv)
		return nil
	}

	var completer suggest.Completer
	switch s.Provider {
	case config.ProviderGemini:
		c, err := suggest.NewGeminiCompleter(ctx, key, s.BaseURL, s.Model, float32(s.Temperature))
		if err != nil {
			return err
		}
		completer = c
	default:
		completer = suggest.NewOpenAICompleter(key, s.BaseURL, s.Model, float32(s.Temperature))
	}

	limiter := suggest.NewLimiter(s.DailyLimit, store.UsageStore{DB: a.db})
	if err := limiter.Load(ctx); err != nil {
		return err
	}

	g := suggest.NewGateway(suggest.WithTimeout(completer, s.Timeout), limiter)
	g.FieldsMaxTokens = s.FieldsMaxTokens
	g.EstimationMaxTokens = s.EstimationMaxTokens
	g.Observe(a.metrics.Suggestion)
	a.gateway = g
	return nil
}

// requireGateway returns the gateway or an error explaining how to enable it.
func (a *app) requireGateway() (*suggest.Gateway, error) {
	if a.gateway == nil {
		return nil, fmt.Errorf("suggestions are disabled: set %s", a.cfg.Suggest.APIKeyEnv)
	}
	return a.gateway, nil
}

// Close releases the database and log file.
func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
	a.closeLog()
}
