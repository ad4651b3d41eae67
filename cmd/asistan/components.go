package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/asistan/internal/assistant"
	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/llm"
	"github.com/hyperjump/asistan/internal/matcher"
	"github.com/hyperjump/asistan/internal/metrics"
	"github.com/hyperjump/asistan/internal/prompt"
	"github.com/hyperjump/asistan/internal/relevance"
	"github.com/hyperjump/asistan/internal/resolver"
	"github.com/hyperjump/asistan/internal/snapshot"
	"github.com/hyperjump/asistan/internal/storage"
)

// Components holds the wired pipeline shared by the server and the one-shot commands.
type Components struct {
	Database  *storage.SQLiteStorage
	Storage   storage.Storage
	Snapshots *snapshot.Holder
	Matcher   *matcher.Matcher
	Engine    *resolver.Engine
	Generator llm.Generator
	Assistant *assistant.Assistant
}

// Close releases the storage backends.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	db, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var store storage.Storage = db
	if cfg.Redis.Enabled() {
		redisStore := storage.NewRedisStateStorage(db, storage.NewRedisClient(&cfg.Redis), cfg.Redis.StateTTL, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, state reads fall back to the database",
				zap.String("address", cfg.Redis.Address), zap.Error(err))
		}
		cancel()
		store = redisStore
	}

	var source snapshot.Source
	if cfg.Storage.SnapshotPath != "" {
		source = snapshot.NewFileSource(cfg.Storage.SnapshotPath)
	} else {
		source = snapshot.NewDBSource(db)
	}
	holder := snapshot.NewHolder(source, logger)

	m, err := newMatcher(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	engineOpts := []resolver.EngineOption{
		resolver.WithMatcher(m),
		resolver.WithObserver(metrics.ObserveResolution),
	}
	if debug {
		engineOpts = append(engineOpts, resolver.WithLogger(logger))
	}
	engine := resolver.NewEngine(&cfg.Resolver, engineOpts...)

	gen, err := llm.New(&cfg.LLM)
	if err != nil {
		// Without a backend the pipeline still resolves; replies echo the composed prompt.
		logger.Warn("llm backend unavailable, using mock generator",
			zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		gen = llm.NewMockGenerator(nil)
	}

	asst := assistant.New(
		engine,
		relevance.NewClassifier(relevance.WithMatcher(m)),
		prompt.NewComposer(&cfg.Assistant),
		gen,
		store,
		holder,
		assistant.WithLogger(logger),
		assistant.WithHistoryTurns(cfg.LLM.HistoryTurns),
	)

	return &Components{
		Database:  db,
		Storage:   store,
		Snapshots: holder,
		Matcher:   m,
		Engine:    engine,
		Generator: gen,
		Assistant: asst,
	}, nil
}

func newMatcher(cfg *config.Config) (*matcher.Matcher, error) {
	opts := []matcher.Option{matcher.WithFuzzyClinics(cfg.Resolver.FuzzyNamesOrDefault())}
	provinces, err := cfg.Regions.Provinces()
	if err != nil {
		return nil, fmt.Errorf("failed to load region map: %w", err)
	}
	if provinces != nil {
		opts = append(opts, matcher.WithRegionMap(matcher.NewRegionMap(provinces)))
	}
	return matcher.New(opts...), nil
}

// reloadRegions swaps the region map in place after the macro file changes.
func reloadRegions(cfg *config.Config, m *matcher.Matcher, logger *zap.Logger) {
	provinces, err := cfg.Regions.Provinces()
	if err != nil {
		logger.Warn("region map reload failed", zap.Error(err))
		return
	}
	if provinces == nil {
		provinces = matcher.DefaultProvinces()
	}
	m.Regions().Replace(provinces)
	logger.Info("region map reloaded", zap.Int("provinces", m.Regions().Len()))
}
