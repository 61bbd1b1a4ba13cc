package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wricardo/tengame/config"
	"github.com/wricardo/tengame/game/engine"
	"github.com/wricardo/tengame/game/leaderboard"
	"github.com/wricardo/tengame/game/service"
	"github.com/wricardo/tengame/game/session"
	"github.com/wricardo/tengame/storage/sqlite"
	"github.com/wricardo/tengame/transport/websocket"
)

// services is everything a transport needs, wired from a Config
type services struct {
	game     service.GameService
	hub      *websocket.Hub
	recorder *leaderboard.Recorder
	store    leaderboard.Store
	closers  []func() error
	logger   *zap.Logger
}

// newLogger builds the process logger. Production output is JSON on stderr,
// which keeps stdout free for the MCP stdio transport.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// sourceFactory returns one random source per game. A non-zero seed gives
// game n the seed+n stream so runs are reproducible.
func sourceFactory(seed uint64) func() engine.Source {
	if seed == 0 {
		return engine.NewRandomSource
	}
	var n atomic.Uint64
	return func() engine.Source {
		return engine.NewSource(seed + n.Add(1) - 1)
	}
}

// newServices wires registry, leaderboard, hub and game service. The hub
// runs until ctx is cancelled.
func newServices(ctx context.Context, cfg config.Config, logger *zap.Logger) (*services, error) {
	s := &services{logger: logger}

	if cfg.DBPath != "" {
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open leaderboard database: %w", err)
		}
		s.store = db
		s.closers = append(s.closers, db.Close)
		logger.Info("leaderboard stored in sqlite", zap.String("path", cfg.DBPath))
	} else {
		s.store = leaderboard.NewMemoryStore()
		logger.Info("leaderboard kept in memory")
	}

	s.recorder = leaderboard.NewRecorder(s.store, leaderboard.RecorderOptions{
		QueueSize:    cfg.LeaderboardQueue,
		WriteTimeout: cfg.LeaderboardTimeout,
		Logger:       logger.Named("leaderboard"),
	})

	s.hub = websocket.NewHub(logger.Named("websocket"))
	go s.hub.Run(ctx)

	registry := session.NewRegistry(
		session.WithSourceFactory(sourceFactory(cfg.RandomSeed)),
		session.WithLogger(logger.Named("session")),
	)

	s.game = service.NewGameService(service.Dependencies{
		Sessions:  registry,
		Standings: s.store,
		Recorder:  s.recorder,
		Renderer:  s.hub,
		Logger:    logger.Named("service"),
	})

	return s, nil
}

// Close drains pending leaderboard writes and closes the store
func (s *services) Close(ctx context.Context) error {
	var firstErr error
	if err := s.recorder.Close(ctx); err != nil {
		s.logger.Warn("leaderboard writes not fully drained", zap.Error(err))
		firstErr = err
	}
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
