package utils

import (
	"context"
	"database/sql"
	"fmt"
	"joincal/src-server/natural"
	"joincal/src-server/storage"
	"joincal/src-server/store"
	"log/slog"
	"os"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	// nil unless STORAGE_BACKEND=sqlite
	RawDB *sql.DB
	BunDB *bun.DB

	// Storage reports read and write latency, Backend is the same storage
	// without instrumentation
	Storage storage.Storage
	Backend storage.Storage
	Events  *store.EventStore
	Natural *natural.Parser

	MetricChans        *Metric
	AppCloseSignalChan chan os.Signal

	shutdownMu         sync.Mutex
	gracefulShutdownCh []chan struct{}
}

func NewAppState() *AppState {
	as, err := NewAppStateWithConfig(context.Background(), NewConfig())
	if err != nil {
		slog.Error("can't initialize app state", "error", err)
		os.Exit(1)
	}
	return as
}

// NewAppStateWithConfig opens the configured storage backend and loads the
// event store from it.
func NewAppStateWithConfig(ctx context.Context, cfg *Config) (*AppState, error) {
	as := &AppState{
		Config:             cfg,
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
	}

	var backend storage.Storage
	switch cfg.GetStorageBackend() {
	case STORAGE_BACKEND_MEMORY:
		slog.Warn("using in-memory storage, events are lost on exit")
		backend = storage.NewMemory()
	case STORAGE_BACKEND_FILE:
		fileStorage, err := storage.NewFile(cfg.GetStorageDir())
		if err != nil {
			return nil, fmt.Errorf("NewAppState: %w", err)
		}
		backend = fileStorage
	default:
		var err error
		as.RawDB, err = sql.Open(sqliteshim.ShimName, cfg.GetSQLitePath()+"?mode=rwc")
		if err != nil {
			return nil, fmt.Errorf("NewAppState: cannot open sqlite database: %w", err)
		}
		as.RawDB.SetMaxIdleConns(8)

		as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
		as.BunDB.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))

		sqliteStorage, err := storage.NewSQLite(ctx, as.BunDB)
		if err != nil {
			as.BunDB.Close()
			return nil, fmt.Errorf("NewAppState: %w", err)
		}
		backend = sqliteStorage
	}

	as.Backend = backend
	as.Storage = storage.Instrument(backend, as.MetricChans)
	as.Events = store.New(ctx, as.Storage,
		store.WithKey(cfg.GetStorageKey()),
		store.WithLogger(slog.Default().With("component", "store")),
	)
	as.Natural = natural.New()

	slog.Info("event store loaded",
		"backend", cfg.GetStorageBackend(),
		"key", as.Events.Key(),
		"events", len(as.Events.Events()))

	return as, nil
}

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownCh = append(as.gracefulShutdownCh, ch)
	return &ch
}

// GracefulShutdown stops background goroutines and closes the database.
func (as *AppState) GracefulShutdown() {
	as.shutdownMu.Lock()
	for _, ch := range as.gracefulShutdownCh {
		close(ch)
	}
	as.gracefulShutdownCh = nil
	as.shutdownMu.Unlock()

	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}
