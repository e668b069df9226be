package utils_test

import (
	"context"
	"joincal/src-server/model"
	"joincal/src-server/utils"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORAGE_BACKEND", "SQLITE_PATH", "STORAGE_DIR", "STORAGE_KEY",
		"METRIC_COLLECTION_INTERVAL", "STORAGE_SYNC_INTERVAL", "STATIC_WEB_CLIENT_DIR",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("TIMEZONE", "UTC")

	cfg := utils.NewConfig()
	if cfg.GetPort() != "8080" {
		t.Error("port", cfg.GetPort())
	}
	if cfg.GetStorageBackend() != utils.STORAGE_BACKEND_SQLITE {
		t.Error("backend", cfg.GetStorageBackend())
	}
	if cfg.GetStorageKey() != "calendar-events" {
		t.Error("key", cfg.GetStorageKey())
	}
	if cfg.GetSQLitePath() != "./sqlite.db" || cfg.GetStorageDir() != "data" {
		t.Error("paths", cfg.GetSQLitePath(), cfg.GetStorageDir())
	}
	if cfg.GetLocation() != time.UTC {
		t.Error("location", cfg.GetLocation())
	}
	if cfg.GetMetricCollectionInterval() != 15*time.Second || cfg.GetStorageSyncInterval() != 0 {
		t.Error("intervals", cfg.GetMetricCollectionInterval(), cfg.GetStorageSyncInterval())
	}
	if cfg.GetStaticWebClientDir() != "" {
		t.Error("web client dir", cfg.GetStaticWebClientDir())
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "FILE")
	t.Setenv("STORAGE_KEY", "work-events")
	t.Setenv("TIMEZONE", "Europe/Prague")
	t.Setenv("STORAGE_SYNC_INTERVAL", "1m")

	cfg := utils.NewConfig()
	if cfg.GetPort() != "9090" || cfg.GetStorageBackend() != utils.STORAGE_BACKEND_FILE || cfg.GetStorageKey() != "work-events" {
		t.Error("unexpected config", cfg.GetPort(), cfg.GetStorageBackend(), cfg.GetStorageKey())
	}
	if cfg.GetLocation().String() != "Europe/Prague" {
		t.Error("location", cfg.GetLocation())
	}
	if cfg.GetStorageSyncInterval() != time.Minute {
		t.Error("sync interval", cfg.GetStorageSyncInterval())
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"chatty":  slog.LevelDebug,
	} {
		if got := utils.ParseLogLevel(in); got != want {
			t.Errorf("%q: got %s, want %s", in, got, want)
		}
	}
}

func TestAppStateBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	t.Setenv("STORAGE_DIR", filepath.Join(dir, "data"))
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "sqlite.db"))

	for _, backend := range []string{"memory", "file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			t.Setenv("STORAGE_BACKEND", backend)

			as, err := utils.NewAppStateWithConfig(ctx, utils.NewConfig())
			if err != nil {
				t.Fatal(err)
			}
			created, err := as.Events.Add(ctx, model.EventDraft{Title: "Standup", Start: "2024-01-01T09:00", End: "2024-01-01T09:30", Color: "#4285f4"})
			if err != nil {
				t.Fatal(err)
			}
			as.GracefulShutdown()

			if backend == "memory" {
				return
			}
			// a fresh instance sees the persisted event
			again, err := utils.NewAppStateWithConfig(ctx, utils.NewConfig())
			if err != nil {
				t.Fatal(err)
			}
			defer again.GracefulShutdown()
			if got, ok := again.Events.Get(created.ID); !ok || got != created {
				t.Error("event not persisted", got, ok)
			}
		})
	}
}

func TestGracefulShutdown(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	as, err := utils.NewAppStateWithConfig(context.Background(), utils.NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	ch := as.CreateGracefulShutdownChan()
	as.GracefulShutdown()
	select {
	case <-*ch:
	case <-time.After(time.Second):
		t.Error("shutdown channel not closed")
	}
	as.GracefulShutdown()
}
