package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type StorageBackend string

const (
	STORAGE_BACKEND_SQLITE = StorageBackend("sqlite")
	STORAGE_BACKEND_FILE   = StorageBackend("file")
	STORAGE_BACKEND_MEMORY = StorageBackend("memory")
)

type Config struct {
	port string

	storageBackend StorageBackend
	sqlitePath     string
	storageDir     string
	storageKey     string

	location                 *time.Location
	metricCollectionInterval time.Duration
	storageSyncInterval      time.Duration
	staticWebClientDir       string
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		storageBackend: func() StorageBackend {
			backend := StorageBackend(strings.ToLower(os.Getenv("STORAGE_BACKEND")))
			switch backend {
			case "":
				backend = STORAGE_BACKEND_SQLITE
			case STORAGE_BACKEND_SQLITE, STORAGE_BACKEND_FILE, STORAGE_BACKEND_MEMORY:
			default:
				slog.Error("invalid STORAGE_BACKEND, expected sqlite, file or memory", "STORAGE_BACKEND", backend)
				os.Exit(1)
			}
			slog.Debug("env", "STORAGE_BACKEND", backend)
			return backend
		}(),
		sqlitePath: func() string {
			sqlitePath := os.Getenv("SQLITE_PATH")
			if sqlitePath == "" {
				sqlitePath = "./sqlite.db"
			}
			slog.Debug("env", "SQLITE_PATH", sqlitePath)
			return sqlitePath
		}(),
		storageDir: func() string {
			storageDir := os.Getenv("STORAGE_DIR")
			if storageDir == "" {
				storageDir = "./data"
			}
			slog.Debug("env", "STORAGE_DIR", storageDir)
			return filepath.Clean(storageDir)
		}(),
		storageKey: func() string {
			storageKey := os.Getenv("STORAGE_KEY")
			if storageKey == "" {
				storageKey = "calendar-events"
			}
			slog.Debug("env", "STORAGE_KEY", storageKey)
			return storageKey
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),
		metricCollectionInterval: func() time.Duration {
			interval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if interval == "" {
				interval = "15s"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration <= 0 {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "value", interval, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", duration)
			return duration
		}(),
		storageSyncInterval: func() time.Duration {
			interval := os.Getenv("STORAGE_SYNC_INTERVAL")
			if interval == "" {
				return 0
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration < 0 {
				slog.Error("invalid STORAGE_SYNC_INTERVAL", "value", interval, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "STORAGE_SYNC_INTERVAL", duration)
			return duration
		}(),
		staticWebClientDir: func() string {
			staticWebClientDir := os.Getenv("STATIC_WEB_CLIENT_DIR")
			if staticWebClientDir == "" {
				slog.Warn("STATIC_WEB_CLIENT_DIR is not set, web client won't be served")
				return ""
			}
			info, err := os.Stat(staticWebClientDir)
			if err != nil {
				slog.Error("can't get info of STATIC_WEB_CLIENT_DIR", "error", err)
				os.Exit(1)
			}
			if !info.IsDir() {
				slog.Error("STATIC_WEB_CLIENT_DIR is not a directory", "path", staticWebClientDir)
				os.Exit(1)
			}
			slog.Debug("env", "STATIC_WEB_CLIENT_DIR", staticWebClientDir)
			return filepath.Clean(staticWebClientDir)
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get STORAGE_BACKEND env, default to sqlite
func (c *Config) GetStorageBackend() StorageBackend {
	return c.storageBackend
}

// Get SQLITE_PATH env, default to ./sqlite.db
func (c *Config) GetSQLitePath() string {
	return c.sqlitePath
}

// Get STORAGE_DIR env, default to ./data
func (c *Config) GetStorageDir() string {
	return c.storageDir
}

// Get STORAGE_KEY env, default to calendar-events
func (c *Config) GetStorageKey() string {
	return c.storageKey
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get STORAGE_SYNC_INTERVAL env, 0 disables the storage sync job
func (c *Config) GetStorageSyncInterval() time.Duration {
	return c.storageSyncInterval
}

// Get STATIC_WEB_CLIENT_DIR env, empty when the web client isn't served
func (c *Config) GetStaticWebClientDir() string {
	return c.staticWebClientDir
}

// ParseLogLevel reads LOG_LEVEL style values, unknown values mean debug.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
