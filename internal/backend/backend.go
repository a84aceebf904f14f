// Package backend selects and assembles the persistence layer.
package backend

import (
	"fmt"
	"log/slog"

	"fintrack/internal/config"
	"fintrack/internal/memory"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

// Backend is the full persistence surface the HTTP server works against.
type Backend interface {
	store.TransactionStore
	store.BudgetStore
	store.CardStore
	store.UserResolver
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// BackendResult pairs the backend with its cleanup.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) IsValid() bool {
	return t == SQLite || t == Memory
}

// Config holds what backend construction needs, decoupled from the full app
// config.
type Config struct {
	Type         Type
	SQLiteDBPath string
}

// FromAppConfig converts application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:         t,
		SQLiteDBPath: appConfig.SQLiteDBPath,
	}, nil
}

// Create builds the configured backend.
func Create(cfg Config, logger *slog.Logger) (*BackendResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &BackendResult{Backend: repo, Cleanup: repo.Close}, nil

	case Memory:
		s := memory.NewStore()
		logger.Info("Initialized memory backend")
		return &BackendResult{Backend: s, Cleanup: nil}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
