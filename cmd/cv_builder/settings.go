package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/versions"
)

// loadSettings merges the config file, the environment and the root flags, in that
// order of increasing precedence.
func loadSettings() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
		cfg.Verbose = cfg.Verbose || fileCfg.Verbose
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, err
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// workspace is an open store plus the optional database behind it
type workspace struct {
	cfg   config.Config
	store *versions.Store
	db    *db.DB
}

func (w *workspace) Close() {
	if w.db != nil {
		w.db.Close()
	}
}

// openWorkspace opens the version store: PostgreSQL when a database URL is configured,
// the JSON file otherwise.
func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	ws := &workspace{cfg: cfg}

	var backend versions.Backend
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		ws.db = database
		backend = db.NewVersionBackend(database, cfg.Verbose)
	} else {
		backend = versions.NewFileBackend(cfg.StorePath, cfg.Verbose)
	}

	store, err := versions.Open(ctx, backend, versions.WithVerbose(cfg.Verbose))
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.store = store
	return ws, nil
}

// version returns the version with id, or the active one when id is empty
func (w *workspace) version(id string) (types.Version, error) {
	if id == "" {
		return w.store.Active(), nil
	}
	return w.store.Get(id)
}

// versionID resolves an optional --version flag to an id
func (w *workspace) versionID(id string) string {
	if id == "" {
		return w.store.ActiveID()
	}
	return id
}
