package main

import (
	"database/sql"
	"fmt"

	"github.com/soaringjerry/NeuroReclaim/internal/api"
	"github.com/soaringjerry/NeuroReclaim/internal/config"
	"github.com/soaringjerry/NeuroReclaim/internal/db"
	"github.com/soaringjerry/NeuroReclaim/internal/logger"
)

// openStore builds the store selected by cfg.DB. SQL stores are migrated before use.
// The returned close func is never nil.
func openStore(cfg *config.Config) (api.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend() {
	case config.BackendMemory:
		if cfg.Snapshot == "" {
			logger.Warn("using in-memory store; data is lost on restart")
			return api.NewMemoryStore(), noop, nil
		}
		st, err := api.NewMemoryStoreFromPath(cfg.Snapshot)
		if err != nil {
			return nil, noop, fmt.Errorf("load snapshot: %w", err)
		}
		logger.Info("using in-memory store", "snapshot", cfg.Snapshot)
		return st, noop, nil
	case config.BackendPostgres:
		sqlDB, err := db.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, noop, err
		}
		st, err := migrateAndWrap(sqlDB, db.Postgres, cfg.MigrationsDir)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("using postgres store", "db", db.RedactConnString(cfg.DB))
		return st, sqlDB.Close, nil
	default:
		sqlDB, err := db.OpenSQLite(cfg.DB)
		if err != nil {
			return nil, noop, err
		}
		st, err := migrateAndWrap(sqlDB, db.SQLite, cfg.MigrationsDir)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("using sqlite store", "path", cfg.DB)
		return st, sqlDB.Close, nil
	}
}

func migrateAndWrap(sqlDB *sql.DB, d db.Dialect, migrationsDir string) (*db.SQLStore, error) {
	fail := func(err error) (*db.SQLStore, error) {
		if cerr := sqlDB.Close(); cerr != nil {
			logger.Warn("close database", "error", cerr)
		}
		return nil, err
	}
	if err := db.RunMigrations(sqlDB, d, migrationsDir); err != nil {
		return fail(fmt.Errorf("run migrations: %w", err))
	}
	var (
		st  *db.SQLStore
		err error
	)
	if d == db.Postgres {
		st, err = db.NewPostgresStore(sqlDB)
	} else {
		st, err = db.NewSQLiteStore(sqlDB)
	}
	if err != nil {
		return fail(fmt.Errorf("init %s store: %w", d, err))
	}
	return st, nil
}
