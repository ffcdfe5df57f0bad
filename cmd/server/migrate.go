package main

import (
	"errors"
	"fmt"

	"github.com/soaringjerry/NeuroReclaim/internal/api"
	"github.com/soaringjerry/NeuroReclaim/internal/config"
	"github.com/soaringjerry/NeuroReclaim/internal/logger"
)

type MigrateCmd struct {
	Import string `help:"Memory-store snapshot (JSON) to copy into the database after migrating." type:"existingfile"`
}

func (c *MigrateCmd) Run(cfg *config.Config) error {
	if cfg.Backend() == config.BackendMemory {
		return errors.New("migrate needs --db set to a SQLite path or a postgres:// URL")
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()
	logger.Info("migrations applied", "backend", cfg.Backend())

	if c.Import == "" {
		return nil
	}
	return importSnapshot(c.Import, store)
}

// importSnapshot copies a memory-store snapshot into dst. Existing rows make it fail, so it is
// meant for a fresh database.
func importSnapshot(path string, dst api.Store) error {
	snap, err := api.ReadSnapshot(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	logger.Info("importing snapshot", "path", path,
		"users", len(snap.Users), "profiles", len(snap.Profiles), "workouts", len(snap.Workouts),
		"checkins", len(snap.Checkins), "relapses", len(snap.Relapses))
	if err := api.CopySnapshot(snap, dst); err != nil {
		return fmt.Errorf("copy snapshot: %w", err)
	}
	logger.Info("snapshot import completed")
	return nil
}
