package main

import (
	"path/filepath"
	"testing"

	"github.com/soaringjerry/NeuroReclaim/internal/api"
	"github.com/soaringjerry/NeuroReclaim/internal/config"
	"github.com/soaringjerry/NeuroReclaim/internal/db"
	"github.com/soaringjerry/NeuroReclaim/internal/models"
)

func TestOpenStoreSQLite(t *testing.T) {
	cfg := &config.Config{DB: filepath.Join(t.TempDir(), "neuroreclaim.db")}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer closeStore()
	if _, ok := st.(*db.SQLStore); !ok {
		t.Fatalf("expected SQL store, got %T", st)
	}
	if err := st.AddUser(&models.User{ID: "u1", Email: "a@example.com", PassHash: []byte("h")}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
}

func TestImportSnapshotIntoSQLite(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "snapshot.json")
	mem, err := api.NewMemoryStoreFromPath(snapPath)
	if err != nil {
		t.Fatalf("NewMemoryStoreFromPath: %v", err)
	}
	if err := mem.AddUser(&models.User{ID: "u1", Email: "ana@example.com", PassHash: []byte("hash"), Role: models.RoleUser}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if err := mem.CreateProfile(&models.SubstanceProfile{ID: "p1", UserID: "u1", SubstanceType: "nicotine", Unit: "cigarette",
		UnitPrice: 0.5, Currency: "EUR", AbstinenceStartDate: "2024-01-01", PriorDailyConsumption: 10}); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	cfg := &config.Config{DB: filepath.Join(dir, "neuroreclaim.db")}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer closeStore()
	if err := importSnapshot(snapPath, st); err != nil {
		t.Fatalf("importSnapshot: %v", err)
	}
	u, _ := st.FindUserByEmail("ana@example.com")
	if u == nil || string(u.PassHash) != "hash" {
		t.Fatalf("user not imported: %+v", u)
	}
	if p, _ := st.GetProfileByUser("u1"); p == nil || p.PriorDailyConsumption != 10 {
		t.Fatalf("profile not imported: %+v", p)
	}
}

func TestMigrateRejectsMemoryBackend(t *testing.T) {
	if err := (&MigrateCmd{}).Run(&config.Config{DB: "memory"}); err == nil {
		t.Fatalf("expected error for memory backend")
	}
}
