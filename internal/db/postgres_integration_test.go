package db

import (
	"os"
	"testing"
)

// Runs against a real server only when NEURORECLAIM_POSTGRES_TEST_URL is set.
func TestPostgresStoreRecords(t *testing.T) {
	connStr := os.Getenv("NEURORECLAIM_POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("NEURORECLAIM_POSTGRES_TEST_URL not set")
	}
	sqlDB, err := OpenPostgres(connStr)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer sqlDB.Close()
	if err := RunMigrations(sqlDB, Postgres, ""); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	for _, table := range []string{"audit_log", "relapse_logs", "checkins", "workouts", "substance_profiles", "users"} {
		if _, err := sqlDB.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("clean %s: %v", table, err)
		}
	}
	st, err := NewPostgresStore(sqlDB)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	exerciseStore(t, st)
}
