// Package config holds the runtime settings shared by the server commands.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/soaringjerry/NeuroReclaim/internal/logger"
)

// Config is embedded into the CLI so every field can come from a flag or its env var.
type Config struct {
	Addr          string        `help:"HTTP listen address." env:"NEURORECLAIM_ADDR" default:":8080"`
	DB            string        `help:"Database: 'memory', a SQLite file path, or a postgres:// URL." env:"NEURORECLAIM_DB" default:"memory"`
	Snapshot      string        `help:"JSON file the memory backend persists to." env:"NEURORECLAIM_SNAPSHOT" type:"path"`
	MigrationsDir string        `help:"Directory with SQL migrations overriding the embedded ones." env:"NEURORECLAIM_MIGRATIONS_DIR"`
	JWTSecret     string        `help:"HMAC secret for session tokens." env:"NEURORECLAIM_JWT_SECRET"`
	TokenTTL      time.Duration `help:"Session token lifetime." env:"NEURORECLAIM_TOKEN_TTL" default:"720h"`
	OwnerEmail    string        `help:"Account email that is granted the admin role." env:"NEURORECLAIM_OWNER_EMAIL"`
	CORS          bool          `help:"Send CORS headers." env:"NEURORECLAIM_CORS" default:"true" negatable:""`
	CORSOrigins   []string      `help:"Origins allowed to call the API; * allows any." env:"NEURORECLAIM_CORS_ORIGINS" default:"*" sep:","`
	LogLevel      string        `help:"Log level." env:"NEURORECLAIM_LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	LogDir        string        `help:"Directory for rotating log files." env:"NEURORECLAIM_LOG_DIR"`
	LogJSON       bool          `help:"Emit logs as JSON." env:"NEURORECLAIM_LOG_JSON"`
	Commit        string        `help:"Build commit reported by /version." env:"NEURORECLAIM_COMMIT" hidden:""`
	BuildTime     string        `help:"Build time reported by /version." env:"NEURORECLAIM_BUILD_TIME" hidden:""`
}

type Backend int

const (
	BackendMemory Backend = iota
	BackendSQLite
	BackendPostgres
)

func (b Backend) String() string {
	switch b {
	case BackendSQLite:
		return "sqlite"
	case BackendPostgres:
		return "postgres"
	}
	return "memory"
}

// Backend picks the store implementation from the DB setting.
func (c Config) Backend() Backend {
	db := strings.TrimSpace(c.DB)
	switch {
	case db == "" || strings.EqualFold(db, "memory"):
		return BackendMemory
	case strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://"):
		return BackendPostgres
	default:
		return BackendSQLite
	}
}

func (c Config) Logger() logger.Config {
	return logger.Config{Level: c.LogLevel, Dir: c.LogDir, JSON: c.LogJSON}
}

// LoadDotEnv loads variables from the given files (default ".env") without overriding the
// environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
