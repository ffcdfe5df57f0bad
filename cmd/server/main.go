package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/soaringjerry/NeuroReclaim/internal/config"
	"github.com/soaringjerry/NeuroReclaim/internal/logger"
	"github.com/soaringjerry/NeuroReclaim/internal/middleware"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type CLI struct {
	config.Config `embed:""`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Apply SQL migrations and optionally import a memory snapshot."`
	Metrics MetricsCmd `cmd:"" help:"Print recovery metrics for a profile without a server."`
	Version VersionCmd `cmd:"" help:"Print build information."`
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: load .env: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("neuroreclaim"),
		kong.Description("Recovery tracking API and metrics engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	if err := logger.Init(cli.Logger()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(1)
	}
	if cli.JWTSecret != "" {
		middleware.SetSecret(cli.JWTSecret)
	}

	if err := ctx.Run(&cli.Config); err != nil {
		logger.Error("command failed", "command", ctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type VersionCmd struct{}

func (c *VersionCmd) Run(cfg *config.Config) error {
	fmt.Printf("neuroreclaim %s\ncommit: %s\nbuilt: %s\n", version, orDash(cfg.Commit), orDash(cfg.BuildTime))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
