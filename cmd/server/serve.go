package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/api"
	"github.com/soaringjerry/NeuroReclaim/internal/config"
	"github.com/soaringjerry/NeuroReclaim/internal/logger"
)

type ServeCmd struct {
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests on shutdown." default:"10s"`
}

func (c *ServeCmd) Run(cfg *config.Config) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	router := api.NewRouter(store, api.Options{
		Version:     version,
		Commit:      cfg.Commit,
		BuildTime:   cfg.BuildTime,
		OwnerEmail:  cfg.OwnerEmail,
		TokenTTL:    cfg.TokenTTL,
		CORS:        cfg.CORS,
		CORSOrigins: cfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("neuroreclaim listening", "addr", cfg.Addr, "backend", cfg.Backend(), "version", version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
