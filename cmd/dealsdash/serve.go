// cmd/dealsdash/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dealsdash/internal/common/config"
	"dealsdash/internal/reconciler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the expiration scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := bootstrap(ctx, 15)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := a.Config
	log := a.Logger

	var scheduler *reconciler.Scheduler
	if cfg.Reconciler.Enabled {
		scheduler, err = a.Scheduler()
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		log.Info("Expiration scheduler started", map[string]interface{}{
			"schedule": cfg.Reconciler.Schedule,
			"timeZone": cfg.Reconciler.TimeZone,
			"nextRun":  scheduler.NextRun(),
		})
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      a.Handler(),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
		IdleTimeout:  config.GetDuration(cfg.HTTP.IdleTimeout),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received", nil)
	case err = <-serveErr:
		if err != nil {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if scheduler != nil {
		if stopErr := scheduler.Stop(shutdownCtx); stopErr != nil {
			log.Warn("Scheduler stop timed out", map[string]interface{}{"error": stopErr.Error()})
		}
	}
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("HTTP server shutdown failed", map[string]interface{}{"error": shutdownErr.Error()})
	}

	log.Info("Server stopped", nil)
	return err
}
