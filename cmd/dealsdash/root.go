// cmd/dealsdash/root.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dealsdash/internal/app"
	"dealsdash/internal/common/config"
	"dealsdash/internal/common/logger"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "dealsdash",
	Short:         "Deals marketplace API and expiration reconciler",
	Long:          "dealsdash serves the categories, vendors and deals API, the nearby vendor search and the nightly deal expiration sweep",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml merged with configs/config.<APP_ENVIRONMENT>.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(serveCmd, sweepCmd, migrateCmd, reindexCmd)
}

// Execute runs the CLI
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// bootstrap loads configuration, builds the logger and connects the App.
// The returned cleanup flushes the logger and closes connections.
func bootstrap(ctx context.Context, retries int) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("config load failed: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	a, err := app.New(ctx, cfg, log, app.Options{ConnectRetries: retries})
	if err != nil {
		_ = zapLog.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		a.Close(context.Background())
		_ = zapLog.Sync()
	}
	return a, cleanup, nil
}
