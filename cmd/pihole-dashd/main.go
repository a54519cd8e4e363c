package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/haukened/pihole-dash/internal/dash/common/log"
	"github.com/haukened/pihole-dash/internal/dash/config"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "pihole-dashd"

	defaultShutdownTimeout = 10 * time.Second
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Pi-hole dashboard backend",
	Long: `pihole-dashd serves the dashboard JSON API over the Pi-hole query log and
list databases, and lifts timed wildcard blocks when they expire.

Configuration is read from PIHOLE_DASH_* environment variables. A .env file
in the working directory is loaded first when present.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the timed block scheduler",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env (if any), parses the environment and configures global logging.
func loadConfig() (*config.AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("logging configuration error: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info(map[string]any{
		"version":       version,
		"env":           cfg.Env,
		"log_level":     cfg.LogLevel,
		"address":       cfg.Address(),
		"store_backend": cfg.StoreBackend,
		"ftl_db":        cfg.FTLDBPath,
		"gravity_db":    cfg.GravityDBPath,
	}, "Starting Pi-hole dashboard")

	app, err := buildApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Error(map[string]any{"error": err.Error()}, "Dashboard failed")
		return err
	}

	log.Info(nil, "Pi-hole dashboard stopped gracefully")
	return nil
}
