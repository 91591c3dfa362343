package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/you/emrsvc/internal/app"
	"github.com/you/emrsvc/internal/config"
	"github.com/you/emrsvc/internal/logging"
)

var (
	configPath string
	envFile    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), app.Run)
		},
	}

	root := &cobra.Command{
		Use:           "emrsvc",
		Short:         "EMR authentication gateway and clinical insight service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadEnv(envFile)
		},
		RunE: serve.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(serve)
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the schema, default policies and the admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), app.Migrate)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the configured version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Version)
			return nil
		},
	})
	return root
}

// loadEnv loads a dotenv file; a missing file is not an error
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

func withRuntime(parent context.Context, run func(context.Context, *config.Config, *zap.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exiting", zap.Error(err))
		return err
	}
	return nil
}
