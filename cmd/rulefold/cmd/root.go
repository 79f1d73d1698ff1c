package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/solatis/rulefold/internal/core/config"
	"github.com/solatis/rulefold/internal/fold"
	"github.com/solatis/rulefold/internal/modes"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	configFile string
	envFile    string
	dbURL      string
	logLevel   string
	logFormat  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rulefold",
	Short: "Consolidate reference file catalog rows into OR-valued match rules",
	Long: `rulefold folds discrete catalog parameter rows into compact match rules
that select exactly the same reference files for every concrete input.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before the config (ignored if missing)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "catalog database URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

func Execute() error {
	return rootCmd.Execute()
}

// setup loads the environment file, installs the logger and loads config.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	logger, err := newLogger(logLevel, logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		loaded.Database.URL = dbURL
	}
	cfg = loaded
	return nil
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or text)", format)
	}
}

// newEngine builds a fold engine from the loaded config.
func newEngine() (*fold.Engine, error) {
	return fold.New(fold.Options{
		Workers:        cfg.Engine.Workers,
		MaxExpansion:   cfg.Engine.MaxExpansion,
		DetectOverlaps: cfg.Engine.DetectOverlaps,
		CacheSize:      cfg.Engine.CacheSize,
		Logger:         slog.Default(),
	})
}

// newRegistry returns the built-in modes with the configured modes file
// layered on top.
func newRegistry() (*modes.Registry, error) {
	reg := modes.DefaultRegistry()
	if cfg.Modes.File != "" {
		if err := reg.LoadFile(cfg.Modes.File); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
