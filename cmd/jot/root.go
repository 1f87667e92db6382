package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/jot"
	"github.com/aretw0/jot/internal/config"
	"github.com/aretw0/jot/pkg/auth"
	"github.com/aretw0/jot/pkg/core"
)

var (
	verbose    bool
	configPath string
	dataDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jot",
	Short: "A small note store that keeps one JSON file per note",
	Long: `jot stores short text notes as individual files in a directory and
serves them over a small HTTP API, optionally guarded by a shared password.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest jot.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory (overrides config)")
}

// loadConfig resolves the config file, applies flag overrides and exits on
// invalid settings.
func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			if found, err := jot.FindConfig(wd); err == nil {
				path = found
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		fatal("Invalid configuration", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if path != "" {
		slog.Debug("loaded config", "path", path)
	}
	return cfg
}

func openService(cfg *config.Config) *core.Service {
	svc, err := jot.New(cfg.NotesDir(),
		jot.WithFormat(cfg.Format),
		jot.WithIDScheme(cfg.IDScheme),
		jot.WithVersioning(cfg.Versioning),
		jot.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Failed to open notes", err)
	}
	return svc
}

func newGuard(cfg *config.Config) *auth.Guard {
	limiter := auth.NewLimiter(auth.LimiterConfig{
		Window:    cfg.LoginWindow,
		Threshold: cfg.LoginThreshold,
	}, nil)

	guard, err := auth.NewGuard(auth.GuardConfig{
		Secret:     cfg.AdminPassword,
		SecretHash: cfg.AdminPasswordHash,
		Limiter:    limiter,
		Logger:     slog.Default(),
	})
	if err != nil {
		fatal("Invalid admin password settings", err)
	}
	return guard
}
