package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/jot/internal/httpapi"
)

var watchNotes bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notes HTTP API",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		svc := openService(cfg)
		guard := newGuard(cfg)

		srv, err := httpapi.NewServer(svc, guard, httpapi.Config{
			CookieName:   cfg.CookieName,
			CookieSecure: cfg.CookieSecure,
			RequestRPS:   cfg.RequestRPS,
			RequestBurst: cfg.RequestBurst,
			Logger:       slog.Default(),
		})
		if err != nil {
			fatal("Failed to build server", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		slog.Info("starting jot", "config", cfg)
		if !guard.Enabled() {
			slog.Warn("no admin password configured, mutations are open to anyone")
		}

		if watchNotes {
			events, err := svc.Watch(ctx, "")
			if err != nil {
				fatal("Failed to watch notes directory", err)
			}
			go func() {
				for e := range events {
					slog.Info("notes directory changed", "event", e.Type, "id", e.ID)
				}
			}()
		}

		if err := httpapi.ListenAndServe(ctx, cfg.ListenAddr(), srv.Handler(), slog.Default()); err != nil {
			fatal("Server error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&watchNotes, "watch", false, "Log external changes to the notes directory")
}
