// Package httpapi exposes the note store and login guard over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/jot/pkg/auth"
	"github.com/aretw0/jot/pkg/core"
)

// Config holds the transport settings of the API.
type Config struct {
	CookieName   string
	CookieSecure bool
	RequestRPS   float64 // 0 disables the per-client throttle
	RequestBurst int
	Logger       *slog.Logger
}

// Server wires HTTP routes to the note Service and the login Guard.
type Server struct {
	notes    *core.Service
	guard    *auth.Guard
	config   Config
	logger   *slog.Logger
	throttle *clientThrottle
}

// NewServer creates a Server. A nil guard means open mode.
func NewServer(notes *core.Service, guard *auth.Guard, config Config) (*Server, error) {
	if config.CookieName == "" {
		config.CookieName = "notes_session"
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if guard == nil {
		var err error
		if guard, err = auth.NewGuard(auth.GuardConfig{Logger: config.Logger}); err != nil {
			return nil, err
		}
	}

	s := &Server{
		notes:  notes,
		guard:  guard,
		config: config,
		logger: config.Logger,
	}
	if config.RequestRPS > 0 {
		s.throttle = newClientThrottle(config.RequestRPS, config.RequestBurst, 10*time.Minute)
	}
	return s, nil
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.Handle("POST /api/logout", s.requireAuth(http.HandlerFunc(s.handleLogout)))
	mux.Handle("GET /api/state", s.requireAuth(http.HandlerFunc(s.handleState)))

	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("GET /api/notes/{id}", s.handleGetNote)
	mux.Handle("POST /api/notes", s.requireAuth(http.HandlerFunc(s.handleCreateNote)))
	mux.Handle("PUT /api/notes/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateNote)))
	mux.Handle("DELETE /api/notes/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteNote)))
}

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var h http.Handler = mux
	if s.throttle != nil {
		h = s.throttleMiddleware(h)
	}
	return s.accessLog(h)
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
