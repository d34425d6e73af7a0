package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	pinghandlers "github.com/rocketscienceinc/tictactoe-web/pkg/handlers"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - registers every route of the page and its JSON API.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", pinghandlers.PingHandler)

	mux.HandleFunc("GET /{$}", h.IndexHandler)
	mux.HandleFunc("POST /cell/{row}/{col}", h.ActivateHandler)
	mux.HandleFunc("POST /reset", h.ResetHandler)

	mux.HandleFunc("GET /api/state", h.StateHandler)
	mux.HandleFunc("POST /api/cell/{row}/{col}", h.APIActivateHandler)
	mux.HandleFunc("POST /api/reset", h.APIResetHandler)
	mux.HandleFunc("DELETE /api/session", h.EndSessionHandler)

	return mux
}

// Start - serves the handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return Serve(ctx, listener, handler)
}

// Serve - serves the handler on listener until ctx is canceled. It returns
// only after in-flight requests have drained or the shutdown timeout expired.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// Serve returns as soon as Shutdown starts
	<-shutdownDone

	return nil
}
