// Package server exposes the HTTP API and the SSE event stream.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tubevault/internal/app"
	"tubevault/internal/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var application *app.App

const DefaultPort = "8841"

// NewRouter returns the HTTP handler for the API.
func NewRouter(a *app.App) http.Handler {
	// Inject app
	application = a

	// Initialize router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- API Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/videos", func(r chi.Router) {
			r.Get("/", handleListVideos)
			r.Post("/", handleAddVideo)
			r.Get("/{videoID}", handleGetVideo)
			r.Delete("/{videoID}", handleDeleteVideo)
			r.Post("/{videoID}/download", handleDownload)
			r.Delete("/{videoID}/download", handleCancelDownload)
			r.Get("/{videoID}/stream", handleStream)
		})
		r.Get("/search", handleRemoteSearch)
		r.Get("/events", handleEvents)
	})

	return r
}

// StartServer runs the HTTP server until ctx is cancelled.
func StartServer(ctx context.Context, a *app.App, port string) error {
	if port == "" {
		port = DefaultPort
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(a),
	}

	errCh := make(chan error, 1)
	go func() {
		logging.S("Tubevault server running on http://localhost%s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
