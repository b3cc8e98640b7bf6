// package server contains the HTTP boundary of hitline: routing, middleware and the playlist API handlers
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

type Middleware func(http.Handler) http.Handler

// Handler serves a group of endpoints and lists their method-qualified patterns ("POST /api/ai-mix").
type Handler interface {
	http.Handler
	Routes() []string
}

// Router mounts handlers behind a middleware chain. [BasicRouter] is the only implementation.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	Patterns() []string
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

var _ Router = (*BasicRouter)(nil)

// ServerOpts configures [NewServer].
type ServerOpts struct {
	Addr           string
	AllowedOrigins []string
	Logger         *log.Logger
	Metrics        *Metrics // nil disables /metrics
}

// NewServer builds an [http.Server] routing handlers behind the standard middleware stack.
//
// Middleware order (outermost first): CORS, recover, metrics, logging. CORS wraps the whole router so preflight
// requests are answered before method matching.
func NewServer(opts ServerOpts, handlers ...Handler) *http.Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	router := NewBasicRouter()
	router.Use(Recover(opts.Logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(Logging(opts.Logger))

	for _, h := range handlers {
		router.Handler(h)
	}
	if opts.Metrics != nil {
		router.Handle(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	opts.Logger.Debug("routes registered", "patterns", router.Patterns())

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           CORS(opts.AllowedOrigins)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ListenAndServe runs srv until ctx is cancelled, then shuts it down gracefully.
func ListenAndServe(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
