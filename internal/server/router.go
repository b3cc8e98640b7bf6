package server

import (
	"net/http"
	"slices"
)

// BasicRouter registers method-qualified patterns ("GET /api/playlists/{id}") on an [http.ServeMux].
//
// The mux answers unknown methods on a known path with 405 and an Allow header, and sets
// [http.Request.Pattern] before any middleware runs, which the metrics use as the route label.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	patterns    []string
}

func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. Routes registered before the call are not wrapped by it.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle serves handler for method on path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.register(method+" "+path, handler)
}

// Handler mounts every pattern listed by h.Routes onto h.
func (r *BasicRouter) Handler(h Handler) {
	for _, pattern := range h.Routes() {
		r.register(pattern, h)
	}
}

// Patterns lists the registered patterns in registration order.
func (r *BasicRouter) Patterns() []string {
	return slices.Clone(r.patterns)
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler so the first middleware passed to [BasicRouter.Use] runs outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(r.middlewares) {
		handler = mw(handler)
	}
	return handler
}

func (r *BasicRouter) register(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, r.Apply(handler))
	r.patterns = append(r.patterns, pattern)
}
