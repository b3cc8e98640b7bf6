// Package server provides HTTP routing, middleware and the playlist API handlers.
//
// # Routing
//
// [BasicRouter] mounts method-qualified patterns on an [http.ServeMux], so the mux handles 405s and path
// wildcards. [Middleware] passed to Use runs in call order, the first one outermost. A [Handler] owns a
// group of endpoints and lists their patterns through Routes.
//
// [PlaylistHandler] serves the generation endpoints, stored history and /health. Failures are written as
// {"success":false,"error":...} with a status derived from the sentinel error in the chain:
//   - 400 invalid input or arguments
//   - 404 unknown stored playlist
//   - 422 AI mix with fewer validated songs than the configured minimum
//   - 502 upstream, transport or malformed generation output
//   - 503 unconfigured service
//
// # Observability
//
// [Logging] writes one structured line per request and [Metrics] exposes Prometheus counters and latency
// histograms on /metrics from a private registry.
package server
