package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Pipeline errors
	ErrUpstream            = fmt.Errorf("upstream service error")
	ErrMalformedResponse   = fmt.Errorf("malformed generation response")
	ErrNoMatchFound        = fmt.Errorf("no catalog match found")
	ErrInsufficientResults = fmt.Errorf("insufficient results")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// UpstreamError reports a non-success HTTP status from the generation or catalog service.
//
// It matches [ErrUpstream] with errors.Is.
type UpstreamError struct {
	Service string // e.g. "claude", "spotify", "lastfm"
	Status  int
	Body    string // truncated response body, for logs
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream returned status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: upstream returned status %d: %s", e.Service, e.Status, e.Body)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// MalformedResponseError reports generation output that could not be decoded into the expected shape.
//
// It matches [ErrMalformedResponse] with errors.Is and unwraps to the decode error, if any.
type MalformedResponseError struct {
	Payload string // fence-stripped text that failed to decode
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return ErrMalformedResponse.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformedResponse, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// Truncate shortens s to at most n bytes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
