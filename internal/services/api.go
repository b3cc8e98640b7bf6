// Shared HTTP transport for the external API clients
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/hitline/internal/shared"
	"golang.org/x/time/rate"
)

// APIService performs raw HTTP requests against a single base URL.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	limiter    *rate.Limiter
}

// APIOption configures an [APIService].
type APIOption func(*APIService)

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) APIOption {
	return func(a *APIService) {
		a.headers.Set(key, value)
	}
}

// WithRateLimit caps outgoing requests at rps per second. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) APIOption {
	return func(a *APIService) {
		if rps <= 0 {
			a.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewAPIService creates a new API service instance for baseURL.
func NewAPIService(baseURL string, client *http.Client, opts ...APIOption) *APIService {
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:    baseURL,
		httpClient: client,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Get performs a GET request to the specified path with optional query parameters and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return a.do(ctx, http.MethodGet, fullURL, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, a.baseURL+path, data)
}

func (a *APIService) do(ctx context.Context, method, fullURL string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range a.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
		IsJSON:     json.Valid(respBody),
	}, nil
}
