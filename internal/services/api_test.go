package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/hitline/internal/shared"
	tu "github.com/desertthunder/hitline/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
			if srv.limiter != nil {
				t.Error("expected no limiter by default")
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("With Rate Limit", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil, WithRateLimit(5, 0))
			if srv.limiter == nil {
				t.Fatal("expected limiter to be configured")
			}
			if srv.limiter.Burst() != 1 {
				t.Errorf("expected burst clamped to 1, got %d", srv.limiter.Burst())
			}

			if NewAPIService("", nil, WithRateLimit(0, 1)).limiter != nil {
				t.Error("expected non-positive rps to disable limiting")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}
				if r.URL.Query().Get("q") != "a b" {
					t.Errorf("expected query q='a b', got %q", r.URL.Query().Get("q"))
				}
				if r.Header.Get("X-Custom") != "yes" {
					t.Errorf("expected default header to be sent")
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status":"success"}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, WithHeader("X-Custom", "yes"))
			resp, err := srv.Get(context.Background(), "/test", url.Values{"q": {"a b"}})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}

			var body map[string]string
			if err := resp.Decode(&body); err != nil || body["status"] != "success" {
				t.Errorf("expected decoded status success, got %v (%v)", body, err)
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test", nil)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", string(resp.Body))
			}
		})

		t.Run("Non-2xx Is Returned, Not An Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() {
				t.Error("expected OK() to be false for 429")
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Get(context.Background(), "/test\x00invalid", nil)

			if err == nil {
				t.Fatal("expected error for invalid URL")
			}
			if !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}
			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test", nil)

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Failed Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(&tu.FCloser{}),
					Header:     make(http.Header),
				}, nil),
			}
			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test", nil)

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read error, got %v", err)
			}
		})

		t.Run("Limiter Honors Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil, WithRateLimit(0.001, 1))
			if _, err := srv.Get(context.Background(), "/", nil); err != nil {
				t.Fatalf("first request should use the burst token: %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			if _, err := srv.Get(ctx, "/", nil); err == nil {
				t.Error("expected limiter wait to fail once the context expires")
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Sends JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected Content-Type application/json, got %s", ct)
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != `{"key":"value"}` {
					t.Errorf("unexpected body %s", body)
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":"123"}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Post(context.Background(), "/create", []byte(`{"key":"value"}`))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated || !resp.IsJSON {
				t.Errorf("expected 201 JSON response, got %d (json=%v)", resp.StatusCode, resp.IsJSON)
			}
		})
	})
}
