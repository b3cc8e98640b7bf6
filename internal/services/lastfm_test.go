package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/hitline/internal/shared"
)

func TestLastFMService(t *testing.T) {
	body := `{"similarartists":{"artist":[{"name":"Wham!","match":"1"},{"name":"Elton John","match":"0.8"}]}}`

	t.Run("Missing Key", func(t *testing.T) {
		if _, err := NewLastFMService("", "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Similar", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("method") != "artist.getsimilar" || q.Get("artist") != "George Michael" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			if q.Get("api_key") != "key" || q.Get("format") != "json" || q.Get("limit") != "10" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}))
		defer server.Close()

		srv, err := NewLastFMService("key", server.URL, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		raw, err := srv.SimilarRaw(context.Background(), "George Michael")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(raw) != body {
			t.Errorf("expected passthrough body, got %s", raw)
		}

		names, err := srv.Similar(context.Background(), "George Michael")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(names) != 2 || names[0] != "Wham!" {
			t.Errorf("unexpected names %v", names)
		}
	})

	t.Run("Missing Artist", func(t *testing.T) {
		srv, _ := NewLastFMService("key", "http://localhost", nil)
		if _, err := srv.SimilarRaw(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Upstream Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		srv, _ := NewLastFMService("key", server.URL, nil)
		if _, err := srv.Similar(context.Background(), "x"); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})
}
