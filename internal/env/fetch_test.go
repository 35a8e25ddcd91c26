package env

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "reliverse/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte("DATABASE_URL=\n"))
	}))
	defer srv.Close()

	got, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(got) != "DATABASE_URL=\n" {
		t.Errorf("Fetch() = %q", got)
	}
}

func TestHTTPFetcher_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, "missing"},
		{"empty body", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL)
			if !errors.Is(err, ErrFetch) {
				t.Errorf("Fetch() error = %v, want ErrFetch", err)
			}
		})
	}
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("A=\n"))
	}))
	defer srv.Close()

	got, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(got) != "A=\n" || calls.Load() != 2 {
		t.Errorf("Fetch() = %q after %d calls, want success on the second call", got, calls.Load())
	}
}
