package docs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/saferpay2openapi/internal/spec"
)

func TestFetch_RetriesTransientFailures(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	raw, err := Fetch(context.Background(), srv.URL, WithMaxRetries(3), WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(raw) != "<html>ok</html>" {
		t.Fatalf("body = %q", raw)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestFetch_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL, WithMaxRetries(2), WithBackoffBase(time.Millisecond))
	var se *spec.Error
	if !errors.As(err, &se) || se.Code != spec.FetchError {
		t.Fatalf("expected FetchError, got %v (%T)", err, err)
	}
	if se.Location != srv.URL {
		t.Errorf("location = %q", se.Location)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestFetch_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL, WithMaxRetries(5), WithBackoffBase(time.Millisecond))
	var se *spec.Error
	if !errors.As(err, &se) || se.Code != spec.FetchError {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Fetch(ctx, "http://127.0.0.1:1/index.html", WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(time.Millisecond))
	var se *spec.Error
	if !errors.As(err, &se) || se.Code != spec.FetchError {
		t.Fatalf("expected FetchError, got %v (%T)", err, err)
	}
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"ftp://example.com/index.html", "file:///etc/hosts", "   "} {
		_, err := Fetch(context.Background(), input)
		var se *spec.Error
		if !errors.As(err, &se) || se.Code != spec.FetchError {
			t.Errorf("Fetch(%q): expected FetchError, got %v", input, err)
		}
	}
}

func TestFetch_LocalFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte("<html></html>"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := Fetch(context.Background(), path)
	if err != nil || string(raw) != "<html></html>" {
		t.Fatalf("fetch local: %q, %v", raw, err)
	}

	_, err = Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	var se *spec.Error
	if !errors.As(err, &se) || se.Code != spec.FetchError {
		t.Fatalf("expected FetchError for missing file, got %v", err)
	}
}
