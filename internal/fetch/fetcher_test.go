package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/cache"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/retry"
)

const testHTML = `<html><head><title>Widget Store</title></head><body><h1>Widgets</h1></body></html>`

func fastRetry() *retry.Config {
	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return &cfg
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("request missing User-Agent")
		}
		w.Write([]byte(testHTML))
	}))
	defer srv.Close()

	f := New(Options{Retry: fastRetry()})
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.StatusCode != 200 {
		t.Errorf("StatusCode = %d", page.StatusCode)
	}
	if page.Title != "Widget Store" {
		t.Errorf("Title = %q", page.Title)
	}
	if page.HTML != testHTML {
		t.Errorf("HTML = %q", page.HTML)
	}
	if page.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestFetch_ServesFromCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(testHTML))
	}))
	defer srv.Close()

	c := cache.NewMemoryCache(1024*1024, time.Minute, nil)
	defer c.Close()

	f := New(Options{Cache: c, Retry: fastRetry()})
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestFetch_ClientErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(Options{Retry: fastRetry()})
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hits = %d, want 1 (404 is not retryable)", n)
	}
}

func TestFetch_RetriesServerError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(testHTML))
	}))
	defer srv.Close()

	f := New(Options{Retry: fastRetry()})
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.StatusCode != 200 {
		t.Errorf("StatusCode = %d", page.StatusCode)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("server hits = %d, want 2", n)
	}
}
