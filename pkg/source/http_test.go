package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dnamaps/arlequin/pkg/cache"
)

func TestFetchTableCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("key,diff\nAGGT,0.5\n"))
	}))
	defer srv.Close()

	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	client := NewClient(store, nil, time.Hour)
	ctx := context.Background()

	tab, err := client.FetchTable(ctx, srv.URL, false)
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if keys := tab.Keys(); len(keys) != 1 || keys[0] != "AGGT" {
		t.Errorf("Keys = %v", keys)
	}

	// Second fetch comes from cache.
	if _, err := client.FetchTable(ctx, srv.URL, false); err != nil {
		t.Fatalf("FetchTable (cached): %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}

	// Refresh bypasses the cache.
	if _, err := client.FetchTable(ctx, srv.URL, true); err != nil {
		t.Fatalf("FetchTable (refresh): %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestFetchTableNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(nil, nil, time.Hour)
	_, err := client.FetchTable(context.Background(), srv.URL, false)
	if !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCheckStatus(t *testing.T) {
	if err := checkStatus(http.StatusOK); err != nil {
		t.Errorf("200: %v", err)
	}
	if err := checkStatus(http.StatusNotFound); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("404 = %v, want ErrNotFound", err)
	}
	if err := checkStatus(http.StatusBadGateway); !cache.IsRetryable(err) {
		t.Errorf("502 = %v, want retryable", err)
	}
	if err := checkStatus(http.StatusForbidden); cache.IsRetryable(err) {
		t.Errorf("403 should not be retryable, got %v", err)
	}
	if err := checkStatus(http.StatusForbidden); !errors.Is(err, cache.ErrNetwork) {
		t.Errorf("403 = %v, want ErrNetwork", err)
	}
}
