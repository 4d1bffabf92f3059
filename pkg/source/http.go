package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dnamaps/arlequin/pkg/cache"
	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/table"
)

// httpTimeout bounds a single document fetch.
const httpTimeout = 30 * time.Second

// Client fetches statistics documents over HTTP with caching and retries.
// Fetched bytes are stored under the "tables" namespace so repeated renders
// of the same endpoint skip the network.
type Client struct {
	http  *http.Client
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewClient creates a fetching client. A nil cache disables caching.
func NewClient(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Client{
		http:  &http.Client{Timeout: httpTimeout},
		cache: c,
		keyer: keyer,
		ttl:   ttl,
	}
}

// FetchTable retrieves a keyed statistics table from url. If refresh is true
// the cache is bypassed and the fresh document replaces any cached copy.
func (c *Client) FetchTable(ctx context.Context, url string, refresh bool) (*table.Table, error) {
	data, err := c.fetch(ctx, url, refresh)
	if err != nil {
		return nil, err
	}
	return LoadCSV(bytes.NewReader(data))
}

// FetchFlat retrieves a flat correlation matrix from url.
func (c *Client) FetchFlat(ctx context.Context, url string, refresh bool) (*corr.Flat, error) {
	data, err := c.fetch(ctx, url, refresh)
	if err != nil {
		return nil, err
	}
	return LoadFlatCSV(bytes.NewReader(data))
}

// FetchMatrix retrieves a two-level correlation matrix from url.
func (c *Client) FetchMatrix(ctx context.Context, url string, refresh bool) (*corr.Matrix, error) {
	data, err := c.fetch(ctx, url, refresh)
	if err != nil {
		return nil, err
	}
	return LoadMatrixCSV(bytes.NewReader(data))
}

func (c *Client) fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	key := c.keyer.HTTPKey("tables", url)
	if !refresh {
		if data, hit, _ := c.cache.Get(ctx, key); hit {
			return data, nil
		}
	}

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.doRequest(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	_ = c.cache.Set(ctx, key, data, c.ttl)
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}
