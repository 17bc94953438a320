package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/ports"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultUserAgent    = "validate-json-schema/0.1.0"

	maxSchemaBytes = 16 << 20
)

// SchemaFetcher downloads remote schemas and keeps them in a SchemaCache.
// Cached entries are served forever; only an explicit clear forces a refetch.
type SchemaFetcher struct {
	cache     ports.SchemaCache
	index     ports.CacheIndexRepository
	client    *http.Client
	userAgent string
	now       func() time.Time
	group     singleflight.Group
}

type FetcherOption func(*SchemaFetcher)

func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *SchemaFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

func WithUserAgent(userAgent string) FetcherOption {
	return func(f *SchemaFetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithCacheIndex records every newly cached URL in index.
func WithCacheIndex(index ports.CacheIndexRepository) FetcherOption {
	return func(f *SchemaFetcher) {
		f.index = index
	}
}

func NewSchemaFetcher(cache ports.SchemaCache, opts ...FetcherOption) *SchemaFetcher {
	f := &SchemaFetcher{
		cache:     cache,
		client:    &http.Client{Timeout: DefaultFetchTimeout},
		userAgent: DefaultUserAgent,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the schema text for rawURL, from the cache when present and
// from a single HTTP GET otherwise. Concurrent calls for the same URL share
// one request.
func (f *SchemaFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := checkURL(rawURL); err != nil {
		return "", err
	}

	key := domain.CacheKeyFor(rawURL)
	text, found, err := f.cache.Get(key)
	if err != nil {
		return "", err
	}
	if found {
		return text, nil
	}

	v, err, _ := f.group.Do(string(key), func() (any, error) {
		return f.download(ctx, rawURL, key)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (f *SchemaFetcher) download(ctx context.Context, rawURL string, key domain.CacheKey) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &domain.InvalidURLError{Input: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/schema+json, application/json;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.HTTPRequestError{URL: rawURL, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.HTTPRequestError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSchemaBytes+1))
	if err != nil {
		return "", &domain.HTTPRequestError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxSchemaBytes {
		return "", &domain.HTTPRequestError{URL: rawURL, Err: fmt.Errorf("schema larger than %d bytes", maxSchemaBytes)}
	}

	text := string(body)
	if _, err := ParseJSON(text); err != nil {
		return "", err
	}
	if err := f.cache.Put(key, text); err != nil {
		return "", err
	}

	if f.index != nil {
		entry := domain.CacheEntry{
			Key:       key,
			URL:       rawURL,
			SizeBytes: int64(len(body)),
			FetchedAt: f.now(),
			Present:   true,
		}
		if err := f.index.Record(ctx, entry); err != nil {
			log.Printf("record cache index url=%s key=%s: %v", rawURL, key, err)
		}
	}
	return text, nil
}

// checkURL rejects strings that are not absolute URLs before any cache or
// network access happens.
func checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &domain.InvalidURLError{Input: rawURL, Err: err}
	}
	if u.Scheme == "" {
		return &domain.InvalidURLError{Input: rawURL, Err: errors.New("missing scheme")}
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return &domain.InvalidURLError{Input: rawURL, Err: errors.New("missing host")}
	}
	return nil
}
