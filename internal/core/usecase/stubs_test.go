package usecase

import (
	"context"
	"sync"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
)

// stubCache is an in-memory SchemaCache for tests.
type stubCache struct {
	mu      sync.Mutex
	entries map[domain.CacheKey]string
	puts    int
	putErr  error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[domain.CacheKey]string)}
}

func (c *stubCache) Get(key domain.CacheKey) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.entries[key]
	return text, ok, nil
}

func (c *stubCache) Has(key domain.CacheKey) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

func (c *stubCache) Put(key domain.CacheKey, schemaText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.puts++
	c.entries[key] = schemaText
	return nil
}

func (c *stubCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[domain.CacheKey]string)
	return nil
}

func (c *stubCache) Dir() string { return "mem" }

// stubIndex is an in-memory CacheIndexRepository.
type stubIndex struct {
	mu       sync.Mutex
	entries  []domain.CacheEntry
	clearErr error
}

func (i *stubIndex) Record(_ context.Context, entry domain.CacheEntry) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = append(i.entries, entry)
	return nil
}

func (i *stubIndex) List(_ context.Context) ([]domain.CacheEntry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]domain.CacheEntry(nil), i.entries...), nil
}

func (i *stubIndex) Clear(_ context.Context) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.clearErr != nil {
		return 0, i.clearErr
	}
	n := int64(len(i.entries))
	i.entries = nil
	return n, nil
}

// stubRuns is an in-memory RunRepository.
type stubRuns struct {
	runs       []domain.ValidationRun
	lastFilter domain.RunFilter
}

func (r *stubRuns) Log(_ context.Context, run domain.ValidationRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func (r *stubRuns) List(_ context.Context, filter domain.RunFilter) ([]domain.ValidationRun, error) {
	r.lastFilter = filter
	return r.runs, nil
}
