package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/ports"
)

var ErrCacheIndexDisabled = errors.New("cache index is not enabled")

type CacheService struct {
	cache ports.SchemaCache
	index ports.CacheIndexRepository
}

// NewCacheService accepts a nil index; List then fails with
// ErrCacheIndexDisabled and Clear only touches the files.
func NewCacheService(cache ports.SchemaCache, index ports.CacheIndexRepository) *CacheService {
	return &CacheService{cache: cache, index: index}
}

func (s *CacheService) Dir() string {
	return s.cache.Dir()
}

// List returns the indexed entries, flagging the ones whose file is missing.
func (s *CacheService) List(ctx context.Context) ([]domain.CacheEntry, error) {
	if s.index == nil {
		return nil, ErrCacheIndexDisabled
	}
	entries, err := s.index.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		present, err := s.cache.Has(entries[i].Key)
		if err != nil {
			return nil, err
		}
		entries[i].Present = present
	}
	return entries, nil
}

// Clear removes every cached schema and forgets the index. Only a failure to
// remove the cache directory is returned; the index is best-effort.
func (s *CacheService) Clear(ctx context.Context) error {
	if err := s.cache.Clear(); err != nil {
		return err
	}
	if s.index == nil {
		return nil
	}
	if _, err := s.index.Clear(ctx); err != nil {
		log.Printf("clear cache index dir=%s: %v", s.cache.Dir(), err)
	}
	return nil
}
