package ports

import (
	"context"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
)

// SchemaCache persists schema text by cache key.
type SchemaCache interface {
	Get(key domain.CacheKey) (string, bool, error)
	Has(key domain.CacheKey) (bool, error)
	Put(key domain.CacheKey, schemaText string) error
	Clear() error
	Dir() string
}

// CacheIndexRepository remembers which URL produced which cache key.
type CacheIndexRepository interface {
	Record(ctx context.Context, entry domain.CacheEntry) error
	List(ctx context.Context) ([]domain.CacheEntry, error)
	Clear(ctx context.Context) (int64, error)
}
