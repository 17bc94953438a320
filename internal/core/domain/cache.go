package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CacheKeySuffix marks the stored format of cached schemas.
const CacheKeySuffix = ".json"

// CacheKey is the file name a schema URL is cached under.
type CacheKey string

// CacheKeyFor hashes the exact URL string, not its resolved form, so
// "https://x/a" and "https://x/a#" are distinct entries.
func CacheKeyFor(url string) CacheKey {
	digest := sha256.Sum256([]byte(url))
	return CacheKey(hex.EncodeToString(digest[:]) + CacheKeySuffix)
}

// CacheEntry describes one fetched schema in the cache index.
type CacheEntry struct {
	Key       CacheKey
	URL       string
	SizeBytes int64
	FetchedAt time.Time
	// Present is false when the index still lists a key whose file is gone.
	Present bool
}
