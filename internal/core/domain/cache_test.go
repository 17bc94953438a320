package domain

import (
	"strings"
	"testing"
)

func TestCacheKeyFor(t *testing.T) {
	url1 := "https://example.com/schema.json"
	url2 := "https://example.com/other.json"

	key1 := CacheKeyFor(url1)
	key2 := CacheKeyFor(url2)

	if key1 == key2 {
		t.Fatalf("expected different keys, both are %s", key1)
	}
	if key1 != CacheKeyFor(url1) {
		t.Fatal("expected the same key for the same url")
	}
	for _, k := range []CacheKey{key1, key2} {
		if !strings.HasSuffix(string(k), ".json") {
			t.Fatalf("key %s should end with .json", k)
		}
		if len(k) != 64+len(".json") {
			t.Fatalf("key %s should be a hex sha256 digest", k)
		}
	}
}

func TestCacheKeyHashesExactString(t *testing.T) {
	// sha256("") is well known; the key is the digest of the raw bytes.
	if got := CacheKeyFor(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855.json" {
		t.Fatalf("unexpected key for empty url: %s", got)
	}
	if CacheKeyFor("https://example.com/a") == CacheKeyFor("https://example.com/a#") {
		t.Fatal("urls differing only by an empty fragment must not share a key")
	}
}
