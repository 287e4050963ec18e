package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Query normalizes a search term for deduplication: lower-cased, trimmed,
// inner whitespace collapsed. The feed itself compares raw terms; this is
// for cache keys and batch tooling only.
func Query(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

// CacheKey computes a stable Redis key for an upstream request URL.
func CacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "unsplash:page:" + hex.EncodeToString(sum[:])
}
