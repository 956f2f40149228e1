// Package cache provides the layered response cache used by the source
// fetchers, keyed by the hash of the request URL or query.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching fetched responses.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a request URL or query string.
func Key(request string) string {
	hash := sha256.Sum256([]byte(request))
	return "ecoprofiler:v1:" + hex.EncodeToString(hash[:])
}
