package model

import "time"

// CacheRecord is the persisted form of a data cache entry. Data holds the
// JSON encoding of the cached value.
type CacheRecord struct {
	Key       string
	Data      []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}
