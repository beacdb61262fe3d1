package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/nova/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrInvalidCacheEntry = errors.New("invalid cache entry")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCacheRecord rejects records the cache could not serve back.
func validateCacheRecord(r model.CacheRecord) error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("%w: missing key", ErrInvalidCacheEntry)
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("%w: missing data for %q", ErrInvalidCacheEntry, r.Key)
	}
	if r.FetchedAt.IsZero() || r.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: missing timestamps for %q", ErrInvalidCacheEntry, r.Key)
	}
	if r.ExpiresAt.Before(r.FetchedAt) {
		return fmt.Errorf("%w: %q expires before it was fetched", ErrInvalidCacheEntry, r.Key)
	}
	return nil
}
