package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/nova/internal/model"
)

// LoadCacheEntries returns every persisted cache entry, expired ones
// included, so the cache can still serve them as stale fallbacks.
func (s *SQLiteStorage) LoadCacheEntries(ctx context.Context) ([]model.CacheRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, data, fetched_at, expires_at
		FROM cache_entries
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.CacheRecord
	for rows.Next() {
		var r model.CacheRecord
		if err := rows.Scan(&r.Key, &r.Data, &r.FetchedAt, &r.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache entries: %w", err)
	}

	return records, nil
}

// SaveCacheEntry inserts or replaces the entry for record.Key.
func (s *SQLiteStorage) SaveCacheEntry(ctx context.Context, record model.CacheRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCacheRecord(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, data, fetched_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, record.Key, record.Data, record.FetchedAt.UTC(), record.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save cache entry %q: %w", record.Key, err)
	}
	return nil
}

// DeleteCacheEntry removes key and reports whether it existed.
func (s *SQLiteStorage) DeleteCacheEntry(ctx context.Context, key string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(key, "key"); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete cache entry %q: %w", key, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteAllCacheEntries removes every entry and returns how many there were.
func (s *SQLiteStorage) DeleteAllCacheEntries(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// PruneCacheEntries deletes entries that expired before cutoff.
func (s *SQLiteStorage) PruneCacheEntries(ctx context.Context, cutoff time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
