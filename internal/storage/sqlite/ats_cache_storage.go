package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// ATSCacheStorage implements interfaces.ATSCacheStorage for SQLite
type ATSCacheStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewATSCacheStorage creates a new ATSCacheStorage instance
func NewATSCacheStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.ATSCacheStorage {
	return &ATSCacheStorage{
		db:     db,
		logger: logger,
	}
}

// Lookup returns the cached detection for a domain. Expired entries are
// deleted on the way out and reported as a miss.
func (s *ATSCacheStorage) Lookup(ctx context.Context, domain string) (*models.ATSCacheEntry, error) {
	var entry models.ATSCacheEntry
	err := s.db.DB().QueryRowContext(ctx,
		"SELECT domain, ats_provider, COALESCE(board_token, ''), detected_at, expires_at FROM ats_cache WHERE domain = ?",
		domain).
		Scan(&entry.Domain, &entry.Provider, &entry.BoardToken, &entry.DetectedAt, &entry.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up ATS cache: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		if _, err := s.db.Exec(ctx,
			"DELETE FROM ats_cache WHERE domain = ?", domain); err != nil {
			s.logger.Warn().Err(err).Str("domain", domain).Msg("Failed to evict expired cache entry")
		}
		return nil, nil
	}

	return &entry, nil
}

// Store saves a detection result for a domain, replacing any prior entry
func (s *ATSCacheStorage) Store(ctx context.Context, entry *models.ATSCacheEntry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ats_cache (domain, ats_provider, board_token, detected_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			ats_provider = excluded.ats_provider,
			board_token = excluded.board_token,
			detected_at = excluded.detected_at,
			expires_at = excluded.expires_at`,
		entry.Domain, entry.Provider, entry.BoardToken, entry.DetectedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to store ATS cache entry: %w", err)
	}
	return nil
}

// Purge removes all expired entries and returns the count removed
func (s *ATSCacheStorage) Purge(ctx context.Context) (int64, error) {
	result, err := s.db.Exec(ctx,
		"DELETE FROM ats_cache WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge ATS cache: %w", err)
	}
	return result.RowsAffected()
}
