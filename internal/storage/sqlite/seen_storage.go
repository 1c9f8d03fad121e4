package sqlite

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
)

// SeenCompanyStorage implements interfaces.SeenCompanyStorage for SQLite
type SeenCompanyStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewSeenCompanyStorage creates a new SeenCompanyStorage instance
func NewSeenCompanyStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.SeenCompanyStorage {
	return &SeenCompanyStorage{
		db:     db,
		logger: logger,
	}
}

// IsSeen reports whether a domain has been delivered by a source before
func (s *SeenCompanyStorage) IsSeen(ctx context.Context, domain string) (bool, error) {
	var count int
	err := s.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM seen_companies WHERE domain = ?", domain).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check seen company: %w", err)
	}
	return count > 0, nil
}

// MarkSeen records a source-delivered domain so later runs skip it
func (s *SeenCompanyStorage) MarkSeen(ctx context.Context, domain, companyName, listingDate, runID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO seen_companies (domain, company_name, github_listing_date, run_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			company_name = excluded.company_name,
			github_listing_date = excluded.github_listing_date,
			run_id = excluded.run_id`,
		domain, companyName, listingDate, runID)
	if err != nil {
		return fmt.Errorf("failed to mark company seen: %w", err)
	}
	return nil
}

// Reset removes every marker so all companies are reprocessed
func (s *SeenCompanyStorage) Reset(ctx context.Context) (int64, error) {
	result, err := s.db.Exec(ctx, "DELETE FROM seen_companies")
	if err != nil {
		return 0, fmt.Errorf("failed to reset seen companies: %w", err)
	}
	removed, _ := result.RowsAffected()
	s.logger.Info().Int64("removed", removed).Msg("Seen-company markers cleared")
	return removed, nil
}
