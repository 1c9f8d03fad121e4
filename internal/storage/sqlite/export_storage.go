package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// ExportStorage implements interfaces.ExportStorage for SQLite
type ExportStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewExportStorage creates a new ExportStorage instance
func NewExportStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.ExportStorage {
	return &ExportStorage{
		db:     db,
		logger: logger,
	}
}

// ExportRows returns active, non-stale jobs joined with their company
// and stored contact, newest posting first.
func (s *ExportStorage) ExportRows(ctx context.Context, onlyRelevant bool, threshold float64) ([]*models.ExportRow, error) {
	query := `
		SELECT c.name, c.domain, COALESCE(c.website, ''), COALESCE(c.industry, ''), c.employee_count,
			COALESCE(c.ats_provider, ''), COALESCE(c.first_seen_date, ''), COALESCE(c.last_csv_date, ''),
			j.title, COALESCE(j.category, ''), COALESCE(j.location, ''), COALESCE(j.job_url, ''),
			COALESCE(j.posting_date, ''), j.relevance_score, COALESCE(j.verification_status, 'unverified'),
			COALESCE(d.person_name, ''), COALESCE(d.title, ''), COALESCE(d.email, ''),
			COALESCE(d.linkedin_url, ''), COALESCE(d.source_url, ''), COALESCE(d.confidence, '')
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		LEFT JOIN decision_makers d ON d.company_id = c.id
		WHERE j.is_active = 1
		AND COALESCE(j.verification_status, 'unverified') != 'stale'`
	args := []interface{}{}
	if onlyRelevant {
		query += " AND j.relevance_score >= ?"
		args = append(args, threshold)
	}
	query += " ORDER BY j.posting_date DESC, c.name"

	rows, err := s.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer rows.Close()

	var result []*models.ExportRow
	for rows.Next() {
		var (
			row           models.ExportRow
			employeeCount sql.NullInt64
		)
		err := rows.Scan(&row.CompanyName, &row.Domain, &row.Website, &row.Industry, &employeeCount,
			&row.ATSProvider, &row.FirstSeenDate, &row.LastCSVDate,
			&row.JobTitle, &row.JobCategory, &row.JobLocation, &row.JobURL,
			&row.PostingDate, &row.RelevanceScore, &row.VerificationStatus,
			&row.PersonName, &row.PersonTitle, &row.Email,
			&row.LinkedInURL, &row.SourceURL, &row.Confidence)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		if employeeCount.Valid {
			n := int(employeeCount.Int64)
			row.EmployeeCount = &n
		}
		// New companies are those first seen on their latest source date
		row.IsNewCompany = row.FirstSeenDate != "" && row.FirstSeenDate == row.LastCSVDate
		result = append(result, &row)
	}
	return result, rows.Err()
}
