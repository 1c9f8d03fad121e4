package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// CompanyStorage implements interfaces.CompanyStorage for SQLite
type CompanyStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewCompanyStorage creates a new CompanyStorage instance
func NewCompanyStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.CompanyStorage {
	return &CompanyStorage{
		db:     db,
		logger: logger,
	}
}

// UpsertCompany inserts a company or refreshes an existing row keyed by
// domain. A company is "new or resurfacing" when it has never been seen
// or when its last source date differs from sourceDate, which is what
// gates re-detection downstream.
func (s *CompanyStorage) UpsertCompany(ctx context.Context, candidate *models.CompanyCandidate, runID, sourceDate string) (int64, bool, error) {
	var (
		id          int64
		lastCSVDate sql.NullString
	)
	err := s.db.DB().QueryRowContext(ctx,
		"SELECT id, last_csv_date FROM companies WHERE domain = ?", candidate.Domain).
		Scan(&id, &lastCSVDate)

	if err == sql.ErrNoRows {
		result, err := s.db.Exec(ctx, `
			INSERT INTO companies (name, domain, website, industry, keywords, technologies, employee_count,
				first_seen_date, last_csv_date, current_run_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
			candidate.Name, candidate.Domain, candidate.Website, candidate.Industry,
			candidate.Keywords, candidate.Technologies, candidate.EmployeeCount,
			sourceDate, sourceDate, runID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert company: %w", err)
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to get company id: %w", err)
		}
		return newID, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up company: %w", err)
	}

	resurfacing := !lastCSVDate.Valid || lastCSVDate.String != sourceDate

	_, err = s.db.Exec(ctx, `
		UPDATE companies SET
			name = ?,
			website = CASE WHEN ? != '' THEN ? ELSE website END,
			industry = CASE WHEN ? != '' THEN ? ELSE industry END,
			keywords = CASE WHEN ? != '' THEN ? ELSE keywords END,
			technologies = CASE WHEN ? != '' THEN ? ELSE technologies END,
			employee_count = COALESCE(?, employee_count),
			last_csv_date = ?,
			current_run_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		candidate.Name,
		candidate.Website, candidate.Website,
		candidate.Industry, candidate.Industry,
		candidate.Keywords, candidate.Keywords,
		candidate.Technologies, candidate.Technologies,
		candidate.EmployeeCount,
		sourceDate, runID, id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to update company: %w", err)
	}

	return id, resurfacing, nil
}

// GetByDomain returns a company by normalized domain, or nil when not found
func (s *CompanyStorage) GetByDomain(ctx context.Context, domain string) (*models.Company, error) {
	return s.getOne(ctx, "SELECT "+companyColumns+" FROM companies WHERE domain = ?", domain)
}

// GetByID returns a company by id, or nil when not found
func (s *CompanyStorage) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return s.getOne(ctx, "SELECT "+companyColumns+" FROM companies WHERE id = ?", id)
}

const companyColumns = `id, name, domain,
	COALESCE(website, ''), COALESCE(industry, ''), COALESCE(keywords, ''), COALESCE(technologies, ''),
	employee_count, COALESCE(ats_provider, ''), COALESCE(ats_board_token, ''), COALESCE(careers_page_url, ''),
	last_checked_at, urgency_score,
	COALESCE(first_seen_date, ''), COALESCE(last_csv_date, ''), COALESCE(current_run_id, ''),
	created_at, updated_at`

func (s *CompanyStorage) getOne(ctx context.Context, query string, args ...interface{}) (*models.Company, error) {
	company, err := scanCompany(s.db.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row rowScanner) (*models.Company, error) {
	var (
		company       models.Company
		employeeCount sql.NullInt64
		lastChecked   sql.NullTime
	)
	err := row.Scan(
		&company.ID, &company.Name, &company.Domain,
		&company.Website, &company.Industry, &company.Keywords, &company.Technologies,
		&employeeCount, &company.ATSProvider, &company.ATSBoardToken, &company.CareersURL,
		&lastChecked, &company.UrgencyScore,
		&company.FirstSeenDate, &company.LastCSVDate, &company.CurrentRunID,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if employeeCount.Valid {
		n := int(employeeCount.Int64)
		company.EmployeeCount = &n
	}
	if lastChecked.Valid {
		t := lastChecked.Time
		company.LastCheckedAt = &t
	}
	return &company, nil
}

// UpdateATSInfo records the detection outcome for a company
func (s *CompanyStorage) UpdateATSInfo(ctx context.Context, companyID int64, provider, boardToken, careersURL string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE companies SET ats_provider = ?, ats_board_token = ?, careers_page_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		provider, boardToken, careersURL, companyID)
	if err != nil {
		return fmt.Errorf("failed to update ATS info: %w", err)
	}
	return nil
}

// UpdateEmployeeCount sets the headcount found during enrichment
func (s *CompanyStorage) UpdateEmployeeCount(ctx context.Context, companyID int64, count int) error {
	_, err := s.db.Exec(ctx,
		"UPDATE companies SET employee_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		count, companyID)
	if err != nil {
		return fmt.Errorf("failed to update employee count: %w", err)
	}
	return nil
}

// UpdateUrgencyScore sets the per-run hiring urgency score
func (s *CompanyStorage) UpdateUrgencyScore(ctx context.Context, companyID int64, score int) error {
	_, err := s.db.Exec(ctx,
		"UPDATE companies SET urgency_score = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		score, companyID)
	if err != nil {
		return fmt.Errorf("failed to update urgency score: %w", err)
	}
	return nil
}

// TouchLastChecked stamps the company as checked this run
func (s *CompanyStorage) TouchLastChecked(ctx context.Context, companyID int64) error {
	_, err := s.db.Exec(ctx,
		"UPDATE companies SET last_checked_at = CURRENT_TIMESTAMP WHERE id = ?", companyID)
	if err != nil {
		return fmt.Errorf("failed to touch last_checked_at: %w", err)
	}
	return nil
}

// ListForEnrichment returns companies with no stored decision maker,
// highest urgency score first when rankByUrgency is set and most
// recently updated first otherwise. linkedin_only companies are
// excluded unless includeLinkedInOnly is set.
func (s *CompanyStorage) ListForEnrichment(ctx context.Context, limit int, includeLinkedInOnly, rankByUrgency bool) ([]*models.Company, error) {
	query := `
		SELECT ` + companyColumns + ` FROM companies c
		WHERE NOT EXISTS (SELECT 1 FROM decision_makers d WHERE d.company_id = c.id)`
	if !includeLinkedInOnly {
		query += ` AND COALESCE(c.ats_provider, '') != '` + models.ProviderLinkedInOnly + `'`
	}
	if rankByUrgency {
		query += ` ORDER BY c.urgency_score DESC, c.updated_at DESC LIMIT ?`
	} else {
		query += ` ORDER BY c.updated_at DESC LIMIT ?`
	}

	return s.queryCompanies(ctx, "failed to list companies for enrichment", query, limit)
}

// TopByUrgency returns the limit companies with the highest hiring
// urgency scores.
func (s *CompanyStorage) TopByUrgency(ctx context.Context, limit int) ([]*models.Company, error) {
	return s.queryCompanies(ctx, "failed to list companies by urgency",
		"SELECT "+companyColumns+" FROM companies c ORDER BY c.urgency_score DESC, c.updated_at DESC LIMIT ?",
		limit)
}

func (s *CompanyStorage) queryCompanies(ctx context.Context, failure, query string, args ...interface{}) ([]*models.Company, error) {
	rows, err := s.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", failure, err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// CompaniesForUpload returns companies under the headcount bound with
// an active job posted in the last 7 days, newest posting first.
func (s *CompanyStorage) CompaniesForUpload(ctx context.Context, maxEmployeeCount int) ([]*models.UploadCompany, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT c.id, c.name, c.domain,
			COALESCE(c.website, ''), COALESCE(c.industry, ''), COALESCE(c.keywords, ''), COALESCE(c.technologies, ''),
			c.employee_count, COALESCE(c.ats_provider, ''), COALESCE(c.ats_board_token, ''), COALESCE(c.careers_page_url, ''),
			c.last_checked_at, c.urgency_score,
			COALESCE(c.first_seen_date, ''), COALESCE(c.last_csv_date, ''), COALESCE(c.current_run_id, ''),
			c.created_at, c.updated_at,
			d.person_name, d.title, d.email, d.linkedin_url, d.source_url, d.confidence,
			(SELECT MAX(j.posting_date) FROM jobs j WHERE j.company_id = c.id AND j.is_active = 1) AS most_recent_posting
		FROM companies c
		LEFT JOIN decision_makers d ON d.company_id = c.id
		WHERE (c.employee_count IS NULL OR c.employee_count <= ?)
		AND EXISTS (
			SELECT 1 FROM jobs j
			WHERE j.company_id = c.id AND j.is_active = 1
			AND j.posting_date >= date('now', '-7 days')
		)
		ORDER BY most_recent_posting DESC`, maxEmployeeCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies for upload: %w", err)
	}
	defer rows.Close()

	var result []*models.UploadCompany
	for rows.Next() {
		var (
			company       models.Company
			employeeCount sql.NullInt64
			lastChecked   sql.NullTime
			personName    sql.NullString
			title         sql.NullString
			email         sql.NullString
			linkedinURL   sql.NullString
			sourceURL     sql.NullString
			confidence    sql.NullString
			mostRecent    sql.NullString
		)
		err := rows.Scan(
			&company.ID, &company.Name, &company.Domain,
			&company.Website, &company.Industry, &company.Keywords, &company.Technologies,
			&employeeCount, &company.ATSProvider, &company.ATSBoardToken, &company.CareersURL,
			&lastChecked, &company.UrgencyScore,
			&company.FirstSeenDate, &company.LastCSVDate, &company.CurrentRunID,
			&company.CreatedAt, &company.UpdatedAt,
			&personName, &title, &email, &linkedinURL, &sourceURL, &confidence,
			&mostRecent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload company: %w", err)
		}
		if employeeCount.Valid {
			n := int(employeeCount.Int64)
			company.EmployeeCount = &n
		}
		if lastChecked.Valid {
			t := lastChecked.Time
			company.LastCheckedAt = &t
		}

		upload := &models.UploadCompany{
			Company:               company,
			MostRecentPostingDate: mostRecent.String,
		}
		if personName.Valid && personName.String != "" {
			upload.DecisionMaker = &models.DecisionMaker{
				CompanyID:   company.ID,
				PersonName:  personName.String,
				Title:       title.String,
				Email:       email.String,
				LinkedInURL: linkedinURL.String,
				SourceURL:   sourceURL.String,
				Confidence:  confidence.String,
			}
		}
		result = append(result, upload)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach the recent active jobs per company
	for _, upload := range result {
		jobs, err := s.recentActiveJobs(ctx, upload.Company.ID)
		if err != nil {
			return nil, err
		}
		upload.Jobs = jobs
	}

	return result, nil
}

func (s *CompanyStorage) recentActiveJobs(ctx context.Context, companyID int64) ([]models.Job, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, company_id, external_id, title, COALESCE(category, ''), COALESCE(location, ''),
			COALESCE(job_url, ''), COALESCE(posting_date, ''), COALESCE(verification_status, 'unverified'), relevance_score
		FROM jobs
		WHERE company_id = ? AND is_active = 1 AND posting_date >= date('now', '-7 days')
		ORDER BY posting_date DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		job.IsActive = true
		if err := rows.Scan(&job.ID, &job.CompanyID, &job.ExternalID, &job.Title, &job.Category,
			&job.Location, &job.JobURL, &job.PostingDate, &job.VerificationStatus, &job.RelevanceScore); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Count returns the number of tracked companies
func (s *CompanyStorage) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM companies").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}
