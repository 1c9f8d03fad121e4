package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// JobStorage implements interfaces.JobStorage for SQLite
type JobStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

// ActiveExternalIDs returns external_id -> job id for a company's
// active jobs.
func (s *JobStorage) ActiveExternalIDs(ctx context.Context, companyID int64) (map[string]int64, error) {
	rows, err := s.db.DB().QueryContext(ctx,
		"SELECT external_id, id FROM jobs WHERE company_id = ? AND is_active = 1", companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active external ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var (
			externalID string
			jobID      int64
		)
		if err := rows.Scan(&externalID, &jobID); err != nil {
			return nil, err
		}
		ids[externalID] = jobID
	}
	return ids, rows.Err()
}

// ApplyChanges applies one company's diff in a single transaction:
// insert new jobs (with a 'new' change row each), deactivate removed
// jobs (with a 'removed' change row each), refresh last_seen_at on
// surviving jobs. A failure rolls the whole diff back.
func (s *JobStorage) ApplyChanges(ctx context.Context, companyID int64, runID string, newJobs []models.JobPosting, removedJobIDs, survivingJobIDs []int64) error {
	return s.db.WriteTx(ctx, func(tx *sql.Tx) error {
		for _, posting := range newJobs {
			var postingDate interface{}
			if posting.PostingDate != nil {
				postingDate = posting.PostingDate.Format("2006-01-02")
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO jobs (company_id, external_id, title, category, department, location, description,
					job_url, posting_date, discovered_at, last_seen_at, is_active, relevance_score, verification_status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 1, ?, ?)
				ON CONFLICT(company_id, external_id) DO UPDATE SET
					title = excluded.title,
					category = excluded.category,
					department = excluded.department,
					location = excluded.location,
					description = excluded.description,
					job_url = excluded.job_url,
					posting_date = excluded.posting_date,
					last_seen_at = CURRENT_TIMESTAMP,
					is_active = 1,
					relevance_score = excluded.relevance_score`,
				companyID, posting.ExternalID, posting.Title, posting.MatchedCategory,
				posting.Department, posting.Location, posting.Description,
				posting.JobURL, postingDate, posting.RelevanceScore, models.VerificationUnverified)
			if err != nil {
				return fmt.Errorf("failed to insert job %s: %w", posting.ExternalID, err)
			}

			// last_insert_rowid() is not updated on the DO UPDATE path,
			// so a reactivation would read a stale id; resolve by key
			var jobID int64
			if err := tx.QueryRowContext(ctx,
				"SELECT id FROM jobs WHERE company_id = ? AND external_id = ?",
				companyID, posting.ExternalID).Scan(&jobID); err != nil {
				return fmt.Errorf("failed to resolve job id: %w", err)
			}

			if _, err := tx.ExecContext(ctx,
				"INSERT INTO job_changes (job_id, run_id, change_type, changed_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
				jobID, runID, models.ChangeNew); err != nil {
				return fmt.Errorf("failed to record new-job change: %w", err)
			}
		}

		for _, jobID := range removedJobIDs {
			if _, err := tx.ExecContext(ctx,
				"UPDATE jobs SET is_active = 0 WHERE id = ?", jobID); err != nil {
				return fmt.Errorf("failed to deactivate job %d: %w", jobID, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO job_changes (job_id, run_id, change_type, changed_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
				jobID, runID, models.ChangeRemoved); err != nil {
				return fmt.Errorf("failed to record removed-job change: %w", err)
			}
		}

		for _, jobID := range survivingJobIDs {
			if _, err := tx.ExecContext(ctx,
				"UPDATE jobs SET last_seen_at = CURRENT_TIMESTAMP WHERE id = ?", jobID); err != nil {
				return fmt.Errorf("failed to refresh job %d: %w", jobID, err)
			}
		}

		return nil
	})
}

const jobColumns = `id, company_id, external_id, title, COALESCE(category, ''), COALESCE(department, ''),
	COALESCE(location, ''), COALESCE(description, ''), COALESCE(job_url, ''), COALESCE(posting_date, ''),
	discovered_at, last_seen_at, is_active, relevance_score, COALESCE(verification_status, 'unverified')`

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	err := row.Scan(&job.ID, &job.CompanyID, &job.ExternalID, &job.Title, &job.Category, &job.Department,
		&job.Location, &job.Description, &job.JobURL, &job.PostingDate,
		&job.DiscoveredAt, &job.LastSeenAt, &job.IsActive, &job.RelevanceScore, &job.VerificationStatus)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ActiveJobs returns a company's active jobs, newest posting first
func (s *JobStorage) ActiveJobs(ctx context.Context, companyID int64) ([]*models.Job, error) {
	rows, err := s.db.DB().QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE company_id = ? AND is_active = 1 ORDER BY posting_date DESC",
		companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ActiveJobsWithURLs returns every active job that has a URL
func (s *JobStorage) ActiveJobsWithURLs(ctx context.Context) ([]*models.Job, error) {
	rows, err := s.db.DB().QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE is_active = 1 AND COALESCE(job_url, '') != ''")
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs for verification: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// SetVerificationStatus records the verifier's verdict for a job
func (s *JobStorage) SetVerificationStatus(ctx context.Context, jobID int64, status string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE jobs SET verification_status = ? WHERE id = ?", status, jobID)
	if err != nil {
		return fmt.Errorf("failed to set verification status: %w", err)
	}
	return nil
}

// CountActive returns the number of active jobs
func (s *JobStorage) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs WHERE is_active = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return count, nil
}
