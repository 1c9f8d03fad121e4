package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// SnapshotStorage implements interfaces.SnapshotStorage for SQLite
type SnapshotStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

// Record writes one per-company audit row for a run
func (s *SnapshotStorage) Record(ctx context.Context, snapshot *models.RunSnapshot) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO run_snapshots (run_id, run_date, company_id, jobs_found, new_jobs, removed_jobs, status, error_message)
		VALUES (?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?)`,
		snapshot.RunID, snapshot.CompanyID, snapshot.JobsFound, snapshot.NewJobs,
		snapshot.RemovedJobs, snapshot.Status, snapshot.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to record run snapshot: %w", err)
	}
	return nil
}

// LastRun aggregates the most recent run's snapshots, or nil when no
// run has completed yet.
func (s *SnapshotStorage) LastRun(ctx context.Context) (*models.RunAggregate, error) {
	var agg models.RunAggregate
	err := s.db.DB().QueryRowContext(ctx, `
		SELECT run_id, MAX(run_date), COUNT(*), SUM(jobs_found), SUM(new_jobs), SUM(removed_jobs)
		FROM run_snapshots
		WHERE run_id = (SELECT run_id FROM run_snapshots ORDER BY run_date DESC, id DESC LIMIT 1)
		GROUP BY run_id`).
		Scan(&agg.RunID, &agg.RunDate, &agg.CompaniesChecked, &agg.JobsFound, &agg.NewJobs, &agg.RemovedJobs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate last run: %w", err)
	}
	return &agg, nil
}
