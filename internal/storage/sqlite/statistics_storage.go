package sqlite

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// StatisticsStorage implements interfaces.StatisticsStorage for SQLite
type StatisticsStorage struct {
	db        *SQLiteDB
	snapshots interfaces.SnapshotStorage
	logger    arbor.ILogger
}

// NewStatisticsStorage creates a new StatisticsStorage instance
func NewStatisticsStorage(db *SQLiteDB, snapshots interfaces.SnapshotStorage, logger arbor.ILogger) interfaces.StatisticsStorage {
	return &StatisticsStorage{
		db:        db,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Statistics builds the aggregate view served by the status verb
func (s *StatisticsStorage) Statistics(ctx context.Context, relevanceThreshold float64) (*models.Statistics, error) {
	stats := &models.Statistics{
		ByATS:      make(map[string]int),
		ByCategory: make(map[string]int),
	}

	if err := s.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM companies").Scan(&stats.TotalCompanies); err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	if err := s.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs WHERE is_active = 1").Scan(&stats.ActiveJobs); err != nil {
		return nil, fmt.Errorf("failed to count active jobs: %w", err)
	}
	if err := s.db.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs WHERE is_active = 1 AND relevance_score >= ?",
		relevanceThreshold).Scan(&stats.RelevantJobs); err != nil {
		return nil, fmt.Errorf("failed to count relevant jobs: %w", err)
	}

	lastRun, err := s.snapshots.LastRun(ctx)
	if err != nil {
		return nil, err
	}
	stats.LastRun = lastRun

	if err := s.fillByATS(ctx, stats); err != nil {
		return nil, err
	}
	if err := s.fillByCategory(ctx, stats); err != nil {
		return nil, err
	}
	if err := s.fillRecentChanges(ctx, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *StatisticsStorage) fillByATS(ctx context.Context, stats *models.Statistics) error {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT ats_provider, COUNT(*) FROM companies
		WHERE COALESCE(ats_provider, '') != ''
		GROUP BY ats_provider`)
	if err != nil {
		return fmt.Errorf("failed to group companies by ATS: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			provider string
			count    int
		)
		if err := rows.Scan(&provider, &count); err != nil {
			return err
		}
		stats.ByATS[provider] = count
	}
	return rows.Err()
}

func (s *StatisticsStorage) fillByCategory(ctx context.Context, stats *models.Statistics) error {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT category, COUNT(*) FROM jobs
		WHERE is_active = 1 AND COALESCE(category, '') != ''
		GROUP BY category`)
	if err != nil {
		return fmt.Errorf("failed to group jobs by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return err
		}
		stats.ByCategory[category] = count
	}
	return rows.Err()
}

func (s *StatisticsStorage) fillRecentChanges(ctx context.Context, stats *models.Statistics) error {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT ch.change_type, j.title, c.name, ch.changed_at
		FROM job_changes ch
		JOIN jobs j ON j.id = ch.job_id
		JOIN companies c ON c.id = j.company_id
		ORDER BY ch.changed_at DESC, ch.id DESC
		LIMIT 20`)
	if err != nil {
		return fmt.Errorf("failed to query recent changes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var change models.ChangeSummary
		if err := rows.Scan(&change.ChangeType, &change.JobTitle, &change.CompanyName, &change.ChangedAt); err != nil {
			return err
		}
		stats.RecentChanges = append(stats.RecentChanges, change)
	}
	return rows.Err()
}
