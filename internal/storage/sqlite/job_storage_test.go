package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

func dateDaysAgo(t *testing.T, days int) time.Time {
	t.Helper()
	return time.Now().AddDate(0, 0, -days)
}

func seedCompany(t *testing.T, db *SQLiteDB, domain string) int64 {
	t.Helper()
	storage := NewCompanyStorage(db, arbor.NewLogger())
	id, _, err := storage.UpsertCompany(context.Background(),
		&models.CompanyCandidate{Name: domain, Domain: domain}, "run_seed", "2026-08-24")
	require.NoError(t, err)
	return id
}

func TestJobStorage_ApplyChangesInsertsNewJobs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()
	companyID := seedCompany(t, db, "acme.com")

	posted := dateDaysAgo(t, 1)
	err := storage.ApplyChanges(ctx, companyID, "run_1", []models.JobPosting{
		{ExternalID: "gh-1", Title: "Content Strategist", JobURL: "https://boards.greenhouse.io/acme/jobs/1", PostingDate: &posted, RelevanceScore: 84, MatchedCategory: "content_marketing"},
		{ExternalID: "gh-2", Title: "SEO Manager", JobURL: "https://boards.greenhouse.io/acme/jobs/2", RelevanceScore: 80, MatchedCategory: "seo"},
	}, nil, nil)
	require.NoError(t, err)

	active, err := storage.ActiveExternalIDs(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	jobs, err := storage.ActiveJobs(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, job := range jobs {
		assert.True(t, job.IsActive)
		assert.Equal(t, models.VerificationUnverified, job.VerificationStatus)
	}

	// One 'new' change per inserted job
	var changes int
	err = db.DB().QueryRow(
		"SELECT COUNT(*) FROM job_changes WHERE run_id = 'run_1' AND change_type = 'new'").Scan(&changes)
	require.NoError(t, err)
	assert.Equal(t, 2, changes)
}

func TestJobStorage_ApplyChangesRemovesAndSurvives(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()
	companyID := seedCompany(t, db, "acme.com")

	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_1", []models.JobPosting{
		{ExternalID: "gh-1", Title: "Content Strategist", RelevanceScore: 84},
		{ExternalID: "gh-2", Title: "SEO Manager", RelevanceScore: 80},
	}, nil, nil))

	ids, err := storage.ActiveExternalIDs(ctx, companyID)
	require.NoError(t, err)

	// Second run: gh-1 gone, gh-2 survives
	err = storage.ApplyChanges(ctx, companyID, "run_2", nil,
		[]int64{ids["gh-1"]}, []int64{ids["gh-2"]})
	require.NoError(t, err)

	active, err := storage.ActiveExternalIDs(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	_, ok := active["gh-2"]
	assert.True(t, ok)

	var removed int
	err = db.DB().QueryRow(
		"SELECT COUNT(*) FROM job_changes WHERE run_id = 'run_2' AND change_type = 'removed'").Scan(&removed)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestJobStorage_ReappearingJobReactivates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()
	companyID := seedCompany(t, db, "acme.com")

	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_1", []models.JobPosting{
		{ExternalID: "gh-1", Title: "Content Strategist", RelevanceScore: 84},
	}, nil, nil))

	ids, err := storage.ActiveExternalIDs(ctx, companyID)
	require.NoError(t, err)
	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_2", nil, []int64{ids["gh-1"]}, nil))

	// The same external id coming back reactivates the existing row
	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_3", []models.JobPosting{
		{ExternalID: "gh-1", Title: "Content Strategist", RelevanceScore: 84},
	}, nil, nil))

	active, err := storage.ActiveExternalIDs(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// Still exactly one stored row for the external id
	var total int
	err = db.DB().QueryRow(
		"SELECT COUNT(*) FROM jobs WHERE company_id = ? AND external_id = 'gh-1'", companyID).Scan(&total)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestJobStorage_ReactivationBatchedWithNewJob(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()
	companyID := seedCompany(t, db, "acme.com")

	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_1", []models.JobPosting{
		{ExternalID: "gh-1", Title: "Content Strategist", RelevanceScore: 84},
	}, nil, nil))

	ids, err := storage.ActiveExternalIDs(ctx, companyID)
	require.NoError(t, err)
	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_2", nil, []int64{ids["gh-1"]}, nil))

	// A genuinely new job in the same batch as the reactivation; each
	// change row must land on its own job's id
	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_3", []models.JobPosting{
		{ExternalID: "gh-2", Title: "SEO Manager", RelevanceScore: 80},
		{ExternalID: "gh-1", Title: "Content Strategist", RelevanceScore: 84},
	}, nil, nil))

	active, err := storage.ActiveExternalIDs(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	rows, err := db.DB().Query(`
		SELECT j.external_id FROM job_changes c
		JOIN jobs j ON j.id = c.job_id
		WHERE c.run_id = 'run_3' AND c.change_type = 'new'
		ORDER BY j.external_id`)
	require.NoError(t, err)
	defer rows.Close()

	var changed []string
	for rows.Next() {
		var externalID string
		require.NoError(t, rows.Scan(&externalID))
		changed = append(changed, externalID)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"gh-1", "gh-2"}, changed)
}

func TestJobStorage_CompanyDeleteRestricted(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()
	companyID := seedCompany(t, db, "acme.com")

	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_1", []models.JobPosting{
		{ExternalID: "gh-1", Title: "Content Strategist", RelevanceScore: 84},
	}, nil, nil))

	// Companies with jobs cannot be deleted
	_, err := db.Exec(ctx, "DELETE FROM companies WHERE id = ?", companyID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrConflict))
}

func TestJobStorage_SetVerificationStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	storage := NewJobStorage(db, arbor.NewLogger())
	ctx := context.Background()
	companyID := seedCompany(t, db, "acme.com")

	require.NoError(t, storage.ApplyChanges(ctx, companyID, "run_1", []models.JobPosting{
		{ExternalID: "gh-1", Title: "Content Strategist", JobURL: "https://acme.com/jobs/1", RelevanceScore: 84},
	}, nil, nil))

	jobs, err := storage.ActiveJobsWithURLs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NoError(t, storage.SetVerificationStatus(ctx, jobs[0].ID, models.VerificationStale))

	updated, err := storage.ActiveJobs(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, models.VerificationStale, updated[0].VerificationStatus)
}
