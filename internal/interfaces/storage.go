// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/leadhound/internal/models"
)

// ErrConflict is returned when a write violates a storage constraint
// (unique index or foreign key). Callers test for it with errors.Is.
var ErrConflict = errors.New("storage conflict")

// CompanyStorage - interface for company persistence
type CompanyStorage interface {
	// UpsertCompany inserts or refreshes a company keyed by domain.
	// The bool is true when the company is new or resurfacing (its
	// last source date differs from sourceDate).
	UpsertCompany(ctx context.Context, candidate *models.CompanyCandidate, runID, sourceDate string) (int64, bool, error)
	GetByDomain(ctx context.Context, domain string) (*models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)

	UpdateATSInfo(ctx context.Context, companyID int64, provider, boardToken, careersURL string) error
	UpdateEmployeeCount(ctx context.Context, companyID int64, count int) error
	UpdateUrgencyScore(ctx context.Context, companyID int64, score int) error
	TouchLastChecked(ctx context.Context, companyID int64) error

	// ListForEnrichment returns companies that still lack a stored
	// decision maker, ranked by urgency score when rankByUrgency is set
	// and by recency otherwise.
	ListForEnrichment(ctx context.Context, limit int, includeLinkedInOnly, rankByUrgency bool) ([]*models.Company, error)

	// TopByUrgency returns the limit highest urgency-scored companies.
	TopByUrgency(ctx context.Context, limit int) ([]*models.Company, error)

	// CompaniesForUpload returns companies within the headcount bound
	// that have an active job posted in the last 7 days, joined with
	// their contact and recent jobs.
	CompaniesForUpload(ctx context.Context, maxEmployeeCount int) ([]*models.UploadCompany, error)

	Count(ctx context.Context) (int, error)
}

// JobStorage - interface for job persistence and change application
type JobStorage interface {
	// ActiveExternalIDs returns external_id -> job id for a company's
	// active jobs.
	ActiveExternalIDs(ctx context.Context, companyID int64) (map[string]int64, error)

	// ApplyChanges atomically inserts new jobs, deactivates removed
	// ones, refreshes last_seen_at on surviving ones, and records one
	// job_changes row per transition.
	ApplyChanges(ctx context.Context, companyID int64, runID string, newJobs []models.JobPosting, removedJobIDs, survivingJobIDs []int64) error

	ActiveJobs(ctx context.Context, companyID int64) ([]*models.Job, error)

	// ActiveJobsWithURLs returns every active job that has a URL, for
	// the verification pass.
	ActiveJobsWithURLs(ctx context.Context) ([]*models.Job, error)
	SetVerificationStatus(ctx context.Context, jobID int64, status string) error

	CountActive(ctx context.Context) (int, error)
}

// DecisionMakerStorage - interface for contact persistence
type DecisionMakerStorage interface {
	// Upsert stores a found decision maker, replacing any previous
	// contact for the company.
	Upsert(ctx context.Context, companyID int64, result *models.DecisionMakerResult) error

	// SetContact records the email pass outcome for a company's
	// stored contact.
	SetContact(ctx context.Context, companyID int64, email, linkedinURL string) error

	GetByCompany(ctx context.Context, companyID int64) (*models.DecisionMaker, error)
}

// ATSCacheStorage - interface for the per-domain detection cache
type ATSCacheStorage interface {
	// Lookup returns the cached detection for a domain, or nil on a
	// miss. Expired entries are deleted on lookup.
	Lookup(ctx context.Context, domain string) (*models.ATSCacheEntry, error)
	Store(ctx context.Context, entry *models.ATSCacheEntry) error
	Purge(ctx context.Context) (int64, error)
}

// SeenCompanyStorage - interface for source-level dedup markers
type SeenCompanyStorage interface {
	IsSeen(ctx context.Context, domain string) (bool, error)
	MarkSeen(ctx context.Context, domain, companyName, listingDate, runID string) error

	// Reset truncates the markers, forcing every company to be
	// reprocessed on the next run. Returns the number removed.
	Reset(ctx context.Context) (int64, error)
}

// SnapshotStorage - interface for per-run audit rows
type SnapshotStorage interface {
	Record(ctx context.Context, snapshot *models.RunSnapshot) error
	LastRun(ctx context.Context) (*models.RunAggregate, error)
}

// StatisticsStorage - read-only aggregates for the status verb
type StatisticsStorage interface {
	Statistics(ctx context.Context, relevanceThreshold float64) (*models.Statistics, error)
}

// ExportStorage - joined rows for CSV/JSON export
type ExportStorage interface {
	// ExportRows returns active, non-stale jobs joined with company
	// and contact data, newest posting first. When onlyRelevant is
	// set, rows below the threshold are dropped.
	ExportRows(ctx context.Context, onlyRelevant bool, threshold float64) ([]*models.ExportRow, error)
}

// StorageManager - central interface for all storage operations
type StorageManager interface {
	CompanyStorage() CompanyStorage
	JobStorage() JobStorage
	DecisionMakerStorage() DecisionMakerStorage
	ATSCacheStorage() ATSCacheStorage
	SeenCompanyStorage() SeenCompanyStorage
	SnapshotStorage() SnapshotStorage
	StatisticsStorage() StatisticsStorage
	ExportStorage() ExportStorage
	Close() error
}
