package models

import "time"

// Verification status values for a stored job.
const (
	VerificationUnverified = "unverified"
	VerificationVerified   = "verified"
	VerificationStale      = "stale"
)

// JobPosting is the uniform shape every ATS client and source adapter
// normalizes into.
type JobPosting struct {
	ExternalID  string     `json:"external_id"`
	Title       string     `json:"title"`
	Department  string     `json:"department,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	JobURL      string     `json:"job_url"`
	PostingDate *time.Time `json:"posting_date,omitempty"`

	// Set by the relevance scorer before persistence.
	RelevanceScore  float64 `json:"relevance_score,omitempty"`
	MatchedCategory string  `json:"matched_category,omitempty"`
}

// Job is a persisted posting row.
type Job struct {
	ID                 int64   `json:"id"`
	CompanyID          int64   `json:"company_id"`
	ExternalID         string  `json:"external_id"`
	Title              string  `json:"title"`
	Category           string  `json:"category,omitempty"`
	Department         string  `json:"department,omitempty"`
	Location           string  `json:"location,omitempty"`
	Description        string  `json:"description,omitempty"`
	JobURL             string  `json:"job_url"`
	PostingDate        string  `json:"posting_date,omitempty"`
	DiscoveredAt       string  `json:"discovered_at"`
	LastSeenAt         string  `json:"last_seen_at"`
	IsActive           bool    `json:"is_active"`
	RelevanceScore     float64 `json:"relevance_score"`
	VerificationStatus string  `json:"verification_status"`
}

// Job change types.
const (
	ChangeNew     = "new"
	ChangeRemoved = "removed"
)

// JobChange records one state transition of a job within a run.
type JobChange struct {
	ID         int64  `json:"id"`
	JobID      int64  `json:"job_id"`
	RunID      string `json:"run_id"`
	ChangeType string `json:"change_type"`
	ChangedAt  string `json:"changed_at"`
}

// RunSnapshot is the per-company audit row written once per run.
type RunSnapshot struct {
	ID           int64  `json:"id"`
	RunID        string `json:"run_id"`
	RunDate      string `json:"run_date"`
	CompanyID    int64  `json:"company_id"`
	JobsFound    int    `json:"jobs_found"`
	NewJobs      int    `json:"new_jobs"`
	RemovedJobs  int    `json:"removed_jobs"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Run snapshot status values.
const (
	StatusSuccess        = "success"
	StatusLinkedInOnly   = "linkedin_only"
	StatusUnknownATS     = "unknown_ats"
	StatusUnsupportedATS = "unsupported_ats"
	StatusFetchError     = "fetch_error"
	StatusBlockedRobots  = "blocked_robots"
	StatusError          = "error"
)
