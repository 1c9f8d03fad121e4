package models

// RunAggregate summarizes one run across all companies.
type RunAggregate struct {
	RunID            string `json:"run_id"`
	RunDate          string `json:"run_date"`
	CompaniesChecked int    `json:"companies_checked"`
	JobsFound        int    `json:"jobs_found"`
	NewJobs          int    `json:"new_jobs"`
	RemovedJobs      int    `json:"removed_jobs"`
}

// ChangeSummary is one recent change joined with its job and company.
type ChangeSummary struct {
	ChangeType  string `json:"change_type"`
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`
	ChangedAt   string `json:"changed_at"`
}

// Statistics is the read-only aggregate view served by the status verb.
type Statistics struct {
	TotalCompanies int             `json:"total_companies"`
	ActiveJobs     int             `json:"active_jobs"`
	RelevantJobs   int             `json:"relevant_jobs"`
	LastRun        *RunAggregate   `json:"last_run,omitempty"`
	ByATS          map[string]int  `json:"companies_by_ats"`
	ByCategory     map[string]int  `json:"jobs_by_category"`
	RecentChanges  []ChangeSummary `json:"recent_changes"`
}
