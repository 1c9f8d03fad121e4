package models

// ExportRow is one joined company/job/contact row of the outbound
// dataset. Contact fields are empty when no decision maker is stored.
type ExportRow struct {
	CompanyName        string  `json:"company_name"`
	Domain             string  `json:"domain"`
	Website            string  `json:"website,omitempty"`
	Industry           string  `json:"industry,omitempty"`
	EmployeeCount      *int    `json:"employee_count,omitempty"`
	ATSProvider        string  `json:"ats_provider,omitempty"`
	FirstSeenDate      string  `json:"first_seen_date,omitempty"`
	LastCSVDate        string  `json:"last_csv_date,omitempty"`
	JobTitle           string  `json:"job_title"`
	JobCategory        string  `json:"job_category,omitempty"`
	JobLocation        string  `json:"job_location,omitempty"`
	JobURL             string  `json:"job_url,omitempty"`
	PostingDate        string  `json:"posting_date,omitempty"`
	RelevanceScore     float64 `json:"relevance_score"`
	VerificationStatus string  `json:"verification_status,omitempty"`
	PersonName         string  `json:"person_name,omitempty"`
	PersonTitle        string  `json:"person_title,omitempty"`
	Email              string  `json:"email,omitempty"`
	LinkedInURL        string  `json:"linkedin_url,omitempty"`
	SourceURL          string  `json:"source_url,omitempty"`
	Confidence         string  `json:"confidence,omitempty"`

	// IsNewCompany is true when the company first appeared on the most
	// recent source date it was delivered.
	IsNewCompany bool `json:"is_new_company"`
}

// UploadCompany is one company selected for website upload, with its
// stored contact and recent active jobs.
type UploadCompany struct {
	Company               Company
	DecisionMaker         *DecisionMaker
	Jobs                  []Job
	MostRecentPostingDate string
}
