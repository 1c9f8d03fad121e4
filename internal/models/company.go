package models

import "time"

// Company is a tracked employer. Identity is the normalized domain
// (lowercased, www. stripped); two rows never share a domain.
type Company struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Domain        string     `json:"domain"`
	Website       string     `json:"website,omitempty"`
	Industry      string     `json:"industry,omitempty"`
	Keywords      string     `json:"keywords,omitempty"`
	Technologies  string     `json:"technologies,omitempty"`
	EmployeeCount *int       `json:"employee_count,omitempty"`
	ATSProvider   string     `json:"ats_provider,omitempty"`
	ATSBoardToken string     `json:"ats_board_token,omitempty"`
	CareersURL    string     `json:"careers_page_url,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	UrgencyScore  int        `json:"urgency_score"`
	FirstSeenDate string     `json:"first_seen_date,omitempty"`
	LastCSVDate   string     `json:"last_csv_date,omitempty"`
	CurrentRunID  string     `json:"current_run_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CompanyCandidate is a company as delivered by a source adapter,
// before it has been persisted.
type CompanyCandidate struct {
	Name          string `json:"name"`
	Domain        string `json:"domain"`
	Website       string `json:"website,omitempty"`
	Industry      string `json:"industry,omitempty"`
	Keywords      string `json:"keywords,omitempty"`
	Technologies  string `json:"technologies,omitempty"`
	EmployeeCount *int   `json:"employee_count,omitempty"`

	// SourceDate is the date the candidate was listed by its source
	// (ISO date). Used for the seen-companies marker.
	SourceDate string `json:"source_date,omitempty"`

	// Listings carries pre-extracted job postings for sources that
	// deliver jobs directly (listing repos, aggregator feeds). Empty
	// for sources that only name the company.
	Listings []JobPosting `json:"listings,omitempty"`
}
