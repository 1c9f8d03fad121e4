package models

// NotIdentifiableSentinel is the literal the decision-maker model
// returns when it refuses to name a person. It is preserved as a
// not-found reason and never stored as a person name.
const NotIdentifiableSentinel = "Not confidently identifiable"

// DecisionMakerResult is one company's outcome from the LLM lookup.
type DecisionMakerResult struct {
	CompanyName    string `json:"company_name"`
	PersonName     string `json:"person_name,omitempty"`
	Title          string `json:"title,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
	Confidence     string `json:"confidence,omitempty"`
	Industry       string `json:"industry,omitempty"`
	EmployeeCount  *int   `json:"employee_count,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty"`
	NotFoundReason string `json:"not_found_reason,omitempty"`
	RawText        string `json:"-"`
}

// Found reports whether a usable person was identified.
func (r DecisionMakerResult) Found() bool {
	return r.PersonName != ""
}

// EmailLookupResult is one person's outcome from the bulk email API.
type EmailLookupResult struct {
	CompanyName    string `json:"company_name"`
	PersonName     string `json:"person_name"`
	Email          string `json:"email,omitempty"`
	LinkedInURL    string `json:"linkedin_url,omitempty"`
	ApolloTitle    string `json:"apollo_title,omitempty"`
	NotFoundReason string `json:"not_found_reason,omitempty"`
}

// DecisionMaker is the persisted contact row, at most one per company.
type DecisionMaker struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	PersonName  string `json:"person_name"`
	Title       string `json:"title,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	Confidence  string `json:"confidence,omitempty"`
	Email       string `json:"email,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	LookedUpAt  string `json:"looked_up_at"`
	UpdatedAt   string `json:"updated_at"`
}
