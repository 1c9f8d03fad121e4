package models

// Lead is the website upload projection of one active job (or one
// enriched company without jobs). Field names match the upload
// endpoint's JSON contract exactly.
type Lead struct {
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	Title                 string `json:"title"`
	CompanyName           string `json:"companyName"`
	Email                 string `json:"email"`
	Website               string `json:"website"`
	Location              string `json:"location"`
	CompanySize           string `json:"companySize"`
	Category              string `json:"category"`
	Industry              string `json:"industry"`
	EmployeeCount         int    `json:"employeeCount"`
	JobRole               string `json:"jobRole"`
	JobLink               string `json:"jobLink"`
	PostingDate           string `json:"postingDate"`
	MostRecentPostingDate string `json:"mostRecentPostingDate"`
	LinkedInURL           string `json:"linkedinUrl"`
	SourceURL             string `json:"sourceUrl"`
	Confidence            string `json:"confidence"`
	IsNewCompany          bool   `json:"isNewCompany"`
	FirstSeenDate         string `json:"firstSeenDate"`
	VerificationStatus    string `json:"verificationStatus"`
}

// LeadUpload is the POST body sent to the upload endpoint.
type LeadUpload struct {
	Location string `json:"location"`
	Leads    []Lead `json:"leads"`
}
