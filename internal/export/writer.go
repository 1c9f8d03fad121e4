package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ternarybob/leadhound/internal/models"
)

var csvHeader = []string{
	"company_name", "domain", "website", "industry", "employee_count",
	"ats_provider", "first_seen_date", "job_title", "job_category",
	"job_location", "job_url", "posting_date", "relevance_score",
	"verification_status", "person_name", "person_title", "email",
	"linkedin_url", "source_url", "confidence", "is_new_company",
}

// WriteCSV emits one flat row per job.
func WriteCSV(w io.Writer, rows []*models.ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		employeeCount := ""
		if row.EmployeeCount != nil {
			employeeCount = strconv.Itoa(*row.EmployeeCount)
		}
		record := []string{
			row.CompanyName, row.Domain, row.Website, row.Industry, employeeCount,
			row.ATSProvider, row.FirstSeenDate, row.JobTitle, row.JobCategory,
			row.JobLocation, row.JobURL, row.PostingDate,
			strconv.FormatFloat(row.RelevanceScore, 'f', 1, 64),
			row.VerificationStatus, row.PersonName, row.PersonTitle, row.Email,
			row.LinkedInURL, row.SourceURL, row.Confidence,
			strconv.FormatBool(row.IsNewCompany),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// groupedCompany is the JSON export shape: company once, jobs nested.
type groupedCompany struct {
	CompanyName   string       `json:"company_name"`
	Domain        string       `json:"domain"`
	Website       string       `json:"website,omitempty"`
	Industry      string       `json:"industry,omitempty"`
	EmployeeCount *int         `json:"employee_count,omitempty"`
	ATSProvider   string       `json:"ats_provider,omitempty"`
	FirstSeenDate string       `json:"first_seen_date,omitempty"`
	IsNewCompany  bool         `json:"is_new_company"`
	PersonName    string       `json:"person_name,omitempty"`
	PersonTitle   string       `json:"person_title,omitempty"`
	Email         string       `json:"email,omitempty"`
	LinkedInURL   string       `json:"linkedin_url,omitempty"`
	SourceURL     string       `json:"source_url,omitempty"`
	Confidence    string       `json:"confidence,omitempty"`
	Jobs          []groupedJob `json:"jobs"`
}

type groupedJob struct {
	Title              string  `json:"title"`
	Category           string  `json:"category,omitempty"`
	Location           string  `json:"location,omitempty"`
	URL                string  `json:"url,omitempty"`
	PostingDate        string  `json:"posting_date,omitempty"`
	RelevanceScore     float64 `json:"relevance_score"`
	VerificationStatus string  `json:"verification_status,omitempty"`
}

// WriteJSON emits companies with their jobs nested, preserving the
// row order of the query (newest posting first).
func WriteJSON(w io.Writer, rows []*models.ExportRow) error {
	var order []string
	byDomain := make(map[string]*groupedCompany)

	for _, row := range rows {
		company, ok := byDomain[row.Domain]
		if !ok {
			company = &groupedCompany{
				CompanyName:   row.CompanyName,
				Domain:        row.Domain,
				Website:       row.Website,
				Industry:      row.Industry,
				EmployeeCount: row.EmployeeCount,
				ATSProvider:   row.ATSProvider,
				FirstSeenDate: row.FirstSeenDate,
				IsNewCompany:  row.IsNewCompany,
				PersonName:    row.PersonName,
				PersonTitle:   row.PersonTitle,
				Email:         row.Email,
				LinkedInURL:   row.LinkedInURL,
				SourceURL:     row.SourceURL,
				Confidence:    row.Confidence,
				Jobs:          []groupedJob{},
			}
			byDomain[row.Domain] = company
			order = append(order, row.Domain)
		}
		company.Jobs = append(company.Jobs, groupedJob{
			Title:              row.JobTitle,
			Category:           row.JobCategory,
			Location:           row.JobLocation,
			URL:                row.JobURL,
			PostingDate:        row.PostingDate,
			RelevanceScore:     row.RelevanceScore,
			VerificationStatus: row.VerificationStatus,
		})
	}

	companies := make([]*groupedCompany, 0, len(order))
	for _, domain := range order {
		companies = append(companies, byDomain[domain])
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(companies); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return nil
}
