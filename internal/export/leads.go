// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/leadhound/internal/models"
)

// BuildLeads flattens upload companies into the website lead format,
// one lead per recent active job. A company with a stored contact but
// no jobs still yields one job-less lead. The frontend groups rows by
// company, so duplication of the contact fields across jobs is
// expected.
func BuildLeads(companies []*models.UploadCompany) []models.Lead {
	var leads []models.Lead

	for _, upload := range companies {
		company := upload.Company

		var personName, personTitle, email, linkedinURL, sourceURL, confidence string
		if upload.DecisionMaker != nil {
			personName = upload.DecisionMaker.PersonName
			personTitle = upload.DecisionMaker.Title
			email = upload.DecisionMaker.Email
			linkedinURL = upload.DecisionMaker.LinkedInURL
			sourceURL = upload.DecisionMaker.SourceURL
			confidence = upload.DecisionMaker.Confidence
		}
		firstName, lastName := splitLeadName(personName)

		employeeCount := 0
		if company.EmployeeCount != nil {
			employeeCount = *company.EmployeeCount
		}

		base := models.Lead{
			FirstName:             firstName,
			LastName:              lastName,
			Title:                 personTitle,
			CompanyName:           company.Name,
			Email:                 email,
			Website:               websiteFromDomain(company.Domain),
			CompanySize:           companySizeLabel(employeeCount),
			Category:              sizeCategory(employeeCount),
			Industry:              company.Industry,
			EmployeeCount:         employeeCount,
			MostRecentPostingDate: upload.MostRecentPostingDate,
			LinkedInURL:           linkedinURL,
			SourceURL:             sourceURL,
			Confidence:            confidence,
			IsNewCompany:          isNewCompany(company),
			FirstSeenDate:         company.FirstSeenDate,
			VerificationStatus:    models.VerificationUnverified,
		}

		if len(upload.Jobs) == 0 {
			lead := base
			lead.MostRecentPostingDate = ""
			leads = append(leads, lead)
			continue
		}

		for _, job := range upload.Jobs {
			lead := base
			lead.JobRole = job.Title
			lead.JobLink = job.JobURL
			lead.PostingDate = job.PostingDate
			if job.VerificationStatus != "" {
				lead.VerificationStatus = job.VerificationStatus
			}
			leads = append(leads, lead)
		}
	}

	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].MostRecentPostingDate > leads[j].MostRecentPostingDate
	})
	return leads
}

func splitLeadName(fullName string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func websiteFromDomain(domain string) string {
	if domain == "" {
		return ""
	}
	return "https://" + domain
}

func companySizeLabel(employeeCount int) string {
	if employeeCount == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%d employees", employeeCount)
}

// sizeCategory buckets by headcount the way the website filters do.
func sizeCategory(employeeCount int) string {
	switch {
	case employeeCount <= 100:
		return "small"
	case employeeCount <= 250:
		return "medium"
	default:
		return "large"
	}
}

// isNewCompany is true when the company's latest source date is the day
// it was first seen.
func isNewCompany(company models.Company) bool {
	return company.FirstSeenDate != "" && company.FirstSeenDate == company.LastCSVDate
}
