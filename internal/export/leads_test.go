package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/leadhound/internal/models"
)

func intPtr(n int) *int { return &n }

func TestBuildLeads_OneLeadPerJob(t *testing.T) {
	companies := []*models.UploadCompany{
		{
			Company: models.Company{
				Name:          "Acme Corp",
				Domain:        "acme.com",
				Industry:      "Professional Services",
				EmployeeCount: intPtr(42),
				FirstSeenDate: "2026-08-20",
				LastCSVDate:   "2026-08-24",
			},
			DecisionMaker: &models.DecisionMaker{
				PersonName:  "Jane van der Berg",
				Title:       "CMO",
				Email:       "jane@acme.com",
				LinkedInURL: "https://linkedin.com/in/jane",
				SourceURL:   "https://acme.com/about",
				Confidence:  "High",
			},
			Jobs: []models.Job{
				{Title: "Marketing Manager", JobURL: "https://acme.com/jobs/1", PostingDate: "2026-08-22", VerificationStatus: models.VerificationVerified},
				{Title: "SEO Specialist", JobURL: "https://acme.com/jobs/2", PostingDate: "2026-08-21"},
			},
			MostRecentPostingDate: "2026-08-22",
		},
	}

	leads := BuildLeads(companies)
	require.Len(t, leads, 2)

	lead := leads[0]
	assert.Equal(t, "Jane", lead.FirstName)
	assert.Equal(t, "van der Berg", lead.LastName)
	assert.Equal(t, "CMO", lead.Title)
	assert.Equal(t, "Acme Corp", lead.CompanyName)
	assert.Equal(t, "https://acme.com", lead.Website)
	assert.Equal(t, "42 employees", lead.CompanySize)
	assert.Equal(t, "small", lead.Category)
	assert.Equal(t, 42, lead.EmployeeCount)
	assert.Equal(t, "Marketing Manager", lead.JobRole)
	assert.Equal(t, "2026-08-22", lead.PostingDate)
	assert.Equal(t, "2026-08-22", lead.MostRecentPostingDate)
	assert.Equal(t, models.VerificationVerified, lead.VerificationStatus)
	assert.False(t, lead.IsNewCompany)

	assert.Equal(t, "SEO Specialist", leads[1].JobRole)
	assert.Equal(t, models.VerificationUnverified, leads[1].VerificationStatus)
}

func TestBuildLeads_CompanyWithoutJobs(t *testing.T) {
	companies := []*models.UploadCompany{
		{
			Company: models.Company{Name: "Globex", Domain: "globex.io"},
			DecisionMaker: &models.DecisionMaker{
				PersonName: "Sam Lee",
			},
		},
	}

	leads := BuildLeads(companies)
	require.Len(t, leads, 1)
	assert.Equal(t, "Sam", leads[0].FirstName)
	assert.Equal(t, "", leads[0].JobRole)
	assert.Equal(t, "", leads[0].MostRecentPostingDate)
	assert.Equal(t, "Unknown", leads[0].CompanySize)
	assert.Equal(t, "small", leads[0].Category)
	assert.Zero(t, leads[0].EmployeeCount)
}

func TestBuildLeads_SortedByMostRecentPosting(t *testing.T) {
	companies := []*models.UploadCompany{
		{
			Company:               models.Company{Name: "Older", Domain: "older.com"},
			Jobs:                  []models.Job{{Title: "Marketing Manager", PostingDate: "2026-08-18"}},
			MostRecentPostingDate: "2026-08-18",
		},
		{
			Company:               models.Company{Name: "Newer", Domain: "newer.com"},
			Jobs:                  []models.Job{{Title: "Brand Manager", PostingDate: "2026-08-23"}},
			MostRecentPostingDate: "2026-08-23",
		},
	}

	leads := BuildLeads(companies)
	require.Len(t, leads, 2)
	assert.Equal(t, "Newer", leads[0].CompanyName)
	assert.Equal(t, "Older", leads[1].CompanyName)
}

func TestBuildLeads_NewCompanyFlag(t *testing.T) {
	companies := []*models.UploadCompany{
		{
			Company: models.Company{
				Name:          "Fresh Co",
				Domain:        "fresh.co",
				FirstSeenDate: "2026-08-24",
				LastCSVDate:   "2026-08-24",
			},
			Jobs: []models.Job{{Title: "Marketing Manager"}},
		},
	}

	leads := BuildLeads(companies)
	require.Len(t, leads, 1)
	assert.True(t, leads[0].IsNewCompany)
}

func TestSizeCategory(t *testing.T) {
	assert.Equal(t, "small", sizeCategory(0))
	assert.Equal(t, "small", sizeCategory(100))
	assert.Equal(t, "medium", sizeCategory(101))
	assert.Equal(t, "medium", sizeCategory(250))
	assert.Equal(t, "large", sizeCategory(251))
}
