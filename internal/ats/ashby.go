package ats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
)

type ashbyClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *ashbyClient) Provider() string { return "ashby" }

func (c *ashbyClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	body, err := getBody(ctx, c.http, ProbeEndpoint("ashby", boardToken))
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ashby board %s: %w", boardToken, err)
	}

	var payload struct {
		Jobs []struct {
			ID               string `json:"id"`
			Title            string `json:"title"`
			DepartmentName   string `json:"departmentName"`
			LocationName     string `json:"locationName"`
			DescriptionHTML  string `json:"descriptionHtml"`
			DescriptionPlain string `json:"descriptionPlain"`
			JobURL           string `json:"jobUrl"`
			PublishedDate    string `json:"publishedDate"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse ashby response: %w", err)
	}

	postings := make([]models.JobPosting, 0, len(payload.Jobs))
	for _, job := range payload.Jobs {
		description := job.DescriptionPlain
		if job.DescriptionHTML != "" {
			description = htmlToMarkdown(job.DescriptionHTML)
		}
		postings = append(postings, models.JobPosting{
			ExternalID:  job.ID,
			Title:       job.Title,
			Department:  job.DepartmentName,
			Location:    job.LocationName,
			Description: description,
			JobURL:      job.JobURL,
			PostingDate: parseISODate(job.PublishedDate),
		})
	}
	return postings, nil
}
