package ats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
)

type greenhouseClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *greenhouseClient) Provider() string { return "greenhouse" }

// FetchJobs reads the public board API. content=true inlines the full
// job description into the listing response.
func (c *greenhouseClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	url := ProbeEndpoint("greenhouse", boardToken) + "?content=true"
	body, err := getBody(ctx, c.http, url)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch greenhouse board %s: %w", boardToken, err)
	}

	var payload struct {
		Jobs []struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			Departments []struct {
				Name string `json:"name"`
			} `json:"departments"`
			Location struct {
				Name string `json:"name"`
			} `json:"location"`
			Content     string `json:"content"`
			AbsoluteURL string `json:"absolute_url"`
			UpdatedAt   string `json:"updated_at"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse greenhouse response: %w", err)
	}

	postings := make([]models.JobPosting, 0, len(payload.Jobs))
	for _, job := range payload.Jobs {
		department := ""
		if len(job.Departments) > 0 {
			department = job.Departments[0].Name
		}
		postings = append(postings, models.JobPosting{
			ExternalID:  strconv.FormatInt(job.ID, 10),
			Title:       job.Title,
			Department:  department,
			Location:    job.Location.Name,
			Description: htmlToMarkdown(job.Content),
			JobURL:      job.AbsoluteURL,
			PostingDate: parseISODate(job.UpdatedAt),
		})
	}
	return postings, nil
}
