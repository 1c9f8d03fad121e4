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

type smartRecruitersClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *smartRecruitersClient) Provider() string { return "smartrecruiters" }

// FetchJobs reads the public postings listing. The listing endpoint
// carries no description; fetching each posting individually is not
// worth one extra request per job for a scoring input the title already
// covers.
func (c *smartRecruitersClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	body, err := getBody(ctx, c.http, ProbeEndpoint("smartrecruiters", boardToken))
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch smartrecruiters board %s: %w", boardToken, err)
	}

	var payload struct {
		Content []struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			Department struct {
				Label string `json:"label"`
			} `json:"department"`
			Location struct {
				City    string `json:"city"`
				Country string `json:"country"`
			} `json:"location"`
			Ref          string `json:"ref"`
			ReleasedDate string `json:"releasedDate"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse smartrecruiters response: %w", err)
	}

	postings := make([]models.JobPosting, 0, len(payload.Content))
	for _, posting := range payload.Content {
		jobURL := posting.Ref
		if jobURL == "" {
			jobURL = fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", boardToken, posting.ID)
		}
		postings = append(postings, models.JobPosting{
			ExternalID:  posting.ID,
			Title:       posting.Name,
			Department:  posting.Department.Label,
			Location:    joinNonEmpty(posting.Location.City, posting.Location.Country),
			JobURL:      jobURL,
			PostingDate: parseISODate(posting.ReleasedDate),
		})
	}
	return postings, nil
}
