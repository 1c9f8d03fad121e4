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

type workableClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *workableClient) Provider() string { return "workable" }

func (c *workableClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	body, err := getBody(ctx, c.http, ProbeEndpoint("workable", boardToken))
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workable board %s: %w", boardToken, err)
	}

	var payload struct {
		Jobs []struct {
			Shortcode   string `json:"shortcode"`
			Title       string `json:"title"`
			Department  string `json:"department"`
			City        string `json:"city"`
			State       string `json:"state"`
			Country     string `json:"country"`
			Description string `json:"description"`
			PublishedOn string `json:"published_on"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse workable response: %w", err)
	}

	postings := make([]models.JobPosting, 0, len(payload.Jobs))
	for _, job := range payload.Jobs {
		postings = append(postings, models.JobPosting{
			ExternalID:  job.Shortcode,
			Title:       job.Title,
			Department:  job.Department,
			Location:    joinNonEmpty(job.City, job.State, job.Country),
			Description: htmlToMarkdown(job.Description),
			JobURL:      fmt.Sprintf("https://apply.workable.com/%s/j/%s/", boardToken, job.Shortcode),
			PostingDate: parseDateYMD(job.PublishedOn),
		})
	}
	return postings, nil
}
