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

type recruiteeClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *recruiteeClient) Provider() string { return "recruitee" }

func (c *recruiteeClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	body, err := getBody(ctx, c.http, ProbeEndpoint("recruitee", boardToken))
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recruitee board %s: %w", boardToken, err)
	}

	var payload struct {
		Offers []struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			Department  string `json:"department"`
			Location    string `json:"location"`
			Description string `json:"description"`
			CareersURL  string `json:"careers_url"`
			CreatedAt   string `json:"created_at"`
		} `json:"offers"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse recruitee response: %w", err)
	}

	postings := make([]models.JobPosting, 0, len(payload.Offers))
	for _, offer := range payload.Offers {
		jobURL := offer.CareersURL
		if jobURL == "" {
			jobURL = fmt.Sprintf("https://%s.recruitee.com/o/%d", boardToken, offer.ID)
		}
		postings = append(postings, models.JobPosting{
			ExternalID:  strconv.FormatInt(offer.ID, 10),
			Title:       offer.Title,
			Department:  offer.Department,
			Location:    offer.Location,
			Description: htmlToMarkdown(offer.Description),
			JobURL:      jobURL,
			PostingDate: parseISODate(offer.CreatedAt),
		})
	}
	return postings, nil
}
