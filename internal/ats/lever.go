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

const leverPageSize = 50

type leverClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *leverClient) Provider() string { return "lever" }

// FetchJobs pages through the postings API until a short page signals
// the end.
func (c *leverClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	var postings []models.JobPosting

	for offset := 0; ; offset += leverPageSize {
		url := fmt.Sprintf("%s?mode=json&limit=%d&offset=%d",
			ProbeEndpoint("lever", boardToken), leverPageSize, offset)

		body, err := getBody(ctx, c.http, url)
		if errors.Is(err, errNotFound) {
			return postings, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch lever board %s: %w", boardToken, err)
		}

		var page []struct {
			ID         string `json:"id"`
			Text       string `json:"text"`
			Categories struct {
				Department string `json:"department"`
				Team       string `json:"team"`
				Location   string `json:"location"`
			} `json:"categories"`
			DescriptionPlain string `json:"descriptionPlain"`
			HostedURL        string `json:"hostedUrl"`
			CreatedAt        int64  `json:"createdAt"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse lever response: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, posting := range page {
			department := posting.Categories.Department
			if department == "" {
				department = posting.Categories.Team
			}
			postings = append(postings, models.JobPosting{
				ExternalID:  posting.ID,
				Title:       posting.Text,
				Department:  department,
				Location:    posting.Categories.Location,
				Description: posting.DescriptionPlain,
				JobURL:      posting.HostedURL,
				PostingDate: parseTimestampMS(posting.CreatedAt),
			})
		}
		if len(page) < leverPageSize {
			break
		}
	}
	return postings, nil
}
