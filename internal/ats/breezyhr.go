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

type breezyClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *breezyClient) Provider() string { return "breezyhr" }

// breezyDepartment is a string in older boards and an object with a
// name in newer ones.
type breezyDepartment struct {
	Name string
}

func (d *breezyDepartment) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		d.Name = plain
		return nil
	}
	var object struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &object); err != nil {
		return err
	}
	d.Name = object.Name
	return nil
}

func (c *breezyClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	body, err := getBody(ctx, c.http, ProbeEndpoint("breezyhr", boardToken))
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch breezy board %s: %w", boardToken, err)
	}

	var positions []struct {
		ID         string           `json:"id"`
		Name       string           `json:"name"`
		Department breezyDepartment `json:"department"`
		Location   struct {
			City    string `json:"city"`
			State   string `json:"state"`
			Country struct {
				Name string `json:"name"`
			} `json:"country"`
		} `json:"location"`
		Description   string `json:"description"`
		URL           string `json:"url"`
		PublishedDate string `json:"published_date"`
	}
	if err := json.Unmarshal(body, &positions); err != nil {
		return nil, fmt.Errorf("failed to parse breezy response: %w", err)
	}

	postings := make([]models.JobPosting, 0, len(positions))
	for _, position := range positions {
		postings = append(postings, models.JobPosting{
			ExternalID:  position.ID,
			Title:       position.Name,
			Department:  position.Department.Name,
			Location:    joinNonEmpty(position.Location.City, position.Location.State, position.Location.Country.Name),
			Description: htmlToMarkdown(position.Description),
			JobURL:      position.URL,
			PostingDate: parseISODate(position.PublishedDate),
		})
	}
	return postings, nil
}
