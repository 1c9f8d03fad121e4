package ats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
)

type personioClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *personioClient) Provider() string { return "personio" }

// FetchJobs scrapes the hosted careers page. Personio exposes no public
// JSON feed, so position links are the only listing surface: no
// department, location or date comes back from this client.
func (c *personioClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	endpoint := ProbeEndpoint("personio", boardToken)
	body, err := getBody(ctx, c.http, endpoint)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch personio board %s: %w", boardToken, err)
	}

	document, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		c.logger.Debug().Err(err).Str("token", boardToken).Msg("Personio page did not parse")
		return nil, nil
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse personio endpoint: %w", err)
	}

	links := document.Find("a.position-link")
	if links.Length() == 0 {
		links = document.Find("a[href*='/job/']")
	}

	var postings []models.JobPosting
	seen := make(map[string]bool)
	links.Each(func(_ int, selection *goquery.Selection) {
		href, ok := selection.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}

		segments := strings.Split(strings.Trim(resolved.Path, "/"), "/")
		externalID := segments[len(segments)-1]
		if externalID == "" || seen[externalID] {
			return
		}
		seen[externalID] = true

		postings = append(postings, models.JobPosting{
			ExternalID: externalID,
			Title:      strings.TrimSpace(selection.Text()),
			JobURL:     resolved.String(),
		})
	})
	return postings, nil
}
