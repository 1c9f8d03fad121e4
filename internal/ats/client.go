// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package ats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
)

// ErrUnsupportedProvider is returned by NewClient for providers that can
// be fingerprinted on a careers page but expose no public job feed
// (workday, taleo, icims and friends).
var ErrUnsupportedProvider = fmt.Errorf("ats: provider has no public job API")

// Client fetches the live postings of one board.
type Client interface {
	// Provider returns the ATS name this client speaks to.
	Provider() string

	// FetchJobs returns all current postings for a board token. A token
	// that does not exist (404) yields an empty slice and no error;
	// transport failures and other HTTP errors are returned as errors so
	// callers can distinguish "no jobs" from "could not check".
	FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error)
}

// NewClient returns the client for a provider, or ErrUnsupportedProvider
// for fingerprint-only providers.
func NewClient(provider string, httpClient *http.Client, logger arbor.ILogger) (Client, error) {
	switch provider {
	case "greenhouse":
		return &greenhouseClient{http: httpClient, logger: logger}, nil
	case "lever":
		return &leverClient{http: httpClient, logger: logger}, nil
	case "ashby":
		return &ashbyClient{http: httpClient, logger: logger}, nil
	case "workable":
		return &workableClient{http: httpClient, logger: logger}, nil
	case "jobvite":
		return &jobviteClient{http: httpClient, logger: logger}, nil
	case "smartrecruiters":
		return &smartRecruitersClient{http: httpClient, logger: logger}, nil
	case "recruitee":
		return &recruiteeClient{http: httpClient, logger: logger}, nil
	case "breezyhr":
		return &breezyClient{http: httpClient, logger: logger}, nil
	case "personio":
		return &personioClient{http: httpClient, logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}

// SupportedProviders lists the providers NewClient can build a fetcher
// for. Matches ProbeProviders: probeable implies fetchable.
func SupportedProviders() []string {
	return append([]string(nil), ProbeProviders...)
}

// errNotFound is the internal marker for a 404 board.
var errNotFound = fmt.Errorf("board not found")

// getBody fetches a URL and returns the response body. A 404 maps to
// errNotFound so every client can treat a missing board as zero jobs.
func getBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", response.StatusCode, url)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// htmlToMarkdown converts a job description from HTML to markdown for
// readable storage. Returns the input unchanged when conversion fails.
func htmlToMarkdown(html string) string {
	if html == "" {
		return ""
	}
	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(html)
	if err != nil {
		return html
	}
	return converted
}

// parseISODate handles RFC3339 and its common board variants
// (millisecond precision, numeric offsets without colons).
func parseISODate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04:05",
	} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}

// parseTimestampMS converts a millisecond epoch to a time.
func parseTimestampMS(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	parsed := time.UnixMilli(ms).UTC()
	return &parsed
}

// parseDateYMD parses a bare YYYY-MM-DD date.
func parseDateYMD(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &parsed
}

// joinNonEmpty joins the non-empty parts with ", ". Used for location
// fields boards split into city/state/country.
func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, strings.TrimSpace(part))
		}
	}
	return strings.Join(kept, ", ")
}
