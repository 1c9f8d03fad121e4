package ats

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
)

type jobviteClient struct {
	http   *http.Client
	logger arbor.ILogger
}

func (c *jobviteClient) Provider() string { return "jobvite" }

type jobviteItem struct {
	JVID        string `xml:"jvid"`
	GUID        string `xml:"guid"`
	Title       string `xml:"title"`
	Category    string `xml:"category"`
	Location    string `xml:"location"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

// jobviteFeed accepts both layouts the feed appears in: RSS-style
// channel items and bare job elements. Field matching is by local name,
// which also absorbs the jv: namespace variants.
type jobviteFeed struct {
	Items []jobviteItem `xml:"channel>item"`
	Jobs  []jobviteItem `xml:"job"`
}

// FetchJobs reads the public XML feed. Jobvite has no JSON API; a feed
// that fails to parse is treated as an empty board rather than an
// error, matching how a missing board behaves.
func (c *jobviteClient) FetchJobs(ctx context.Context, boardToken string) ([]models.JobPosting, error) {
	body, err := getBody(ctx, c.http, ProbeEndpoint("jobvite", boardToken))
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobvite feed %s: %w", boardToken, err)
	}

	var feed jobviteFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		c.logger.Debug().Err(err).Str("token", boardToken).Msg("Jobvite feed did not parse")
		return nil, nil
	}

	items := feed.Items
	if len(items) == 0 {
		items = feed.Jobs
	}

	postings := make([]models.JobPosting, 0, len(items))
	for _, item := range items {
		externalID := item.JVID
		if externalID == "" {
			externalID = item.GUID
		}
		if externalID == "" {
			continue
		}
		postings = append(postings, models.JobPosting{
			ExternalID:  externalID,
			Title:       strings.TrimSpace(item.Title),
			Department:  strings.TrimSpace(item.Category),
			Location:    strings.TrimSpace(item.Location),
			Description: item.Description,
			JobURL:      strings.TrimSpace(item.Link),
			PostingDate: parseRFC822Date(item.PubDate),
		})
	}
	return postings, nil
}

func parseRFC822Date(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}
