package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
	"golang.org/x/oauth2"
)

// DefaultListingRepo is the curated new-grad listing repo scraped when
// no repo is configured.
const DefaultListingRepo = "jobright-ai/2026-Marketing-New-Grad"

var boldLinkRe = regexp.MustCompile(`\*\*\[(.+?)\]\((.+?)\)\*\*`)

// listingSkipDomains are link targets that are not company websites and
// are useless for ATS detection.
var listingSkipDomains = map[string]bool{
	"linkedin.com": true,
	"github.com":   true,
	"twitter.com":  true,
	"facebook.com": true,
}

// GitHubReadmeAdapter scrapes job listings from a markdown table in a
// repository README. The table sits between TABLE_START and TABLE_END
// marker comments; each row is one posting.
type GitHubReadmeAdapter struct {
	repo   string
	client *github.Client
	logger arbor.ILogger
}

// NewGitHubReadmeAdapter creates the adapter. token raises the API rate
// limit and may be empty for public repos.
func NewGitHubReadmeAdapter(repo, token string, logger arbor.ILogger) *GitHubReadmeAdapter {
	if repo == "" {
		repo = DefaultListingRepo
	}
	var client *github.Client
	if token != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(context.Background(), source))
	} else {
		client = github.NewClient(nil)
	}
	return &GitHubReadmeAdapter{repo: repo, client: client, logger: logger}
}

func (a *GitHubReadmeAdapter) Name() string { return "github" }

// readmeListing is one parsed table row.
type readmeListing struct {
	companyName   string
	companyURL    string
	companyDomain string
	jobTitle      string
	jobURL        string
	location      string
	datePosted    time.Time
}

// FetchCandidates fetches the README and groups its listings by company
// domain. With a dateFilter only that day's rows are kept; the README
// holds roughly the trailing week.
func (a *GitHubReadmeAdapter) FetchCandidates(ctx context.Context, dateFilter string) ([]models.CompanyCandidate, error) {
	parts := strings.SplitN(a.repo, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid listing repo %q, want owner/name", a.repo)
	}

	readme, _, err := a.client.Repositories.GetReadme(ctx, parts[0], parts[1], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch README for %s: %w", a.repo, err)
	}
	content, err := readme.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode README content: %w", err)
	}

	listings := parseListingTable(content, time.Now())
	a.logger.Info().Int("listings", len(listings)).Str("repo", a.repo).Msg("Parsed README listings")

	if dateFilter != "" {
		var filtered []readmeListing
		for _, listing := range listings {
			if listing.datePosted.Format("2006-01-02") == dateFilter {
				filtered = append(filtered, listing)
			}
		}
		listings = filtered
	}

	return groupListings(listings), nil
}

// groupListings folds per-row listings into one candidate per domain,
// preserving first-seen order. Each candidate carries its postings so
// the pipeline can skip ATS fetching for this source.
func groupListings(listings []readmeListing) []models.CompanyCandidate {
	var order []string
	byDomain := make(map[string]*models.CompanyCandidate)

	for _, listing := range listings {
		candidate, ok := byDomain[listing.companyDomain]
		if !ok {
			candidate = &models.CompanyCandidate{
				Name:    listing.companyName,
				Domain:  listing.companyDomain,
				Website: listing.companyURL,
			}
			byDomain[listing.companyDomain] = candidate
			order = append(order, listing.companyDomain)
		}

		posted := listing.datePosted
		listingDate := posted.Format("2006-01-02")
		if candidate.SourceDate == "" || listingDate > candidate.SourceDate {
			candidate.SourceDate = listingDate
		}

		candidate.Listings = append(candidate.Listings, models.JobPosting{
			ExternalID:  listingExternalID(listing),
			Title:       listing.jobTitle,
			Location:    listing.location,
			JobURL:      listing.jobURL,
			PostingDate: &posted,
		})
	}

	candidates := make([]models.CompanyCandidate, 0, len(order))
	for _, domain := range order {
		candidates = append(candidates, *byDomain[domain])
	}
	return candidates
}

// listingExternalID derives a stable job identity. The URL is the real
// identity; title+date covers rows published without one.
func listingExternalID(listing readmeListing) string {
	seed := listing.jobURL
	if seed == "" {
		seed = listing.companyName + "|" + listing.jobTitle + "|" + listing.datePosted.Format("2006-01-02")
	}
	return hashID(seed)
}

func parseListingTable(content string, now time.Time) []readmeListing {
	lines := strings.Split(content, "\n")

	start, end := -1, -1
	for i, line := range lines {
		if strings.Contains(line, "TABLE_START") {
			start = i
		} else if strings.Contains(line, "TABLE_END") {
			end = i
			break
		}
	}
	if start < 0 || end < 0 {
		return nil
	}

	var listings []readmeListing
	var previous *readmeListing
	for _, line := range lines[start+1 : end] {
		stripped := strings.TrimSpace(line)
		if stripped == "" || !strings.HasPrefix(stripped, "|") ||
			strings.Contains(stripped, "Company") || strings.Contains(stripped, "-----") {
			continue
		}
		listing := parseListingRow(stripped, previous, now)
		if listing == nil {
			continue
		}
		listings = append(listings, *listing)
		previous = listing
	}
	return listings
}

func parseListingRow(line string, previous *readmeListing, now time.Time) *readmeListing {
	cells := splitTableRow(line)
	if len(cells) < 5 {
		return nil
	}

	listing := &readmeListing{location: cells[2]}

	// A leading arrow means "same company as the previous row"
	if strings.Contains(cells[0], "↳") {
		if previous == nil {
			return nil
		}
		listing.companyName = previous.companyName
		listing.companyURL = previous.companyURL
		listing.companyDomain = previous.companyDomain
	} else if match := boldLinkRe.FindStringSubmatch(cells[0]); match != nil {
		listing.companyName = match[1]
		listing.companyURL = match[2]
		listing.companyDomain = listingDomain(match[2])
	} else {
		listing.companyName = strings.TrimSpace(strings.ReplaceAll(cells[0], "**", ""))
	}
	if listing.companyName == "" || listing.companyDomain == "" {
		return nil
	}

	if match := boldLinkRe.FindStringSubmatch(cells[1]); match != nil {
		listing.jobTitle = match[1]
		listing.jobURL = match[2]
	} else {
		listing.jobTitle = strings.TrimSpace(strings.ReplaceAll(cells[1], "**", ""))
	}

	posted, ok := parseListingDate(cells[4], now)
	if !ok {
		return nil
	}
	listing.datePosted = posted
	return listing
}

// splitTableRow splits a markdown table row on | while respecting
// links: [text](url) cells may contain | inside the brackets or parens.
func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	var cells []string
	var current strings.Builder
	bracketDepth, parenDepth := 0, 0

	for _, ch := range line {
		switch ch {
		case '[':
			bracketDepth++
		case ']':
			bracketDepth--
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '|':
			if bracketDepth == 0 && parenDepth == 0 {
				cells = append(cells, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			}
		}
		current.WriteRune(ch)
	}
	if current.Len() > 0 {
		cells = append(cells, strings.TrimSpace(current.String()))
	}
	return cells
}

func listingDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	domain := strings.TrimPrefix(parsed.Hostname(), "www.")
	if listingSkipDomains[domain] {
		return ""
	}
	return domain
}

// parseListingDate parses "Feb 07" style dates assuming the current
// year, rolling back one year when that lands more than 30 days in the
// future (a December row read in January).
func parseListingDate(value string, now time.Time) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{"Jan 02 2006", "Jan 2 2006"} {
		parsed, err := time.Parse(layout, fmt.Sprintf("%s %d", value, now.Year()))
		if err != nil {
			continue
		}
		if parsed.Sub(now) > 30*24*time.Hour {
			parsed = parsed.AddDate(-1, 0, 0)
		}
		return parsed, true
	}
	return time.Time{}, false
}
