package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/models"
)

const serpAPIBaseURL = "https://serpapi.com/search.json"

// aggregatorDomains are apply-link hosts that belong to job boards, not
// to the hiring company.
var aggregatorDomains = map[string]bool{
	"linkedin.com":      true,
	"indeed.com":        true,
	"ziprecruiter.com":  true,
	"glassdoor.com":     true,
	"monster.com":       true,
	"simplyhired.com":   true,
	"jobs.google.com":   true,
	"careerbuilder.com": true,
}

// SerpJobsAdapter finds hiring companies through the SerpAPI Google
// Jobs engine, rotating through metro areas across runs. Each search
// costs money, so a per-run budget caps spend.
type SerpJobsAdapter struct {
	apiKey       string
	query        string
	maxSearches  int
	metrosPerRun int
	metros       []string
	statePath    string
	http         *http.Client
	logger       arbor.ILogger
}

func NewSerpJobsAdapter(apiKey, query string, maxSearches, metrosPerRun int, statePath string, httpClient *http.Client, logger arbor.ILogger) *SerpJobsAdapter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SerpJobsAdapter{
		apiKey:       apiKey,
		query:        query,
		maxSearches:  maxSearches,
		metrosPerRun: metrosPerRun,
		metros:       DefaultMetros,
		statePath:    statePath,
		http:         httpClient,
		logger:       logger,
	}
}

func (a *SerpJobsAdapter) Name() string { return "serpapi" }

type serpJob struct {
	Title              string `json:"title"`
	CompanyName        string `json:"company_name"`
	Location           string `json:"location"`
	Description        string `json:"description"`
	DetectedExtensions struct {
		PostedAt string `json:"posted_at"`
	} `json:"detected_extensions"`
	ApplyOptions []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"apply_options"`
}

// FetchCandidates searches this run's metros, dedupes postings by
// (company, title), and groups the survivors into one candidate per
// company.
func (a *SerpJobsAdapter) FetchCandidates(ctx context.Context, dateFilter string) ([]models.CompanyCandidate, error) {
	metros, err := NextMetros(a.metros, a.metrosPerRun, a.statePath)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var jobs []serpJob
	searches := 0

	for _, metro := range metros {
		if searches >= a.maxSearches {
			a.logger.Warn().Int("budget", a.maxSearches).Msg("Search budget exhausted")
			break
		}
		results, err := a.searchOne(ctx, metro)
		searches++
		if err != nil {
			a.logger.Error().Err(err).Str("metro", metro).Msg("Search failed")
			continue
		}

		kept := 0
		for _, job := range results {
			key := strings.ToLower(strings.TrimSpace(job.CompanyName)) + "|||" +
				strings.ToLower(strings.TrimSpace(job.Title))
			if seen[key] {
				continue
			}
			seen[key] = true
			jobs = append(jobs, job)
			kept++
		}
		a.logger.Info().
			Str("metro", metro).
			Int("results", len(results)).
			Int("unique", kept).
			Msg("Metro search complete")
	}

	return a.groupJobs(jobs, dateFilter), nil
}

func (a *SerpJobsAdapter) searchOne(ctx context.Context, location string) ([]serpJob, error) {
	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", a.query)
	params.Set("location", location)
	params.Set("chips", "date_posted:week")
	params.Set("api_key", a.apiKey)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	response, err := a.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", response.StatusCode)
	}

	var parsed struct {
		Error       string    `json:"error"`
		JobsResults []serpJob `json:"jobs_results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("search API error: %s", parsed.Error)
	}
	return parsed.JobsResults, nil
}

func (a *SerpJobsAdapter) groupJobs(jobs []serpJob, dateFilter string) []models.CompanyCandidate {
	sourceDate := dateFilter
	if sourceDate == "" {
		sourceDate = time.Now().Format("2006-01-02")
	}

	var order []string
	byName := make(map[string]*models.CompanyCandidate)

	for _, job := range jobs {
		name := strings.TrimSpace(job.CompanyName)
		if name == "" || job.Title == "" {
			continue
		}

		key := strings.ToLower(name)
		candidate, ok := byName[key]
		if !ok {
			website, domain := companyDomainFromJob(job)
			if domain == "" {
				// No resolvable website; a stable name slug keeps the
				// company addressable until enrichment finds the real one
				domain = slugDomain(name)
			}
			candidate = &models.CompanyCandidate{
				Name:       name,
				Domain:     domain,
				Website:    website,
				SourceDate: sourceDate,
			}
			byName[key] = candidate
			order = append(order, key)
		}

		posting := models.JobPosting{
			ExternalID:  serpExternalID(job),
			Title:       job.Title,
			Location:    job.Location,
			Description: truncateDescription(job.Description, 500),
			PostingDate: parsePostedAt(job.DetectedExtensions.PostedAt, time.Now()),
		}
		if len(job.ApplyOptions) > 0 {
			posting.JobURL = job.ApplyOptions[0].Link
		}
		candidate.Listings = append(candidate.Listings, posting)
	}

	candidates := make([]models.CompanyCandidate, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, *byName[key])
	}
	return candidates
}

// companyDomainFromJob extracts the company website from the first
// apply link, unless it points at a job board.
func companyDomainFromJob(job serpJob) (string, string) {
	if len(job.ApplyOptions) == 0 {
		return "", ""
	}
	link := job.ApplyOptions[0].Link
	domain := common.NormalizeDomain(link)
	if domain == "" || aggregatorDomains[domain] {
		return "", ""
	}
	return link, domain
}

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugDomain(name string) string {
	slug := slugCleanRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func serpExternalID(job serpJob) string {
	if len(job.ApplyOptions) > 0 && job.ApplyOptions[0].Link != "" {
		return hashID(job.ApplyOptions[0].Link)
	}
	return hashID(job.CompanyName + "|" + job.Title + "|" + job.Location)
}

func truncateDescription(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var relativeDayRe = regexp.MustCompile(`(\d+)\s*day`)
var relativeWeekRe = regexp.MustCompile(`(\d+)\s*week`)

// parsePostedAt converts "2 days ago" style strings to a date. Unknown
// phrasings return nil rather than guessing.
func parsePostedAt(postedAt string, now time.Time) *time.Time {
	text := strings.ToLower(strings.TrimSpace(postedAt))
	if text == "" {
		return nil
	}

	day := func(d int) *time.Time {
		when := now.AddDate(0, 0, -d)
		return &when
	}

	if strings.Contains(text, "today") || strings.Contains(text, "just") || strings.Contains(text, "hour") {
		return day(0)
	}
	if strings.Contains(text, "yesterday") {
		return day(1)
	}
	if match := relativeDayRe.FindStringSubmatch(text); match != nil {
		n, _ := strconv.Atoi(match[1])
		return day(n)
	}
	if match := relativeWeekRe.FindStringSubmatch(text); match != nil {
		n, _ := strconv.Atoi(match[1])
		return day(n * 7)
	}
	return nil
}
