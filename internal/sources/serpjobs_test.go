package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// serpTransport redirects requests for the production search endpoint to
// a local test server.
type serpTransport struct {
	target *url.URL
}

func (t *serpTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = t.target.Scheme
	clone.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

func newSerpTestAdapter(t *testing.T, handler http.Handler, maxSearches, metrosPerRun int) *SerpJobsAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	client := &http.Client{Transport: &serpTransport{target: target}}
	statePath := filepath.Join(t.TempDir(), "metro_state.json")
	adapter := NewSerpJobsAdapter("test-key", "marketing agency", maxSearches, metrosPerRun, statePath, client, arbor.NewLogger())
	adapter.metros = []string{"New York, NY", "Chicago, IL", "Austin, TX"}
	return adapter
}

func serpPayload(jobs []map[string]any) []byte {
	data, _ := json.Marshal(map[string]any{"jobs_results": jobs})
	return data
}

func TestSerpJobsAdapter_FetchCandidates(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_jobs", r.URL.Query().Get("engine"))
		assert.Equal(t, "date_posted:week", r.URL.Query().Get("chips"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		switch r.URL.Query().Get("location") {
		case "New York, NY":
			w.Write(serpPayload([]map[string]any{
				{
					"title":        "Account Manager",
					"company_name": "Bright Leads",
					"location":     "New York, NY",
					"description":  "Long description",
					"detected_extensions": map[string]any{
						"posted_at": "2 days ago",
					},
					"apply_options": []map[string]any{
						{"title": "Company site", "link": "https://www.brightleads.com/jobs/17"},
					},
				},
				{
					"title":        "Sales Rep",
					"company_name": "Board Only Inc",
					"location":     "New York, NY",
					"apply_options": []map[string]any{
						{"title": "LinkedIn", "link": "https://linkedin.com/jobs/view/99"},
					},
				},
			}))
		case "Chicago, IL":
			w.Write(serpPayload([]map[string]any{
				// Same company+title as the New York result, must dedup
				{
					"title":        "Account Manager",
					"company_name": "bright leads",
					"location":     "Chicago, IL",
				},
				{
					"title":        "Office Coordinator",
					"company_name": "Bright Leads",
					"location":     "Chicago, IL",
				},
			}))
		default:
			w.Write(serpPayload(nil))
		}
	})

	adapter := newSerpTestAdapter(t, handler, 5, 2)
	candidates, err := adapter.FetchCandidates(context.Background(), "2026-08-21")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	bright := candidates[0]
	assert.Equal(t, "Bright Leads", bright.Name)
	assert.Equal(t, "brightleads.com", bright.Domain)
	assert.Equal(t, "https://www.brightleads.com/jobs/17", bright.Website)
	assert.Equal(t, "2026-08-21", bright.SourceDate)
	require.Len(t, bright.Listings, 2)
	assert.Equal(t, "Account Manager", bright.Listings[0].Title)
	assert.Equal(t, "https://www.brightleads.com/jobs/17", bright.Listings[0].JobURL)
	require.NotNil(t, bright.Listings[0].PostingDate)
	assert.Equal(t, "Office Coordinator", bright.Listings[1].Title)

	// Aggregator apply link gives no domain, so the name slug stands in
	board := candidates[1]
	assert.Equal(t, "Board Only Inc", board.Name)
	assert.Equal(t, "board-only-inc", board.Domain)
	assert.Equal(t, "", board.Website)
}

func TestSerpJobsAdapter_SearchBudget(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write(serpPayload(nil))
	})

	adapter := newSerpTestAdapter(t, handler, 1, 3)
	_, err := adapter.FetchCandidates(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSerpJobsAdapter_FailedSearchContinues(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("location") == "New York, NY" {
			w.Write([]byte(`{"error": "Your account has run out of searches."}`))
			return
		}
		w.Write(serpPayload([]map[string]any{
			{"title": "Recruiter", "company_name": "Second Metro Co", "location": "Chicago, IL"},
		}))
	})

	adapter := newSerpTestAdapter(t, handler, 5, 2)
	candidates, err := adapter.FetchCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Second Metro Co", candidates[0].Name)
}

func TestCompanyDomainFromJob(t *testing.T) {
	direct := serpJob{ApplyOptions: []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	}{{Link: "https://www.acme.com/careers/5"}}}
	website, domain := companyDomainFromJob(direct)
	assert.Equal(t, "https://www.acme.com/careers/5", website)
	assert.Equal(t, "acme.com", domain)

	aggregator := serpJob{ApplyOptions: []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	}{{Link: "https://indeed.com/viewjob?jk=1"}}}
	website, domain = companyDomainFromJob(aggregator)
	assert.Equal(t, "", website)
	assert.Equal(t, "", domain)

	website, domain = companyDomainFromJob(serpJob{})
	assert.Equal(t, "", website)
	assert.Equal(t, "", domain)
}

func TestSlugDomain(t *testing.T) {
	assert.Equal(t, "bright-leads-co", slugDomain("Bright Leads & Co."))
	assert.Equal(t, "acme", slugDomain("  Acme  "))
}

func TestParsePostedAt(t *testing.T) {
	now := time.Date(2026, time.August, 21, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		input    string
		wantDays int
		wantNil  bool
	}{
		{"Just posted", 0, false},
		{"today", 0, false},
		{"3 hours ago", 0, false},
		{"yesterday", 1, false},
		{"2 days ago", 2, false},
		{"1 week ago", 7, false},
		{"", 0, true},
		{"a while back", 0, true},
	}
	for _, tc := range cases {
		got := parsePostedAt(tc.input, now)
		if tc.wantNil {
			assert.Nil(t, got, tc.input)
			continue
		}
		require.NotNil(t, got, tc.input)
		assert.Equal(t, now.AddDate(0, 0, -tc.wantDays), *got, tc.input)
	}
}
