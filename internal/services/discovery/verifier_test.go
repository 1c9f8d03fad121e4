package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
)

type fakeJobStore struct {
	mu       sync.Mutex
	jobs     []*models.Job
	statuses map[int64]string
}

func (s *fakeJobStore) ActiveExternalIDs(ctx context.Context, companyID int64) (map[string]int64, error) {
	return nil, nil
}

func (s *fakeJobStore) ApplyChanges(ctx context.Context, companyID int64, runID string, newJobs []models.JobPosting, removedJobIDs, survivingJobIDs []int64) error {
	return nil
}

func (s *fakeJobStore) ActiveJobs(ctx context.Context, companyID int64) ([]*models.Job, error) {
	return nil, nil
}

func (s *fakeJobStore) ActiveJobsWithURLs(ctx context.Context) ([]*models.Job, error) {
	return s.jobs, nil
}

func (s *fakeJobStore) SetVerificationStatus(ctx context.Context, jobID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses == nil {
		s.statuses = make(map[int64]string)
	}
	s.statuses[jobID] = status
	return nil
}

func (s *fakeJobStore) CountActive(ctx context.Context) (int, error) { return len(s.jobs), nil }

func TestVerifier_StatusMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	store := &fakeJobStore{jobs: []*models.Job{
		{ID: 1, JobURL: server.URL + "/ok"},
		{ID: 2, JobURL: server.URL + "/gone"},
		{ID: 3, JobURL: server.URL + "/error"},
	}}

	verifier := NewVerifier(server.Client(), store, 2, arbor.NewLogger())
	verified, stale, err := verifier.VerifyActiveJobs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, verified)
	assert.Equal(t, 1, stale)
	assert.Equal(t, models.VerificationVerified, store.statuses[1])
	assert.Equal(t, models.VerificationStale, store.statuses[2])
	assert.Equal(t, models.VerificationUnverified, store.statuses[3])
}

func TestVerifier_NoJobs(t *testing.T) {
	verifier := NewVerifier(http.DefaultClient, &fakeJobStore{}, 20, arbor.NewLogger())
	verified, stale, err := verifier.VerifyActiveJobs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, verified)
	assert.Zero(t, stale)
}

func TestVerifier_UnreachableHostStaysUnverified(t *testing.T) {
	store := &fakeJobStore{jobs: []*models.Job{
		{ID: 7, JobURL: "http://127.0.0.1:1/jobs/7"},
	}}

	verifier := NewVerifier(http.DefaultClient, store, 20, arbor.NewLogger())
	verified, stale, err := verifier.VerifyActiveJobs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, verified)
	assert.Zero(t, stale)
	assert.Equal(t, models.VerificationUnverified, store.statuses[7])
}
