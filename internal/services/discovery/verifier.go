package discovery

import (
	"context"
	"net/http"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// Verifier checks that stored job URLs still resolve. Postings linger
// on aggregators long after the role closes; a cheap HEAD pass keeps
// the exported dataset honest.
type Verifier struct {
	client    *http.Client
	jobs      interfaces.JobStorage
	batchSize int
	logger    arbor.ILogger
}

func NewVerifier(client *http.Client, jobs interfaces.JobStorage, batchSize int, logger arbor.ILogger) *Verifier {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Verifier{
		client:    client,
		jobs:      jobs,
		batchSize: batchSize,
		logger:    logger,
	}
}

// VerifyActiveJobs issues HEAD requests for every active job with a
// URL, in concurrent batches, and stores the outcome per job. 2xx/3xx
// is verified, 4xx is stale, anything else stays unverified.
func (v *Verifier) VerifyActiveJobs(ctx context.Context) (verified, stale int, err error) {
	jobs, err := v.jobs.ActiveJobsWithURLs(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(jobs) == 0 {
		return 0, 0, nil
	}

	v.logger.Info().Int("jobs", len(jobs)).Msg("Verifying job URLs")

	for start := 0; start < len(jobs); start += v.batchSize {
		if err := ctx.Err(); err != nil {
			return verified, stale, err
		}
		end := start + v.batchSize
		if end > len(jobs) {
			end = len(jobs)
		}

		statuses := make([]string, end-start)
		var wg sync.WaitGroup
		for i, job := range jobs[start:end] {
			wg.Add(1)
			go func(i int, jobURL string) {
				defer wg.Done()
				statuses[i] = v.checkURL(ctx, jobURL)
			}(i, job.JobURL)
		}
		wg.Wait()

		for i, status := range statuses {
			job := jobs[start+i]
			switch status {
			case models.VerificationVerified:
				verified++
			case models.VerificationStale:
				stale++
			}
			if err := v.jobs.SetVerificationStatus(ctx, job.ID, status); err != nil {
				v.logger.Warn().Err(err).Int64("job_id", job.ID).Msg("Failed to store verification status")
			}
		}
	}

	v.logger.Info().
		Int("verified", verified).
		Int("stale", stale).
		Int("total", len(jobs)).
		Msg("Job verification complete")
	return verified, stale, nil
}

func (v *Verifier) checkURL(ctx context.Context, jobURL string) string {
	request, err := http.NewRequestWithContext(ctx, http.MethodHead, jobURL, nil)
	if err != nil {
		return models.VerificationUnverified
	}
	response, err := v.client.Do(request)
	if err != nil {
		return models.VerificationUnverified
	}
	response.Body.Close()

	switch {
	case response.StatusCode < 400:
		return models.VerificationVerified
	case response.StatusCode < 500:
		return models.VerificationStale
	default:
		return models.VerificationUnverified
	}
}
