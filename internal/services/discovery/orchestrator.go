// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package discovery

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/ats"
	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/httpclient"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
	"github.com/ternarybob/leadhound/internal/scoring"
	"github.com/ternarybob/leadhound/internal/services/enrichment"
	"github.com/ternarybob/leadhound/internal/sources"
)

// ATSDetector resolves which hosted ATS a company uses.
type ATSDetector interface {
	Detect(ctx context.Context, companyName, domain, technologies string) (models.ATSDetectionResult, error)
}

// DecisionMakerLookup finds one named contact per company.
type DecisionMakerLookup interface {
	FindDecisionMakers(ctx context.Context, companies []*models.Company) []*models.DecisionMakerResult
}

// EmailLookup resolves work emails for confirmed contacts.
type EmailLookup interface {
	FindEmails(ctx context.Context, candidates []enrichment.EmailCandidate) []*models.EmailLookupResult
}

// RunOptions are the per-invocation switches set by CLI flags.
type RunOptions struct {
	DryRun             bool
	DateFilter         string
	SkipDecisionMakers bool
	SkipEmailLookup    bool
}

// RunSummary is the outcome of one pipeline invocation.
type RunSummary struct {
	RunID               string         `json:"run_id"`
	Source              string         `json:"source"`
	CandidatesDelivered int            `json:"candidates_delivered"`
	CompaniesSkipped    int            `json:"companies_skipped"`
	CompaniesProcessed  int            `json:"companies_processed"`
	JobsFound           int            `json:"jobs_found"`
	NewJobs             int            `json:"new_jobs"`
	RemovedJobs         int            `json:"removed_jobs"`
	DecisionMakers      int            `json:"decision_makers"`
	EmailsFound         int            `json:"emails_found"`
	ByStatus            map[string]int `json:"by_status"`
	ByProvider          map[string]int `json:"by_provider"`
	Cancelled           bool           `json:"cancelled"`
	Duration            time.Duration  `json:"duration"`
}

// Orchestrator runs the staged pipeline: source, dedup, detect, fetch,
// score, diff, persist, enrich. Companies are processed sequentially;
// the fan-out lives inside ATS detection.
type Orchestrator struct {
	config   *common.Config
	store    interfaces.StorageManager
	source   sources.Adapter
	detector ATSDetector
	scorer   *scoring.Scorer
	robots   *RobotsCache

	decisionMakers DecisionMakerLookup
	emails         EmailLookup

	fetchClient *http.Client
	limiter     *rate.Limiter
	logger      arbor.ILogger

	// newATSClient is swappable for tests.
	newATSClient func(provider string, httpClient *http.Client, logger arbor.ILogger) (ats.Client, error)
}

func NewOrchestrator(
	config *common.Config,
	store interfaces.StorageManager,
	source sources.Adapter,
	detector ATSDetector,
	scorer *scoring.Scorer,
	decisionMakers DecisionMakerLookup,
	emails EmailLookup,
	logger arbor.ILogger,
) *Orchestrator {
	limit := rate.Inf
	if delay := config.Discovery.DelayBetweenRequests; delay > 0 {
		limit = rate.Every(time.Duration(delay * float64(time.Second)))
	}
	timeout := time.Duration(config.Discovery.HTTPTimeoutSecs * float64(time.Second))

	return &Orchestrator{
		config:         config,
		store:          store,
		source:         source,
		detector:       detector,
		scorer:         scorer,
		robots:         NewRobotsCache(httpclient.NewCareersClient(), logger),
		decisionMakers: decisionMakers,
		emails:         emails,
		fetchClient:    httpclient.NewDefaultHTTPClient(timeout),
		limiter:        rate.NewLimiter(limit, 1),
		logger:         logger,
		newATSClient:   ats.NewClient,
	}
}

// Run executes the pipeline once. A context cancellation stops the run
// between companies; everything persisted up to that point stays.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{
		RunID:      common.NewRunID(),
		Source:     o.source.Name(),
		ByStatus:   make(map[string]int),
		ByProvider: make(map[string]int),
	}
	runDate := time.Now().Format("2006-01-02")

	o.logger.Info().
		Str("run_id", summary.RunID).
		Str("source", o.source.Name()).
		Bool("dry_run", opts.DryRun).
		Msg("Starting discovery run")

	candidates, err := o.source.FetchCandidates(ctx, opts.DateFilter)
	if err != nil {
		return summary, fmt.Errorf("failed to load candidates from %s: %w", o.source.Name(), err)
	}
	summary.CandidatesDelivered = len(candidates)

	for i := range candidates {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}
		if summary.JobsFound >= o.config.Discovery.MaxJobs {
			o.logger.Warn().
				Int("max_jobs", o.config.Discovery.MaxJobs).
				Msg("Relevant-job budget reached, stopping early")
			break
		}

		o.processCompany(ctx, summary, runDate, &candidates[i], opts)

		if i < len(candidates)-1 {
			delay := time.Duration(o.config.Discovery.DelayBetweenCompanies * float64(time.Second))
			if !o.pause(ctx, delay) {
				summary.Cancelled = true
				break
			}
		}
	}

	if !summary.Cancelled && !opts.DryRun {
		if o.config.Discovery.EnableJobVerification {
			o.runVerification(ctx)
		}
		o.runEnrichment(ctx, summary, opts)
	}

	summary.Duration = time.Since(start)
	o.logger.Info().
		Str("run_id", summary.RunID).
		Int("processed", summary.CompaniesProcessed).
		Int("skipped", summary.CompaniesSkipped).
		Int("jobs_found", summary.JobsFound).
		Int("new_jobs", summary.NewJobs).
		Int("removed_jobs", summary.RemovedJobs).
		Str("duration", summary.Duration.Round(time.Millisecond).String()).
		Msg("Discovery run complete")

	if summary.Cancelled {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (o *Orchestrator) processCompany(ctx context.Context, summary *RunSummary, runDate string, candidate *models.CompanyCandidate, opts RunOptions) {
	log := o.logger.Info().Str("company", candidate.Name).Str("domain", candidate.Domain)

	seen, err := o.store.SeenCompanyStorage().IsSeen(ctx, candidate.Domain)
	if err != nil {
		o.logger.Warn().Err(err).Str("domain", candidate.Domain).Msg("Seen lookup failed, processing anyway")
	}
	if seen {
		summary.CompaniesSkipped++
		o.logger.Debug().Str("domain", candidate.Domain).Msg("Already processed, skipping")
		return
	}

	relevant, detection, status, errMsg := o.collectJobs(ctx, candidate)
	summary.ByStatus[status]++
	if detection.Detected() {
		summary.ByProvider[detection.Provider]++
	}

	if opts.DryRun {
		summary.CompaniesProcessed++
		summary.JobsFound += len(relevant)
		log.Str("status", status).Int("relevant_jobs", len(relevant)).Msg("Dry run, no writes")
		return
	}

	sourceDate := candidate.SourceDate
	if sourceDate == "" {
		sourceDate = runDate
	}
	companyID, _, err := o.store.CompanyStorage().UpsertCompany(ctx, candidate, summary.RunID, sourceDate)
	if err != nil {
		o.logger.Error().Err(err).Str("domain", candidate.Domain).Msg("Company upsert failed")
		summary.ByStatus[models.StatusError]++
		return
	}

	if detection.Detected() {
		if err := o.store.CompanyStorage().UpdateATSInfo(ctx, companyID, detection.Provider, detection.BoardToken, ""); err != nil {
			o.logger.Warn().Err(err).Int64("company_id", companyID).Msg("Failed to store ATS info")
		}
	}

	snapshot := &models.RunSnapshot{
		RunID:        summary.RunID,
		RunDate:      runDate,
		CompanyID:    companyID,
		Status:       status,
		ErrorMessage: errMsg,
	}

	if status == models.StatusSuccess {
		newCount, removedCount, applyErr := o.applyJobChanges(ctx, summary.RunID, companyID, relevant)
		if applyErr != nil {
			o.logger.Error().Err(applyErr).Int64("company_id", companyID).Msg("Failed to apply job changes")
			snapshot.Status = models.StatusError
			snapshot.ErrorMessage = applyErr.Error()
		} else {
			snapshot.JobsFound = len(relevant)
			snapshot.NewJobs = newCount
			snapshot.RemovedJobs = removedCount
			summary.JobsFound += len(relevant)
			summary.NewJobs += newCount
			summary.RemovedJobs += removedCount
			log.Int("relevant_jobs", len(relevant)).Int("new", newCount).Int("removed", removedCount).Msg("Company processed")
		}
	} else {
		log.Str("status", status).Msg("Company not processed")
	}

	if err := o.store.CompanyStorage().TouchLastChecked(ctx, companyID); err != nil {
		o.logger.Warn().Err(err).Int64("company_id", companyID).Msg("Failed to stamp last_checked_at")
	}
	if err := o.store.SnapshotStorage().Record(ctx, snapshot); err != nil {
		o.logger.Warn().Err(err).Int64("company_id", companyID).Msg("Failed to record run snapshot")
	}

	// Fetch errors stay unmarked so the company is retried next run
	if status != models.StatusFetchError && status != models.StatusError {
		if err := o.store.SeenCompanyStorage().MarkSeen(ctx, candidate.Domain, candidate.Name, sourceDate, summary.RunID); err != nil {
			o.logger.Warn().Err(err).Str("domain", candidate.Domain).Msg("Failed to mark company seen")
		}
	}

	summary.CompaniesProcessed++
}

// collectJobs resolves a candidate to its scored relevant postings.
// Sources that deliver listings directly bypass ATS detection.
func (o *Orchestrator) collectJobs(ctx context.Context, candidate *models.CompanyCandidate) ([]models.JobPosting, models.ATSDetectionResult, string, string) {
	var detection models.ATSDetectionResult

	if len(candidate.Listings) > 0 {
		return o.scoreJobs(candidate.Listings), detection, models.StatusSuccess, ""
	}

	if !o.robots.Allowed(ctx, candidate.Domain, "/") {
		return nil, detection, models.StatusBlockedRobots, ""
	}

	detection, err := o.detector.Detect(ctx, candidate.Name, candidate.Domain, candidate.Technologies)
	if err != nil {
		return nil, detection, models.StatusError, err.Error()
	}
	if detection.Provider == models.ProviderLinkedInOnly {
		return nil, detection, models.StatusLinkedInOnly, ""
	}
	if !detection.Detected() {
		return nil, detection, models.StatusUnknownATS, ""
	}

	client, err := o.newATSClient(detection.Provider, o.fetchClient, o.logger)
	if err != nil {
		return nil, detection, models.StatusUnsupportedATS, ""
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, detection, models.StatusFetchError, err.Error()
	}
	fetched, err := client.FetchJobs(ctx, detection.BoardToken)
	if err != nil {
		// Jobs stay untouched on a failed fetch; an empty fetch is the
		// only thing that removes them
		return nil, detection, models.StatusFetchError, err.Error()
	}

	return o.scoreJobs(fetched), detection, models.StatusSuccess, ""
}

func (o *Orchestrator) scoreJobs(fetched []models.JobPosting) []models.JobPosting {
	var relevant []models.JobPosting
	for _, posting := range fetched {
		result := o.scorer.Score(posting.Title, posting.Description)
		if !result.IsRelevant {
			continue
		}
		posting.RelevanceScore = result.Score
		posting.MatchedCategory = result.Category
		relevant = append(relevant, posting)
	}
	return relevant
}

// applyJobChanges snapshot-reads the active set, diffs, and applies the
// transitions in one storage transaction.
func (o *Orchestrator) applyJobChanges(ctx context.Context, runID string, companyID int64, relevant []models.JobPosting) (int, int, error) {
	jobStore := o.store.JobStorage()

	active, err := jobStore.ActiveExternalIDs(ctx, companyID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load active jobs: %w", err)
	}

	changes := ComputeChanges(active, relevant)
	if err := jobStore.ApplyChanges(ctx, companyID, runID, changes.New, changes.RemovedIDs, changes.SurvivingIDs); err != nil {
		return 0, 0, fmt.Errorf("failed to apply job changes: %w", err)
	}

	if err := o.store.CompanyStorage().UpdateUrgencyScore(ctx, companyID, len(relevant)); err != nil {
		o.logger.Warn().Err(err).Int64("company_id", companyID).Msg("Failed to update urgency score")
	}

	return len(changes.New), len(changes.RemovedIDs), nil
}

func (o *Orchestrator) runVerification(ctx context.Context) {
	timeout := time.Duration(o.config.Discovery.JobVerificationTimeout * float64(time.Second))
	verifier := NewVerifier(
		httpclient.NewDefaultHTTPClient(timeout),
		o.store.JobStorage(),
		o.config.Discovery.JobVerificationBatchSize,
		o.logger,
	)
	if _, _, err := verifier.VerifyActiveJobs(ctx); err != nil {
		o.logger.Warn().Err(err).Msg("Job verification pass failed")
	}
}

// runEnrichment batches the top-ranked un-enriched companies through
// the decision-maker lookup, then resolves emails for the contacts it
// confirmed.
func (o *Orchestrator) runEnrichment(ctx context.Context, summary *RunSummary, opts RunOptions) {
	enrichCfg := o.config.Enrichment

	if o.decisionMakers == nil || opts.SkipDecisionMakers || !enrichCfg.EnableDecisionMakerLookup {
		o.logger.Info().Msg("Decision-maker lookup disabled, skipping enrichment")
		return
	}

	companies, err := o.store.CompanyStorage().ListForEnrichment(ctx,
		enrichCfg.TopCompanies, enrichCfg.EnrichLinkedInOnly, enrichCfg.RankBy == "urgency")
	if err != nil {
		o.logger.Error().Err(err).Msg("Failed to select companies for enrichment")
		return
	}
	if len(companies) == 0 {
		return
	}

	byName := make(map[string]*models.Company, len(companies))
	for _, company := range companies {
		byName[strings.ToLower(company.Name)] = company
	}

	results := o.decisionMakers.FindDecisionMakers(ctx, companies)

	var emailCandidates []enrichment.EmailCandidate
	for _, result := range results {
		company, ok := byName[strings.ToLower(result.CompanyName)]
		if !ok {
			continue
		}
		if !result.Found() {
			o.logger.Info().
				Str("company", result.CompanyName).
				Str("reason", result.NotFoundReason).
				Msg("No decision maker identified")
			continue
		}

		if err := o.store.DecisionMakerStorage().Upsert(ctx, company.ID, result); err != nil {
			o.logger.Warn().Err(err).Str("company", result.CompanyName).Msg("Failed to store decision maker")
			continue
		}
		if result.EmployeeCount != nil {
			if err := o.store.CompanyStorage().UpdateEmployeeCount(ctx, company.ID, *result.EmployeeCount); err != nil {
				o.logger.Warn().Err(err).Str("company", result.CompanyName).Msg("Failed to store employee count")
			}
		}
		summary.DecisionMakers++

		emailCandidates = append(emailCandidates, enrichment.EmailCandidate{
			CompanyName: result.CompanyName,
			PersonName:  result.PersonName,
			Website:     company.Website,
		})
	}

	if o.emails == nil || opts.SkipEmailLookup || !enrichCfg.EnableEmailLookup || len(emailCandidates) == 0 {
		return
	}

	for _, result := range o.emails.FindEmails(ctx, emailCandidates) {
		company, ok := byName[strings.ToLower(result.CompanyName)]
		if !ok {
			continue
		}
		if result.Email == "" && result.LinkedInURL == "" {
			o.logger.Info().
				Str("company", result.CompanyName).
				Str("reason", result.NotFoundReason).
				Msg("No email resolved")
			continue
		}
		if err := o.store.DecisionMakerStorage().SetContact(ctx, company.ID, result.Email, result.LinkedInURL); err != nil {
			o.logger.Warn().Err(err).Str("company", result.CompanyName).Msg("Failed to store contact")
			continue
		}
		if result.Email != "" {
			summary.EmailsFound++
		}
	}
}

func (o *Orchestrator) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
