package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/models"
)

const apolloBulkMatchURL = "https://api.apollo.io/api/v1/people/bulk_match"

// apolloMaxBatch is Apollo's hard cap on bulk_match details per call.
const apolloMaxBatch = 10

// EmailFinder resolves work emails for found decision makers through
// Apollo's bulk match API.
type EmailFinder struct {
	apiKey    string
	batchSize int
	http      *http.Client
	retry     RetryConfig
	logger    arbor.ILogger
}

// NewEmailFinder creates a finder. Batch size is clamped to Apollo's
// limit of 10.
func NewEmailFinder(apiKey string, batchSize int, httpClient *http.Client, logger arbor.ILogger) (*EmailFinder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Apollo API key is required for email lookup (set APOLLO_API_KEY or enrichment.apollo_api_key)")
	}
	if batchSize <= 0 || batchSize > apolloMaxBatch {
		batchSize = apolloMaxBatch
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EmailFinder{
		apiKey:    apiKey,
		batchSize: batchSize,
		http:      httpClient,
		retry:     DefaultApolloRetryConfig(),
		logger:    logger,
	}, nil
}

// EmailCandidate is one person to resolve: the decision maker joined
// with their company.
type EmailCandidate struct {
	CompanyName string
	PersonName  string
	Website     string
}

type apolloDetail struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Domain           string `json:"domain,omitempty"`
	OrganizationName string `json:"organization_name"`
}

type apolloMatch struct {
	Email       string `json:"email"`
	LinkedInURL string `json:"linkedin_url"`
	Title       string `json:"title"`
}

// FindEmails resolves emails for every candidate. One result per input,
// in input order; a failed batch yields error results for its members
// without aborting the rest.
func (f *EmailFinder) FindEmails(ctx context.Context, candidates []EmailCandidate) []*models.EmailLookupResult {
	var results []*models.EmailLookupResult

	for start := 0; start < len(candidates); start += f.batchSize {
		end := start + f.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		// Apollo 429s clear quickly; retry the whole batch before
		// falling back to per-candidate error results
		var batchResults []*models.EmailLookupResult
		err := f.retry.Do(ctx, f.logger, func() error {
			var batchErr error
			batchResults, batchErr = f.matchBatch(ctx, batch)
			return batchErr
		})
		if err != nil {
			f.logger.Error().Err(err).Int("batch_start", start).Msg("Apollo batch failed")
			for _, candidate := range batch {
				results = append(results, &models.EmailLookupResult{
					CompanyName:    candidate.CompanyName,
					PersonName:     candidate.PersonName,
					NotFoundReason: fmt.Sprintf("API error: %v", err),
				})
			}
			continue
		}
		results = append(results, batchResults...)
	}
	return results
}

// matchBatch sends one bulk_match call. Apollo returns matches
// positionally: matches[i] answers details[i], with null for misses.
func (f *EmailFinder) matchBatch(ctx context.Context, batch []EmailCandidate) ([]*models.EmailLookupResult, error) {
	details := make([]apolloDetail, 0, len(batch))
	for _, candidate := range batch {
		firstName, lastName := splitPersonName(candidate.PersonName)
		detail := apolloDetail{
			FirstName:        firstName,
			LastName:         lastName,
			OrganizationName: candidate.CompanyName,
		}
		if domain := common.NormalizeDomain(candidate.Website); domain != "" {
			detail.Domain = domain
		}
		details = append(details, detail)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"reveal_personal_emails": false,
		"details":                details,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal apollo request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, apolloBulkMatchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build apollo request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("x-api-key", f.apiKey)

	response, err := f.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("apollo request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read apollo response: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apollo returned status %d: %s", response.StatusCode, truncate(string(body), 200))
	}

	var parsed struct {
		Matches []*apolloMatch `json:"matches"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse apollo response: %w", err)
	}

	results := make([]*models.EmailLookupResult, 0, len(batch))
	for i, candidate := range batch {
		result := &models.EmailLookupResult{
			CompanyName: candidate.CompanyName,
			PersonName:  candidate.PersonName,
		}
		var match *apolloMatch
		if i < len(parsed.Matches) {
			match = parsed.Matches[i]
		}
		switch {
		case match == nil:
			result.NotFoundReason = "No match found in Apollo"
		case match.Email == "":
			result.LinkedInURL = match.LinkedInURL
			result.ApolloTitle = match.Title
			result.NotFoundReason = "Matched in Apollo but no email available"
		default:
			result.Email = match.Email
			result.LinkedInURL = match.LinkedInURL
			result.ApolloTitle = match.Title
		}
		results = append(results, result)
	}
	return results, nil
}

// splitPersonName splits on the first space: everything after it is the
// last name, compound surnames included.
func splitPersonName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
