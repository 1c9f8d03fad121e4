// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/models"
	"google.golang.org/genai"
)

// promptSales targets the buyer ladder for marketing and sales lead
// lists. promptIT targets the IT purchasing ladder for MSP lists.
const (
	promptSales = `You have access to Google Search grounding. Your task is to identify the single most appropriate current decision maker for purchasing decisions at each of the companies listed below.

For each company, return exactly one person, chosen using this strict priority order:
1. Owner, CEO, Founder, President, or Co-Founder
2. VP Sales, Sales Director, or CRO
3. VP Marketing, Marketing Director, or CMO

You must use only publicly verifiable sources such as LinkedIn profiles, company "About" or "Team" pages, or reputable press articles. Do not guess, infer, or hallucinate names or titles. If you cannot confidently identify a suitable person, explicitly return "Not confidently identifiable" and briefly state why.

Do not return multiple people, do not list alternatives, and do not select individual contributors. Exclude recruiters, HR, engineers, designers, consultants, agencies, and former employees.

For each company, output the company name, the decision maker's full name, exact current title, a source URL proving the role, a confidence level (High if the LinkedIn title clearly matches and is current, Medium if there is one strong but slightly ambiguous source), and the approximate employee count for the company (use LinkedIn or other public sources; return as an integer, e.g. 15, 50, 200).

Prefer accuracy over completeness.

IMPORTANT: Return your results as a JSON array. Each element must be an object with these exact keys: "company_name", "person_name", "title", "source_url", "confidence", "employee_count". If not identifiable, set person_name to "Not confidently identifiable" and add a "reason" key.

Companies:
%s`

	promptIT = `You have access to Google Search grounding. Your task is to identify the single most appropriate current decision maker responsible for IT purchasing, technology operations, or general business operations at each of the companies listed below.

For each company, return exactly one person, chosen using this strict priority order:
1. Owner, CEO, Founder, or Co-Founder (most common IT buyer at small businesses)
2. IT Director, IT Manager, or CTO
3. Office Manager, COO, or Operations Manager

You must use only publicly verifiable sources such as LinkedIn profiles, company "About" or "Team" pages, or reputable press articles. Do not guess, infer, or hallucinate names or titles. If you cannot confidently identify a suitable person, explicitly return "Not confidently identifiable" and briefly state why.

Do not return multiple people, do not list alternatives, and do not select individual contributors. Exclude recruiters, HR, engineers, designers, consultants, agencies, and former employees.

For each company, output the company name, the decision maker's full name, exact current title, a source URL proving the role, a confidence level (High if the LinkedIn title clearly matches and is current, Medium if there is one strong but slightly ambiguous source), and the approximate employee count for the company (use LinkedIn or other public sources; return as an integer, e.g. 15, 50, 200). Also determine the industry category for each company. Choose exactly one from this list: Healthcare, Legal, Financial Services, Manufacturing, Professional Services, Construction, Real Estate, Retail / E-commerce, Education, Nonprofits, Food & Beverage, Other.

Prefer accuracy over completeness.

IMPORTANT: Return your results as a JSON array. Each element must be an object with these exact keys: "company_name", "person_name", "title", "source_url", "confidence", "employee_count", "industry". If not identifiable, set person_name to "Not confidently identifiable" and add a "reason" key.

Companies:
%s`
)

// DecisionMakerFinder identifies one buying contact per company using
// Gemini with Google Search grounding. Companies are batched to keep
// API calls (and free-tier quota burn) down.
type DecisionMakerFinder struct {
	client    *genai.Client
	model     string
	batchSize int
	profile   string
	retry     RetryConfig
	logger    arbor.ILogger
}

// NewDecisionMakerFinder creates a finder. profile selects the prompt
// variant: "it" uses the IT purchasing ladder, everything else the
// sales/marketing ladder.
func NewDecisionMakerFinder(ctx context.Context, apiKey, model string, batchSize int, profile string, logger arbor.ILogger) (*DecisionMakerFinder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required for decision maker lookup (set GEMINI_API_KEY or enrichment.gemini_api_key)")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if batchSize <= 0 {
		batchSize = 5
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &DecisionMakerFinder{
		client:    client,
		model:     model,
		batchSize: batchSize,
		profile:   profile,
		retry:     DefaultGeminiRetryConfig(),
		logger:    logger,
	}, nil
}

// FindDecisionMakers looks up a decision maker for every company. The
// result slice always has one entry per input company; failures become
// per-company not-found reasons rather than aborting the run.
func (f *DecisionMakerFinder) FindDecisionMakers(ctx context.Context, companies []*models.Company) []*models.DecisionMakerResult {
	var results []*models.DecisionMakerResult

	batchCount := (len(companies) + f.batchSize - 1) / f.batchSize
	f.logger.Info().
		Int("companies", len(companies)).
		Int("batches", batchCount).
		Msg("Looking up decision makers")

	for start := 0; start < len(companies); start += f.batchSize {
		end := start + f.batchSize
		if end > len(companies) {
			end = len(companies)
		}
		batch := companies[start:end]

		batchResults, err := f.processBatch(ctx, batch)
		if err != nil {
			f.logger.Error().Err(err).Int("batch_start", start).Msg("Decision maker batch failed")
			for _, company := range batch {
				results = append(results, &models.DecisionMakerResult{
					CompanyName:    company.Name,
					NotFoundReason: fmt.Sprintf("API error: %v", err),
				})
			}
			continue
		}
		results = append(results, batchResults...)
	}

	return results
}

func (f *DecisionMakerFinder) processBatch(ctx context.Context, batch []*models.Company) ([]*models.DecisionMakerResult, error) {
	var lines []string
	for _, company := range batch {
		if company.Domain != "" {
			lines = append(lines, fmt.Sprintf("- %s (website: %s)", company.Name, company.Domain))
		} else {
			lines = append(lines, fmt.Sprintf("- %s", company.Name))
		}
	}

	template := promptSales
	if f.profile == "it" {
		template = promptIT
	}
	prompt := fmt.Sprintf(template, strings.Join(lines, "\n"))

	raw, err := f.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		var results []*models.DecisionMakerResult
		for _, company := range batch {
			results = append(results, &models.DecisionMakerResult{
				CompanyName:    company.Name,
				NotFoundReason: "Empty Gemini response",
			})
		}
		return results, nil
	}

	return parseDecisionMakerResponse(raw, batch), nil
}

// generateWithRetry calls Gemini, backing off on quota errors.
func (f *DecisionMakerFinder) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Tools:       []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		Temperature: genai.Ptr(float32(0.0)),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	var text string
	err := f.retry.Do(ctx, f.logger, func() error {
		response, err := f.client.Models.GenerateContent(ctx, f.model, contents, config)
		if err != nil {
			return err
		}
		text = responseText(response)
		return nil
	})
	return text, err
}

func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			builder.WriteString(part.Text)
		}
	}
	return builder.String()
}
