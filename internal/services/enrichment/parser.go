package enrichment

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/ternarybob/leadhound/internal/models"
)

// validIndustries is the closed vocabulary the IT prompt asks for.
// Anything else the model invents collapses to "Other".
var validIndustries = map[string]bool{
	"Healthcare":            true,
	"Legal":                 true,
	"Financial Services":    true,
	"Manufacturing":         true,
	"Professional Services": true,
	"Construction":          true,
	"Real Estate":           true,
	"Retail / E-commerce":   true,
	"Education":             true,
	"Nonprofits":            true,
	"Food & Beverage":       true,
	"Other":                 true,
}

// decisionMakerEntry is one element of the model's JSON array.
// employee_count arrives as an integer, a quoted string, or a range the
// model made up, so it is parsed leniently.
type decisionMakerEntry struct {
	CompanyName   string          `json:"company_name"`
	PersonName    string          `json:"person_name"`
	Title         string          `json:"title"`
	SourceURL     string          `json:"source_url"`
	Confidence    string          `json:"confidence"`
	EmployeeCount json.RawMessage `json:"employee_count"`
	Industry      string          `json:"industry"`
	Reason        string          `json:"reason"`
}

// parseDecisionMakerResponse turns raw model output into one result per
// batch company, in batch order. Companies the model skipped get a
// not-found result.
func parseDecisionMakerResponse(raw string, batch []*models.Company) []*models.DecisionMakerResult {
	byCompany := make(map[string]*models.DecisionMakerResult)

	entries := extractEntries(raw)
	for _, entry := range entries {
		matched := matchCompanyName(entry.CompanyName, batch)
		if matched == "" {
			continue
		}
		byCompany[matched] = entryToResult(matched, entry)
	}
	if entries == nil {
		byCompany = regexSweep(raw, batch)
	}

	results := make([]*models.DecisionMakerResult, 0, len(batch))
	for _, company := range batch {
		if result, ok := byCompany[company.Name]; ok {
			results = append(results, result)
			continue
		}
		results = append(results, &models.DecisionMakerResult{
			CompanyName:    company.Name,
			NotFoundReason: "Not found in Gemini response",
			RawText:        truncate(raw, 500),
		})
	}
	return results
}

func entryToResult(companyName string, entry decisionMakerEntry) *models.DecisionMakerResult {
	rawEntry, _ := json.Marshal(entry)

	if strings.Contains(strings.ToLower(entry.PersonName), "not confidently") {
		reason := entry.Reason
		if reason == "" {
			reason = entry.PersonName
		}
		return &models.DecisionMakerResult{
			CompanyName:    companyName,
			NotFoundReason: reason,
			RawText:        string(rawEntry),
		}
	}

	industry := entry.Industry
	if industry != "" && !validIndustries[industry] {
		industry = "Other"
	}

	return &models.DecisionMakerResult{
		CompanyName:   companyName,
		PersonName:    entry.PersonName,
		Title:         entry.Title,
		SourceURL:     entry.SourceURL,
		Confidence:    entry.Confidence,
		Industry:      industry,
		EmployeeCount: parseEmployeeCountValue(entry.EmployeeCount),
		RawText:       string(rawEntry),
	}
}

// extractEntries walks the parse ladder: direct parse after fence
// stripping, then the longest parseable bracketed substring, then
// fenced json blocks.
func extractEntries(raw string) []decisionMakerEntry {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		lines := strings.Split(cleaned, "\n")
		if len(lines) > 2 {
			cleaned = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	if entries := tryParseArray(cleaned); entries != nil {
		return entries
	}

	var longest []decisionMakerEntry
	for _, candidate := range arrayCandidateRe.FindAllString(raw, -1) {
		entries := tryParseArray(candidate)
		if len(entries) > len(longest) {
			longest = entries
		}
	}
	if longest != nil {
		return longest
	}

	for _, match := range fencedJSONRe.FindAllStringSubmatch(raw, -1) {
		if entries := tryParseArray(strings.TrimSpace(match[1])); entries != nil {
			return entries
		}
	}
	return nil
}

var (
	arrayCandidateRe = regexp.MustCompile(`\[[\s\S]*?\]`)
	fencedJSONRe     = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
)

var (
	sweepPersonRe     = regexp.MustCompile(`(?i:name|person|decision maker)[:\s]*([A-Z][a-z]+ [A-Z][a-z]+(?:\s[A-Z][a-z]+)?)`)
	sweepTitleRe      = regexp.MustCompile(`(?i)(?:title|role|position)[:\s]*(.+?)(?:\n|,|$)`)
	sweepSourceRe     = regexp.MustCompile(`(?i)(?:source|url|link)[:\s]*(https?://\S+)`)
	sweepConfidenceRe = regexp.MustCompile(`(?i)confidence[:\s]*(high|medium)`)
)

// regexSweep is the last rung of the parse ladder: when no JSON array
// can be recovered at all, scan the prose for a block per company and
// pull the fields out field by field.
func regexSweep(raw string, batch []*models.Company) map[string]*models.DecisionMakerResult {
	found := make(map[string]*models.DecisionMakerResult)

	for _, company := range batch {
		blockRe, err := regexp.Compile(`(?is)` + regexp.QuoteMeta(company.Name) + `[:\s\-]*(.+?)(?:\n\n|\n-|$)`)
		if err != nil {
			continue
		}
		match := blockRe.FindStringSubmatch(raw)
		if match == nil {
			continue
		}
		block := match[1]

		if strings.Contains(strings.ToLower(block), "not confidently") {
			found[company.Name] = &models.DecisionMakerResult{
				CompanyName:    company.Name,
				NotFoundReason: truncate(strings.TrimSpace(block), 200),
				RawText:        truncate(block, 500),
			}
			continue
		}

		person := firstGroup(sweepPersonRe, block)
		if person == "" {
			continue
		}
		confidence := firstGroup(sweepConfidenceRe, block)
		if confidence != "" {
			confidence = strings.ToUpper(confidence[:1]) + strings.ToLower(confidence[1:])
		}
		found[company.Name] = &models.DecisionMakerResult{
			CompanyName: company.Name,
			PersonName:  person,
			Title:       strings.TrimSpace(firstGroup(sweepTitleRe, block)),
			SourceURL:   firstGroup(sweepSourceRe, block),
			Confidence:  confidence,
			RawText:     truncate(block, 500),
		}
	}
	return found
}

func firstGroup(re *regexp.Regexp, text string) string {
	if match := re.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	return ""
}

func tryParseArray(text string) []decisionMakerEntry {
	var entries []decisionMakerEntry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil
	}
	return entries
}

// matchCompanyName maps the model's company_name back to a batch
// company: exact match first, then containment either way.
func matchCompanyName(name string, batch []*models.Company) string {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	if nameLower == "" {
		return ""
	}
	for _, company := range batch {
		if strings.ToLower(company.Name) == nameLower {
			return company.Name
		}
	}
	for _, company := range batch {
		companyLower := strings.ToLower(company.Name)
		if strings.Contains(companyLower, nameLower) || strings.Contains(nameLower, companyLower) {
			return company.Name
		}
	}
	return ""
}

func parseEmployeeCountValue(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}

	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return &asInt
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		parsed, convErr := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(asString), ",", ""))
		if convErr == nil {
			return &parsed
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
