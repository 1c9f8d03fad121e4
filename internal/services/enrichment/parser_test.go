package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/leadhound/internal/models"
)

func batchOf(names ...string) []*models.Company {
	companies := make([]*models.Company, len(names))
	for i, name := range names {
		companies[i] = &models.Company{Name: name}
	}
	return companies
}

func TestParseDecisionMakerResponse_CleanJSON(t *testing.T) {
	raw := `[{"company_name":"Acme","person_name":"Jane Doe","title":"CEO","source_url":"https://linkedin.com/in/janedoe","confidence":"High","employee_count":42}]`

	results := parseDecisionMakerResponse(raw, batchOf("Acme"))
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, "Acme", result.CompanyName)
	assert.Equal(t, "Jane Doe", result.PersonName)
	assert.Equal(t, "CEO", result.Title)
	assert.Equal(t, "High", result.Confidence)
	require.NotNil(t, result.EmployeeCount)
	assert.Equal(t, 42, *result.EmployeeCount)
	assert.True(t, result.Found())
}

func TestParseDecisionMakerResponse_FencedJSON(t *testing.T) {
	raw := "```json\n[{\"company_name\":\"Acme\",\"person_name\":\"Jane Doe\",\"title\":\"Founder\"}]\n```"

	results := parseDecisionMakerResponse(raw, batchOf("Acme"))
	require.Len(t, results, 1)
	assert.Equal(t, "Jane Doe", results[0].PersonName)
}

func TestParseDecisionMakerResponse_ArrayBuriedInProse(t *testing.T) {
	raw := `Here is what I found after searching:

[{"company_name":"Acme","person_name":"Jane Doe","title":"Owner"}]

Let me know if you need more detail.`

	results := parseDecisionMakerResponse(raw, batchOf("Acme"))
	require.Len(t, results, 1)
	assert.Equal(t, "Jane Doe", results[0].PersonName)
}

func TestParseDecisionMakerResponse_Sentinel(t *testing.T) {
	raw := `[{"company_name":"Acme","person_name":"Not confidently identifiable","reason":"No public team page"}]`

	results := parseDecisionMakerResponse(raw, batchOf("Acme"))
	require.Len(t, results, 1)

	assert.False(t, results[0].Found())
	assert.Equal(t, "No public team page", results[0].NotFoundReason)
	assert.Empty(t, results[0].PersonName)
}

func TestParseDecisionMakerResponse_SentinelWithoutReason(t *testing.T) {
	raw := `[{"company_name":"Acme","person_name":"Not confidently identifiable"}]`

	results := parseDecisionMakerResponse(raw, batchOf("Acme"))
	require.Len(t, results, 1)
	assert.Equal(t, models.NotIdentifiableSentinel, results[0].NotFoundReason)
}

func TestParseDecisionMakerResponse_IndustryCoercion(t *testing.T) {
	raw := `[
		{"company_name":"Acme","person_name":"Jane Doe","industry":"Healthcare"},
		{"company_name":"Globex","person_name":"John Roe","industry":"Quantum Blockchain"}
	]`

	results := parseDecisionMakerResponse(raw, batchOf("Acme", "Globex"))
	require.Len(t, results, 2)

	assert.Equal(t, "Healthcare", results[0].Industry)
	assert.Equal(t, "Other", results[1].Industry)
}

func TestParseDecisionMakerResponse_EmployeeCountVariants(t *testing.T) {
	raw := `[
		{"company_name":"Acme","person_name":"A B","employee_count":"150"},
		{"company_name":"Globex","person_name":"C D","employee_count":"11-50"},
		{"company_name":"Initech","person_name":"E F","employee_count":null}
	]`

	results := parseDecisionMakerResponse(raw, batchOf("Acme", "Globex", "Initech"))
	require.Len(t, results, 3)

	require.NotNil(t, results[0].EmployeeCount)
	assert.Equal(t, 150, *results[0].EmployeeCount)
	assert.Nil(t, results[1].EmployeeCount)
	assert.Nil(t, results[2].EmployeeCount)
}

func TestParseDecisionMakerResponse_ContainmentMatch(t *testing.T) {
	// The model drops the legal suffix; containment still matches
	raw := `[{"company_name":"Acme","person_name":"Jane Doe"}]`

	results := parseDecisionMakerResponse(raw, batchOf("Acme, Inc."))
	require.Len(t, results, 1)
	assert.Equal(t, "Acme, Inc.", results[0].CompanyName)
	assert.Equal(t, "Jane Doe", results[0].PersonName)
}

func TestParseDecisionMakerResponse_MissingCompanyGetsNotFound(t *testing.T) {
	raw := `[{"company_name":"Acme","person_name":"Jane Doe"}]`

	results := parseDecisionMakerResponse(raw, batchOf("Acme", "Globex"))
	require.Len(t, results, 2)

	assert.Equal(t, "Globex", results[1].CompanyName)
	assert.Equal(t, "Not found in Gemini response", results[1].NotFoundReason)
}

func TestParseDecisionMakerResponse_ProseSweep(t *testing.T) {
	// Broken JSON forces the field-by-field sweep
	raw := `Here is what I found, though the formatting tool failed: [{"company_name": ...

Acme: Decision maker: Jane Doe, Title: CEO, Source: https://linkedin.com/in/janedoe Confidence: high
- Globex: Not confidently identifiable, the company has no public team page.

Nothing else turned up.`

	results := parseDecisionMakerResponse(raw, batchOf("Acme", "Globex", "Initech"))
	require.Len(t, results, 3)

	assert.Equal(t, "Jane Doe", results[0].PersonName)
	assert.Equal(t, "CEO", results[0].Title)
	assert.Equal(t, "https://linkedin.com/in/janedoe", results[0].SourceURL)
	assert.Equal(t, "High", results[0].Confidence)
	assert.True(t, results[0].Found())

	assert.False(t, results[1].Found())
	assert.Contains(t, results[1].NotFoundReason, "Not confidently identifiable")

	// Companies absent from the prose still get a not-found result
	assert.Equal(t, "Initech", results[2].CompanyName)
	assert.Equal(t, "Not found in Gemini response", results[2].NotFoundReason)
}

func TestParseDecisionMakerResponse_Garbage(t *testing.T) {
	results := parseDecisionMakerResponse("I could not find anything useful.", batchOf("Acme"))
	require.Len(t, results, 1)
	assert.Equal(t, "Not found in Gemini response", results[0].NotFoundReason)
}
