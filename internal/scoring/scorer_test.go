package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMarketingScorer(t *testing.T) *Scorer {
	t.Helper()
	profile, err := ProfileByName("marketing")
	require.NoError(t, err)
	return NewScorer(profile, 60.0)
}

func TestScorer_SignalMatch(t *testing.T) {
	scorer := newMarketingScorer(t)

	result := scorer.Score("Marketing Manager", "")
	assert.Equal(t, 80.0, result.Score)
	assert.Equal(t, "general_marketing", result.Category)
	assert.Equal(t, []string{"marketing"}, result.MatchedSignals)
	assert.True(t, result.IsRelevant)
}

func TestScorer_ExclusionDominatesSignal(t *testing.T) {
	scorer := newMarketingScorer(t)

	// "marketing" signal present, but engineering exclusion wins
	result := scorer.Score("Marketing Data Engineer", "")
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, CategoryExcluded, result.Category)
	assert.False(t, result.IsRelevant)
	assert.Empty(t, result.MatchedSignals)
}

func TestScorer_NoSignal(t *testing.T) {
	scorer := newMarketingScorer(t)

	result := scorer.Score("Warehouse Associate", "")
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, CategoryNoSignal, result.Category)
	assert.False(t, result.IsRelevant)
}

func TestScorer_BareLeadTitleRejected(t *testing.T) {
	scorer := newMarketingScorer(t)

	// Titles with "lead" but no explicit signal must not pass
	result := scorer.Score("Team Lead", "")
	assert.Equal(t, CategoryNoSignal, result.Category)
	assert.False(t, result.IsRelevant)
}

func TestScorer_CategoryRefinement(t *testing.T) {
	scorer := newMarketingScorer(t)

	tests := []struct {
		title    string
		category string
	}{
		{"Director of Marketing", "marketing_leadership"},
		{"VP Marketing", "marketing_leadership"},
		{"Head of Marketing", "marketing_leadership"},
		{"Product Marketing Manager", "product_marketing"},
		{"Content Marketing Specialist", "content_marketing"},
		{"Brand Marketing Manager", "brand_marketing"},
		{"Demand Generation Marketing Manager", "demand_generation"},
		{"Growth Marketing Manager", "growth_marketing"},
		{"Social Media Manager", "social_media"},
		{"SEO Specialist", "seo"},
		{"Paid Media Manager", "performance_marketing"},
		{"Email Marketing Manager", "lifecycle_crm"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			result := scorer.Score(tt.title, "")
			assert.Equal(t, tt.category, result.Category)
			assert.True(t, result.IsRelevant)
		})
	}
}

func TestScorer_DescriptionBoost(t *testing.T) {
	scorer := newMarketingScorer(t)

	// Two terms present: 80 + 2*4
	result := scorer.Score("Marketing Coordinator",
		"You will run campaign planning and own our brand voice.")
	assert.Equal(t, 88.0, result.Score)

	// Boost caps at 20 no matter how many terms match
	result = scorer.Score("Marketing Coordinator",
		"marketing campaign brand content seo growth acquisition funnel conversion analytics strategy")
	assert.Equal(t, 100.0, result.Score)
}

func TestScorer_ThresholdGatesRelevance(t *testing.T) {
	profile, err := ProfileByName("marketing")
	require.NoError(t, err)
	scorer := NewScorer(profile, 90.0)

	result := scorer.Score("Marketing Manager", "")
	assert.Equal(t, 80.0, result.Score)
	assert.False(t, result.IsRelevant)
}

func TestScorer_ITProfile(t *testing.T) {
	profile, err := ProfileByName("it")
	require.NoError(t, err)
	scorer := NewScorer(profile, 60.0)

	result := scorer.Score("IT Support Specialist", "")
	assert.Equal(t, "it_support", result.Category)
	assert.True(t, result.IsRelevant)

	result = scorer.Score("Network Engineer", "")
	assert.Equal(t, "networking", result.Category)

	// Marketing titles are excluded for the IT family
	result = scorer.Score("Marketing Manager", "")
	assert.Equal(t, CategoryExcluded, result.Category)
}

func TestScorer_SalesProfile(t *testing.T) {
	profile, err := ProfileByName("sales")
	require.NoError(t, err)
	scorer := NewScorer(profile, 60.0)

	result := scorer.Score("Account Executive", "")
	assert.Equal(t, "account_executive", result.Category)
	assert.True(t, result.IsRelevant)

	result = scorer.Score("VP of Sales", "")
	assert.Equal(t, "sales_leadership", result.Category)
}

func TestProfileByName_Unknown(t *testing.T) {
	_, err := ProfileByName("legal")
	assert.Error(t, err)
}
