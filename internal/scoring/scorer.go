package scoring

import "strings"

// Sentinel categories for rejected titles.
const (
	CategoryExcluded = "excluded"
	CategoryNoSignal = "no_signal"
)

// Result is the outcome of scoring one job title.
type Result struct {
	Score          float64  `json:"score"`
	Category       string   `json:"matched_category"`
	MatchedSignals []string `json:"matched_keywords"`
	IsRelevant     bool     `json:"is_relevant"`
}

// Scorer classifies job titles against one role-family profile using
// plain substring matching. Deterministic and auditable: no fuzzy
// matching, no model calls.
type Scorer struct {
	profile   *Profile
	threshold float64
}

// NewScorer creates a scorer for a profile with the given relevance
// threshold.
func NewScorer(profile *Profile, threshold float64) *Scorer {
	return &Scorer{
		profile:   profile,
		threshold: threshold,
	}
}

// Score classifies one title.
//
// Algorithm:
//  1. Exclusion check first - exclusions dominate signals.
//  2. The title must contain at least one required signal.
//  3. The matched signal's category is refined by title keywords.
//  4. Base score 80, plus 4 per description term (capped at 20).
func (s *Scorer) Score(title, description string) Result {
	titleLower := strings.ToLower(strings.TrimSpace(title))

	for _, exclusion := range s.profile.Exclusions {
		if strings.Contains(titleLower, exclusion) {
			return Result{Category: CategoryExcluded}
		}
	}

	var matchedSignal string
	for _, signal := range s.profile.Signals {
		if strings.Contains(titleLower, signal) {
			matchedSignal = signal
			break
		}
	}
	if matchedSignal == "" {
		return Result{Category: CategoryNoSignal}
	}

	category, ok := s.profile.SignalCategories[matchedSignal]
	if !ok {
		category = s.profile.DefaultCategory
	}

	for _, refinement := range s.profile.Refinements {
		if containsAny(titleLower, refinement.Keywords) {
			category = refinement.Category
			break
		}
	}

	score := 80.0
	if description != "" {
		descLower := strings.ToLower(description)
		matches := 0
		for _, term := range s.profile.DescriptionTerms {
			if strings.Contains(descLower, term) {
				matches++
			}
		}
		boost := float64(matches) * 4
		if boost > 20 {
			boost = 20
		}
		score += boost
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Score:          score,
		Category:       category,
		MatchedSignals: []string{matchedSignal},
		IsRelevant:     score >= s.threshold,
	}
}

// Threshold returns the configured relevance threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
