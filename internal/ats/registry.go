package ats

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Providers with a probeable public API or feed, in default priority
// order (most common first based on market share).
var ProbeProviders = []string{
	"greenhouse",
	"lever",
	"ashby",
	"workable",
	"smartrecruiters",
	"recruitee",
	"breezyhr",
	"personio",
	"jobvite",
}

// atsEndpoints maps a provider to its probe URL template.
var atsEndpoints = map[string]string{
	"greenhouse":      "https://api.greenhouse.io/v1/boards/{token}/jobs",
	"lever":           "https://api.lever.co/v0/postings/{token}",
	"ashby":           "https://api.ashbyhq.com/posting-api/job-board/{token}",
	"workable":        "https://apply.workable.com/api/v1/widget/accounts/{token}",
	"jobvite":         "https://jobs.jobvite.com/{token}/feed.xml",
	"smartrecruiters": "https://api.smartrecruiters.com/v1/companies/{token}/postings",
	"recruitee":       "https://{token}.recruitee.com/api/offers/",
	"breezyhr":        "https://{token}.breezy.hr/json",
	"personio":        "https://{token}.jobs.personio.de/",
}

// ProbeEndpoint returns the probe URL for a provider and token, or ""
// for providers with no public API.
func ProbeEndpoint(provider, token string) string {
	template, ok := atsEndpoints[provider]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(template, "{token}", token)
}

// ValidateProbeBody reports whether a 200 probe response actually
// carries job data. Hosted boards happily return empty 200s for tokens
// that exist but have no postings, and generic 200 pages for tokens
// that never existed, so a bare status check is not enough.
func ValidateProbeBody(provider string, body []byte) bool {
	switch provider {
	case "jobvite":
		lower := strings.ToLower(string(body))
		return strings.Contains(lower, "<job>") || strings.Contains(lower, "<item>")

	case "greenhouse", "ashby", "workable":
		var payload struct {
			Jobs []json.RawMessage `json:"jobs"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return false
		}
		return len(payload.Jobs) > 0

	case "lever", "breezyhr":
		var payload []json.RawMessage
		if err := json.Unmarshal(body, &payload); err != nil {
			return false
		}
		return len(payload) > 0

	case "smartrecruiters":
		var payload struct {
			Content []json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return false
		}
		return len(payload.Content) > 0

	case "recruitee":
		var payload struct {
			Offers []json.RawMessage `json:"offers"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return false
		}
		return len(payload.Offers) > 0

	case "personio":
		// HTML careers page, not JSON
		lower := bytes.ToLower(body)
		return bytes.Contains(lower, []byte("position")) || bytes.Contains(lower, []byte("job"))
	}

	return false
}

// providerPatterns pairs a provider with its detection regexes. Order
// matters: the first matching provider wins, so these are slices, not
// maps.
type providerPatterns struct {
	provider string
	patterns []*regexp.Regexp
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, pattern := range patterns {
		compiled[i] = regexp.MustCompile("(?i)" + pattern)
	}
	return compiled
}

// htmlFingerprints are signatures for embedded ATS widgets. Capture
// groups, where present, extract the board token.
var htmlFingerprints = []providerPatterns{
	{"greenhouse", compileAll(
		`src="[^"]*greenhouse\.io`,
		`href="[^"]*boards\.greenhouse\.io/([a-zA-Z0-9_-]+)`,
		`href="[^"]*job-boards\.greenhouse\.io/([a-zA-Z0-9_-]+)`,
		`data-greenhouse`,
		`grnhse_app`,
		`greenhouse-job-board`,
	)},
	{"lever", compileAll(
		`src="[^"]*lever\.co`,
		`href="[^"]*jobs\.lever\.co/([a-zA-Z0-9_-]+)`,
		`lever-jobs-iframe`,
		`data-lever`,
		`lever-job-board`,
	)},
	{"ashby", compileAll(
		`src="[^"]*ashbyhq\.com`,
		`href="[^"]*jobs\.ashbyhq\.com/([a-zA-Z0-9_-]+)`,
		`ashby-job-board`,
		`ashby_embed`,
		`data-ashby`,
	)},
	{"workable", compileAll(
		`src="[^"]*workable\.com`,
		`href="[^"]*apply\.workable\.com/([a-zA-Z0-9_-]+)`,
		`whr-embed`,
		`workable-widget`,
		`data-workable`,
	)},
	{"smartrecruiters", compileAll(
		`src="[^"]*smartrecruiters\.com`,
		`href="[^"]*careers\.smartrecruiters\.com/([a-zA-Z0-9_-]+)`,
		`href="[^"]*jobs\.smartrecruiters\.com/([a-zA-Z0-9_-]+)`,
	)},
	{"jobvite", compileAll(
		`src="[^"]*jobvite\.com`,
		`href="[^"]*jobs\.jobvite\.com/([a-zA-Z0-9_-]+)`,
		`jvi-job-list`,
	)},
	{"bamboohr", compileAll(
		`href="[^"]*([a-zA-Z0-9_-]+)\.bamboohr\.com/careers`,
		`href="[^"]*([a-zA-Z0-9_-]+)\.bamboohr\.com/jobs`,
		`bamboohr\.com/js/embed`,
	)},
	{"rippling", compileAll(
		`href="[^"]*ats\.rippling\.com/([a-zA-Z0-9_-]+)`,
	)},
	{"breezyhr", compileAll(
		`href="[^"]*([a-zA-Z0-9_-]+)\.breezy\.hr`,
	)},
	{"teamtailor", compileAll(
		`href="[^"]*career\.teamtailor\.com/([a-zA-Z0-9_-]+)`,
		`href="[^"]*([a-zA-Z0-9_-]+)\.teamtailor\.com`,
		`teamtailor-cdn\.com`,
		`Powered by Teamtailor`,
		`_ttAnalytics`,
	)},
	{"recruitee", compileAll(
		`href="[^"]*([a-zA-Z0-9_-]+)\.recruitee\.com`,
		`recruitee\.com/api`,
		`recruitee-careers`,
	)},
	{"personio", compileAll(
		`href="[^"]*([a-zA-Z0-9_-]+)\.jobs\.personio`,
		`personio-jobs`,
		`jobs\.personio\.de`,
	)},
	{"jazzhr", compileAll(
		`href="[^"]*([a-zA-Z0-9_-]+)\.applytojob\.com`,
		`app\.jazz\.co`,
		`jazzhr\.com`,
	)},
	{"icims", compileAll(
		`href="[^"]*careers-([a-zA-Z0-9_-]+)\.icims\.com`,
		`href="[^"]*([a-zA-Z0-9_-]+)\.icims\.com`,
		`icims\.com/jobs`,
	)},
	{"taleo", compileAll(
		`href="[^"]*([a-zA-Z0-9_-]+)\.taleo\.net`,
		`taleo\.net/careersection`,
	)},
	{"workday", compileAll(
		`href="[^"]*([a-zA-Z0-9_-]+)\.wd\d+\.myworkdayjobs\.com`,
		`myworkdayjobs\.com`,
		`workday\.com/.*careers`,
	)},
}

// urlPatterns identify a hosted ATS from a redirect target URL. All
// capture the board token.
var urlPatterns = []providerPatterns{
	{"greenhouse", compileAll(
		`boards\.greenhouse\.io/([a-zA-Z0-9_-]+)`,
		`job-boards\.greenhouse\.io/([a-zA-Z0-9_-]+)`,
	)},
	{"lever", compileAll(`jobs\.lever\.co/([a-zA-Z0-9_-]+)`)},
	{"ashby", compileAll(`jobs\.ashbyhq\.com/([a-zA-Z0-9_-]+)`)},
	{"workable", compileAll(`apply\.workable\.com/([a-zA-Z0-9_-]+)`)},
	{"smartrecruiters", compileAll(
		`careers\.smartrecruiters\.com/([a-zA-Z0-9_-]+)`,
		`jobs\.smartrecruiters\.com/([a-zA-Z0-9_-]+)`,
	)},
	{"jobvite", compileAll(`jobs\.jobvite\.com/([a-zA-Z0-9_-]+)`)},
	{"bamboohr", compileAll(`([a-zA-Z0-9_-]+)\.bamboohr\.com`)},
	{"breezyhr", compileAll(`([a-zA-Z0-9_-]+)\.breezy\.hr`)},
	{"teamtailor", compileAll(
		`career\.teamtailor\.com/([a-zA-Z0-9_-]+)`,
		`([a-zA-Z0-9_-]+)\.teamtailor\.com`,
	)},
	{"recruitee", compileAll(`([a-zA-Z0-9_-]+)\.recruitee\.com`)},
	{"personio", compileAll(`([a-zA-Z0-9_-]+)\.jobs\.personio`)},
	{"jazzhr", compileAll(`([a-zA-Z0-9_-]+)\.applytojob\.com`)},
	{"icims", compileAll(
		`careers-([a-zA-Z0-9_-]+)\.icims\.com`,
		`([a-zA-Z0-9_-]+)\.icims\.com`,
	)},
	{"taleo", compileAll(`([a-zA-Z0-9_-]+)\.taleo\.net`)},
	{"workday", compileAll(`([a-zA-Z0-9_-]+)\.wd\d+\.myworkdayjobs\.com`)},
	{"rippling", compileAll(`ats\.rippling\.com/([a-zA-Z0-9_-]+)`)},
}

// linkedInPatterns extract a LinkedIn company slug from homepage HTML.
var linkedInPatterns = compileAll(
	`href="[^"]*linkedin\.com/company/([a-zA-Z0-9_-]+)`,
	`linkedin\.com/company/([a-zA-Z0-9_-]+)/jobs`,
)

// atsTechnologyKeywords maps provider names to the hints that may
// appear in a company's technologies field.
var atsTechnologyKeywords = []struct {
	provider string
	keywords []string
}{
	{"greenhouse", []string{"greenhouse"}},
	{"lever", []string{"lever"}},
	{"ashby", []string{"ashby"}},
	{"workable", []string{"workable"}},
	{"jobvite", []string{"jobvite"}},
	{"smartrecruiters", []string{"smartrecruiters", "smart recruiters"}},
	{"recruitee", []string{"recruitee"}},
	{"breezyhr", []string{"breezy", "breezyhr"}},
	{"personio", []string{"personio"}},
	{"bamboohr", []string{"bamboo", "bamboohr"}},
	{"teamtailor", []string{"teamtailor"}},
	{"jazzhr", []string{"jazz", "jazzhr"}},
}

// PriorityOrder returns the provider probe order, promoting any ATS
// hinted at in the technologies field ahead of the default order.
func PriorityOrder(technologies string) []string {
	technologies = strings.ToLower(technologies)
	var priority []string
	seen := make(map[string]bool)

	for _, entry := range atsTechnologyKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(technologies, keyword) {
				if !seen[entry.provider] {
					priority = append(priority, entry.provider)
					seen[entry.provider] = true
				}
				break
			}
		}
	}

	for _, provider := range ProbeProviders {
		if !seen[provider] {
			priority = append(priority, provider)
			seen[provider] = true
		}
	}

	return priority
}
