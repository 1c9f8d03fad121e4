// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:12:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package ats

import (
	"regexp"
	"strings"
)

var (
	tokenCleanRe    = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// GenerateTokenVariations derives candidate board tokens from a company
// name, its domain and an optional LinkedIn slug. Balanced for speed
// and accuracy: roughly 5-10 likely tokens, domain-derived first since
// those most often match.
//
// Examples:
//
//	"LlamaIndex" + "llamaindex.ai" -> ["llamaindex", "llama-index"]
//	"Fitt Insider" + "fittinsider.com" -> ["fittinsider", "fitt-insider", "fitt"]
func GenerateTokenVariations(companyName, domain, linkedinSlug string) []string {
	var candidates []string

	// From domain (highest priority - most likely to be the token)
	domainBase := strings.ToLower(strings.SplitN(domain, ".", 2)[0])
	candidates = append(candidates, domainBase, strings.ReplaceAll(domainBase, "-", ""))

	// From company name (no spaces, with hyphens)
	nameClean := strings.ToLower(tokenCleanRe.ReplaceAllString(companyName, ""))
	candidates = append(candidates,
		strings.ReplaceAll(nameClean, " ", ""),
		strings.ReplaceAll(nameClean, " ", "-"))

	// CamelCase names split on the case boundary ("LlamaIndex" -> "llama-index")
	camelSplit := strings.ToLower(camelBoundaryRe.ReplaceAllString(
		tokenCleanRe.ReplaceAllString(companyName, ""), "$1-$2"))
	candidates = append(candidates, camelSplit)

	// First word only (for multi-word companies like "Fitt Insider" -> "fitt")
	words := strings.Fields(nameClean)
	if len(words) > 0 {
		candidates = append(candidates, words[0])
	}

	// Acronyms for long names (e.g., "New York Foundation for the Arts" -> "nyffta")
	if len(words) >= 3 {
		var acronym strings.Builder
		for _, word := range words {
			acronym.WriteByte(word[0])
		}
		if acronym.Len() >= 3 {
			candidates = append(candidates, acronym.String())
		}
	}

	// LinkedIn slug often matches the ATS token
	if linkedinSlug != "" {
		candidates = append(candidates, strings.ToLower(linkedinSlug))
	}

	// Filter and dedup, preserving order
	seen := make(map[string]bool)
	var tokens []string
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if seen[candidate] || !validToken(candidate) {
			continue
		}
		seen[candidate] = true
		tokens = append(tokens, candidate)
	}
	return tokens
}

func validToken(token string) bool {
	if len(token) <= 2 || len(token) >= 50 {
		return false
	}
	if strings.ContainsAny(token, "_()&,. ") {
		return false
	}
	if strings.HasSuffix(token, "-") {
		return false
	}
	return true
}
