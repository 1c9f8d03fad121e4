package ats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTokenVariations_DomainFirst(t *testing.T) {
	tokens := GenerateTokenVariations("LlamaIndex", "llamaindex.ai", "")

	assert.Equal(t, []string{"llamaindex", "llama-index"}, tokens)
}

func TestGenerateTokenVariations_MultiWordName(t *testing.T) {
	tokens := GenerateTokenVariations("Fitt Insider", "fittinsider.com", "")

	assert.Equal(t, []string{"fittinsider", "fitt-insider", "fitt"}, tokens)
}

func TestGenerateTokenVariations_HyphenatedDomain(t *testing.T) {
	tokens := GenerateTokenVariations("Acme Robotics", "acme-robotics.io", "")

	// Both the hyphenated and collapsed domain forms are candidates
	assert.Contains(t, tokens, "acme-robotics")
	assert.Contains(t, tokens, "acmerobotics")
	assert.Contains(t, tokens, "acme")
}

func TestGenerateTokenVariations_Acronym(t *testing.T) {
	tokens := GenerateTokenVariations("New York Foundation for the Arts", "nyfa.org", "")

	assert.Contains(t, tokens, "nyfa")
	assert.Contains(t, tokens, "nyffta")
}

func TestGenerateTokenVariations_LinkedInSlugIncluded(t *testing.T) {
	tokens := GenerateTokenVariations("Acme", "acme.com", "acme-corp")

	assert.Contains(t, tokens, "acme-corp")
	// Slug ranks after the derived candidates
	assert.Equal(t, "acme", tokens[0])
}

func TestGenerateTokenVariations_StripsPunctuation(t *testing.T) {
	tokens := GenerateTokenVariations("Acme, Inc.", "acme.com", "")

	assert.Equal(t, []string{"acme", "acmeinc", "acme-inc"}, tokens)
}

func TestGenerateTokenVariations_Dedup(t *testing.T) {
	tokens := GenerateTokenVariations("Stripe", "stripe.com", "stripe")

	count := 0
	for _, token := range tokens {
		if token == "stripe" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidToken(t *testing.T) {
	assert.True(t, validToken("acme"))
	assert.True(t, validToken("acme-corp"))
	assert.False(t, validToken("ab"), "too short")
	assert.False(t, validToken("acme corp"), "contains space")
	assert.False(t, validToken("acme_corp"), "contains underscore")
	assert.False(t, validToken("acme-"), "trailing hyphen")
}
