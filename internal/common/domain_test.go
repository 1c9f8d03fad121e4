package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"full url", "https://www.acme.com/careers", "acme.com"},
		{"bare domain", "acme.com", "acme.com"},
		{"http scheme", "http://acme.com", "acme.com"},
		{"uppercase", "HTTPS://WWW.ACME.COM", "acme.com"},
		{"mixed case no scheme", "WWW.Acme.Com", "acme.com"},
		{"subdomain kept", "https://jobs.acme.com", "jobs.acme.com"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDomain(tt.input))
		})
	}
}

func TestParseEmployeeCount(t *testing.T) {
	n := ParseEmployeeCount("1,200")
	require.NotNil(t, n)
	assert.Equal(t, 1200, *n)

	n = ParseEmployeeCount(" 42 ")
	require.NotNil(t, n)
	assert.Equal(t, 42, *n)

	assert.Nil(t, ParseEmployeeCount(""))
	assert.Nil(t, ParseEmployeeCount("11-50"))
	assert.Nil(t, ParseEmployeeCount("unknown"))
}
