package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVAdapter_FetchCandidates(t *testing.T) {
	path := writeTempCSV(t, `Company Name,Website,Industry,Keywords,Technologies,# Employees
Acme Corp,https://www.acme.com,Manufacturing,widgets,Greenhouse,"1,200"
No Website Co,,Legal,,,
,https://orphan.com,,,,
Tiny LLC,tiny.io,,,,"not a number"
`)

	adapter := NewCSVAdapter(path, arbor.NewLogger())
	candidates, err := adapter.FetchCandidates(context.Background(), "2026-08-20")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	acme := candidates[0]
	assert.Equal(t, "Acme Corp", acme.Name)
	assert.Equal(t, "acme.com", acme.Domain)
	assert.Equal(t, "https://www.acme.com", acme.Website)
	assert.Equal(t, "Manufacturing", acme.Industry)
	assert.Equal(t, "Greenhouse", acme.Technologies)
	require.NotNil(t, acme.EmployeeCount)
	assert.Equal(t, 1200, *acme.EmployeeCount)
	assert.Equal(t, "2026-08-20", acme.SourceDate)

	tiny := candidates[1]
	assert.Equal(t, "tiny.io", tiny.Domain)
	assert.Nil(t, tiny.EmployeeCount)
}

func TestCSVAdapter_MissingNameColumn(t *testing.T) {
	path := writeTempCSV(t, "Website,Industry\nhttps://acme.com,Legal\n")

	adapter := NewCSVAdapter(path, arbor.NewLogger())
	_, err := adapter.FetchCandidates(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Company Name")
}

func TestCSVAdapter_MissingFile(t *testing.T) {
	adapter := NewCSVAdapter(filepath.Join(t.TempDir(), "absent.csv"), arbor.NewLogger())
	_, err := adapter.FetchCandidates(context.Background(), "")
	require.Error(t, err)
}

func TestCSVAdapter_RaggedRows(t *testing.T) {
	path := writeTempCSV(t, `Company Name,Website,Industry
Short Row Co,https://shortrow.com
Full Row Co,https://fullrow.com,Healthcare
`)

	adapter := NewCSVAdapter(path, arbor.NewLogger())
	candidates, err := adapter.FetchCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "", candidates[0].Industry)
	assert.Equal(t, "Healthcare", candidates[1].Industry)
}
