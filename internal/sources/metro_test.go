package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextMetros_Rotation(t *testing.T) {
	metros := []string{"A", "B", "C", "D", "E"}
	statePath := filepath.Join(t.TempDir(), "metro_state.json")

	first, err := NextMetros(metros, 2, statePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, first)

	second, err := NextMetros(metros, 2, statePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, second)

	third, err := NextMetros(metros, 2, statePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"E", "A"}, third)

	fourth, err := NextMetros(metros, 2, statePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, fourth)
}

func TestNextMetros_CorruptStateRestarts(t *testing.T) {
	metros := []string{"A", "B", "C"}
	statePath := filepath.Join(t.TempDir(), "metro_state.json")
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0644))

	selected, err := NextMetros(metros, 2, statePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, selected)
}

func TestNextMetros_OutOfRangeIndexRestarts(t *testing.T) {
	metros := []string{"A", "B", "C"}
	statePath := filepath.Join(t.TempDir(), "metro_state.json")
	require.NoError(t, os.WriteFile(statePath, []byte(`{"next_index": 99}`), 0644))

	selected, err := NextMetros(metros, 1, statePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, selected)
}

func TestNextMetros_CountExceedsList(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "metro_state.json")
	selected, err := NextMetros([]string{"A", "B"}, 5, statePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, selected)
}

func TestNextMetros_EmptyList(t *testing.T) {
	_, err := NextMetros(nil, 2, filepath.Join(t.TempDir(), "state.json"))
	require.Error(t, err)
}
