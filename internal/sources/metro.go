package sources

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultMetros is the search rotation when none is configured.
var DefaultMetros = []string{
	"New York, NY", "Los Angeles, CA", "Chicago, IL", "Houston, TX",
	"Phoenix, AZ", "Philadelphia, PA", "San Antonio, TX", "San Diego, CA",
	"Dallas, TX", "San Jose, CA", "Austin, TX", "Jacksonville, FL",
	"Fort Worth, TX", "Columbus, OH", "Charlotte, NC", "Indianapolis, IN",
	"San Francisco, CA", "Seattle, WA", "Denver, CO", "Washington, DC",
}

type metroState struct {
	NextIndex int `json:"next_index"`
}

// NextMetros picks the next count metros from the rotation and advances
// the persisted index, wrapping at the end of the list. A missing or
// corrupt state file restarts the rotation from zero.
func NextMetros(allMetros []string, count int, statePath string) ([]string, error) {
	if len(allMetros) == 0 {
		return nil, fmt.Errorf("metro rotation list is empty")
	}
	if count > len(allMetros) {
		count = len(allMetros)
	}

	var state metroState
	if data, err := os.ReadFile(statePath); err == nil {
		if err := json.Unmarshal(data, &state); err != nil {
			state.NextIndex = 0
		}
	}
	if state.NextIndex < 0 || state.NextIndex >= len(allMetros) {
		state.NextIndex = 0
	}

	selected := make([]string, 0, count)
	for i := 0; i < count; i++ {
		selected = append(selected, allMetros[(state.NextIndex+i)%len(allMetros)])
	}

	next := metroState{NextIndex: (state.NextIndex + count) % len(allMetros)}
	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metro state: %w", err)
	}
	if err := os.WriteFile(statePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metro state: %w", err)
	}

	return selected, nil
}
