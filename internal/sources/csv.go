package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/models"
)

// csvColumns maps internal fields to the exported list headers.
var csvColumns = map[string]string{
	"name":          "Company Name",
	"website":       "Website",
	"industry":      "Industry",
	"keywords":      "Keywords",
	"technologies":  "Technologies",
	"employeeCount": "# Employees",
}

// CSVAdapter streams company candidates from a curated CSV export.
type CSVAdapter struct {
	path   string
	logger arbor.ILogger
}

func NewCSVAdapter(path string, logger arbor.ILogger) *CSVAdapter {
	return &CSVAdapter{path: path, logger: logger}
}

func (a *CSVAdapter) Name() string { return "csv" }

// FetchCandidates reads the whole file. Rows without a company name or
// a usable website domain are skipped, not errors: curated lists carry
// plenty of half-filled rows.
func (a *CSVAdapter) FetchCandidates(ctx context.Context, dateFilter string) ([]models.CompanyCandidate, error) {
	file, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int)
	for i, column := range header {
		index[strings.TrimSpace(column)] = i
	}
	if _, ok := index[csvColumns["name"]]; !ok {
		return nil, fmt.Errorf("input CSV has no %q column", csvColumns["name"])
	}

	sourceDate := dateFilter
	if sourceDate == "" {
		sourceDate = time.Now().Format("2006-01-02")
	}

	cell := func(row []string, field string) string {
		i, ok := index[csvColumns[field]]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var candidates []models.CompanyCandidate
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		name := cell(row, "name")
		website := cell(row, "website")
		domain := common.NormalizeDomain(website)
		if name == "" || domain == "" {
			skipped++
			continue
		}

		candidates = append(candidates, models.CompanyCandidate{
			Name:          name,
			Domain:        domain,
			Website:       website,
			Industry:      cell(row, "industry"),
			Keywords:      cell(row, "keywords"),
			Technologies:  cell(row, "technologies"),
			EmployeeCount: common.ParseEmployeeCount(cell(row, "employeeCount")),
			SourceDate:    sourceDate,
		})
	}

	a.logger.Info().
		Int("candidates", len(candidates)).
		Int("skipped", skipped).
		Str("path", a.path).
		Msg("Loaded companies from CSV")
	return candidates, nil
}
