// Package feeds provides the declarative feed source registry and the
// RSS fetcher behind the live retrieval layer.
package feeds

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
)

var _ driven.FeedRegistry = (*CSVRegistry)(nil)

// registryColumns is the required CSV header, in order.
var registryColumns = []string{
	"name", "url", "method", "tier", "category", "language", "description", "constraint",
}

// CSVRegistry loads feed sources from a CSV file. The file is the
// single declarative source of truth for the live layer: rows are
// returned in file order, malformed rows are skipped and reported,
// and duplicate URLs keep the first occurrence.
type CSVRegistry struct {
	path string
}

// NewCSVRegistry creates a registry backed by the CSV file at path.
func NewCSVRegistry(path string) *CSVRegistry {
	return &CSVRegistry{path: path}
}

// Load returns the valid sources plus one error per skipped row.
// Only an unreadable file fails the load.
func (r *CSVRegistry) Load() ([]domain.FeedSource, []error, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening feed registry %s: %w", r.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("feed registry %s is empty", r.path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading feed registry header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, nil, fmt.Errorf("feed registry %s: %w", r.path, err)
	}

	var sources []domain.FeedSource
	var rowErrs []error
	seen := make(map[string]bool)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("line %d: %w", line, err))
			continue
		}

		source, err := parseRow(record)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if seen[source.URL] {
			rowErrs = append(rowErrs, fmt.Errorf("line %d: duplicate url %s", line, source.URL))
			continue
		}
		seen[source.URL] = true
		sources = append(sources, source)
	}

	return sources, rowErrs, nil
}

func validateHeader(header []string) error {
	if len(header) != len(registryColumns) {
		return fmt.Errorf("expected %d columns, got %d", len(registryColumns), len(header))
	}
	for i, want := range registryColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return fmt.Errorf("column %d: expected %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}

func parseRow(record []string) (domain.FeedSource, error) {
	var source domain.FeedSource
	if len(record) != len(registryColumns) {
		return source, fmt.Errorf("expected %d fields, got %d", len(registryColumns), len(record))
	}

	tier, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return source, fmt.Errorf("tier %q is not a number", record[3])
	}

	category, err := domain.ParseFeedCategory(record[4])
	if err != nil {
		return source, err
	}

	source = domain.FeedSource{
		Name:        strings.TrimSpace(record[0]),
		URL:         strings.TrimSpace(record[1]),
		Method:      strings.TrimSpace(strings.ToLower(record[2])),
		Tier:        tier,
		Category:    category,
		Language:    strings.TrimSpace(record[5]),
		Description: strings.TrimSpace(record[6]),
		Constraint:  strings.TrimSpace(record[7]),
	}

	if err := source.Validate(); err != nil {
		return source, err
	}
	return source, nil
}
