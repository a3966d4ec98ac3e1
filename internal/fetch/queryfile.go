// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// QueryFile is the on-disk representation of a fetch run. The researcher
// can save a query to a file and re-fetch the same PMIDs later without
// repeating the search.
type QueryFile struct {
	Term    string          `yaml:"term"`
	Config  QueryFileConfig `yaml:"config"`
	Summary QuerySummary    `yaml:"summary"`
	PMIDs   []string        `yaml:"pmids,omitempty"`
}

// QueryFileConfig stores the fetch configuration that produced the run.
type QueryFileConfig struct {
	BatchSize  int      `yaml:"batch_size"`
	Fields     []string `yaml:"fields,omitempty"`
	MaxRecords int      `yaml:"max_records"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Fetched   int       `yaml:"fetched"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the term, fetch configuration, and resulting PMIDs
// to a YAML file.
func WriteQueryFile(path, term string, cfg types.FetchConfig, total int, pmids []string) error {
	qf := QueryFile{
		Term: term,
		Config: QueryFileConfig{
			BatchSize:  cfg.BatchSize,
			Fields:     cfg.Fields,
			MaxRecords: cfg.MaxRecords,
		},
		Summary: QuerySummary{
			Total:     total,
			Fetched:   len(pmids),
			Timestamp: time.Now(),
		},
		PMIDs: pmids,
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
