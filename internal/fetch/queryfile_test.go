// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"path/filepath"
	"testing"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	cfg := types.FetchConfig{
		BatchSize:  25,
		Fields:     []string{"PMID", "TI", "AU"},
		MaxRecords: 100,
	}
	pmids := []string{"10000", "10001", "10002"}

	if err := WriteQueryFile(path, "olfactory receptor", cfg, 42, pmids); err != nil {
		t.Fatalf("WriteQueryFile: %v", err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("ReadQueryFile: %v", err)
	}

	if qf.Term != "olfactory receptor" {
		t.Errorf("Term = %q", qf.Term)
	}
	if qf.Config.BatchSize != 25 || qf.Config.MaxRecords != 100 {
		t.Errorf("Config = %+v", qf.Config)
	}
	if len(qf.Config.Fields) != 3 || qf.Config.Fields[1] != "TI" {
		t.Errorf("Fields = %v", qf.Config.Fields)
	}
	if qf.Summary.Total != 42 || qf.Summary.Fetched != 3 {
		t.Errorf("Summary = %+v", qf.Summary)
	}
	if qf.Summary.Timestamp.IsZero() {
		t.Errorf("Timestamp should be set")
	}
	if len(qf.PMIDs) != 3 || qf.PMIDs[2] != "10002" {
		t.Errorf("PMIDs = %v", qf.PMIDs)
	}
}

func TestReadQueryFileErrors(t *testing.T) {
	if _, err := ReadQueryFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file should fail")
	}
}
