// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"strings"
	"testing"
)

const sampleMedline = `PMID- 25259540
TI  - Decoding the olfactory map through targeted
      transcriptomics.
AU  - Smith AB
AU  - Jones CD
DP  - 2014 Oct 6
AB  - Olfactory receptor expression is spatially
      organized along the epithelium.
PT  - Journal Article

PMID- 26000000
TI  - Taste receptor expression.
AU  - Doe J
DP  - 2016
`

func TestParseMedline(t *testing.T) {
	recs, err := ParseMedline(strings.NewReader(sampleMedline))
	if err != nil {
		t.Fatalf("ParseMedline: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("parsed %d records, want 2", len(recs))
	}

	r := recs[0]
	if pmid, _ := r.PMID(); pmid != "25259540" {
		t.Errorf("PMID = %q", pmid)
	}

	// Continuation lines join onto the interrupted value, not the last field.
	ti, _ := r.Get("TI")
	if got := ti.String(); got != "Decoding the olfactory map through targeted transcriptomics." {
		t.Errorf("TI = %q", got)
	}

	au, _ := r.Get("AU")
	if !au.IsList() {
		t.Fatalf("repeated AU should be a list")
	}
	if got := au.String(); got != "Smith AB, Jones CD" {
		t.Errorf("AU = %q", got)
	}

	ab, _ := r.Get("AB")
	if got := ab.String(); got != "Olfactory receptor expression is spatially organized along the epithelium." {
		t.Errorf("AB = %q", got)
	}

	// Codes that repeat in the format are lists even with one occurrence.
	pt, _ := r.Get("PT")
	if !pt.IsList() {
		t.Errorf("PT should parse as a list")
	}

	r2 := recs[1]
	if pmid, _ := r2.PMID(); pmid != "26000000" {
		t.Errorf("second PMID = %q", pmid)
	}
	dp, _ := r2.Get("DP")
	if dp.IsList() {
		t.Errorf("DP should stay scalar")
	}
}

func TestParseMedlineContinuationOfRepeatedCode(t *testing.T) {
	// The second AU wraps; the continuation must extend AU, not DP.
	text := "PMID- 1\n" +
		"AU  - Smith AB\n" +
		"DP  - 2014\n" +
		"AU  - Verylongsurname\n" +
		"      Continued CD\n"

	recs, err := ParseMedline(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseMedline: %v", err)
	}
	au, _ := recs[0].Get("AU")
	parts := au.Parts()
	if len(parts) != 2 || parts[1] != "Verylongsurname Continued CD" {
		t.Errorf("AU parts = %v", parts)
	}
	dp, _ := recs[0].Get("DP")
	if got := dp.String(); got != "2014" {
		t.Errorf("DP = %q", got)
	}
}

func TestParseMedlineErrors(t *testing.T) {
	for name, text := range map[string]string{
		"continuation first": "      orphan continuation\n",
		"malformed line":     "PMID- 1\nnot a field line\n",
	} {
		if _, err := ParseMedline(strings.NewReader(text)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestParseMedlineEmptyInput(t *testing.T) {
	recs, err := ParseMedline(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatalf("ParseMedline: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("parsed %d records from blank input", len(recs))
	}
}

func TestFilterFields(t *testing.T) {
	recs, err := ParseMedline(strings.NewReader(sampleMedline))
	if err != nil {
		t.Fatalf("ParseMedline: %v", err)
	}

	filtered := filterFields(recs[0], []string{"PMID", "TI", "AU"})
	codes := filtered.Codes()
	if len(codes) != 3 || codes[0] != "PMID" || codes[1] != "TI" || codes[2] != "AU" {
		t.Errorf("Codes() = %v", codes)
	}
	if _, ok := filtered.Get("AB"); ok {
		t.Errorf("AB should have been filtered out")
	}

	// Empty allow-list keeps everything.
	if got := filterFields(recs[0], nil); got.Len() != recs[0].Len() {
		t.Errorf("nil allow-list dropped fields")
	}
}
