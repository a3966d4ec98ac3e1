// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-engine/internal/record"
)

// listCodes are Medline field codes that repeat and therefore always parse
// as lists, even with a single occurrence.
var listCodes = map[string]bool{
	"AU":  true,
	"FAU": true,
	"AD":  true,
	"AID": true,
	"MH":  true,
	"OT":  true,
	"PT":  true,
	"LA":  true,
}

// rawField accumulates one field during parsing; repeated codes append parts.
type rawField struct {
	code  string
	parts []string
}

// ParseMedline parses records from Medline-format text as returned by
// EFetch with rettype=medline: "XXXX- value" lines with the code padded to
// four characters, continuation lines indented six spaces, repeated codes
// forming lists, and blank lines separating records.
func ParseMedline(r io.Reader) ([]*record.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		records []*record.Record
		fields  []*rawField
		byCode  = map[string]*rawField{}
		last    *rawField
	)

	flush := func() {
		if len(fields) == 0 {
			return
		}
		rec := record.New()
		for _, f := range fields {
			if len(f.parts) > 1 || listCodes[f.code] {
				rec.SetList(f.code, f.parts)
			} else {
				rec.SetString(f.code, f.parts[0])
			}
		}
		records = append(records, rec)
		fields = nil
		byCode = map[string]*rawField{}
		last = nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		// Continuation lines extend the last part of the current field.
		if strings.HasPrefix(line, "      ") {
			if last == nil {
				return nil, fmt.Errorf("parsing medline text: continuation line before any field: %q", line)
			}
			last.parts[len(last.parts)-1] += " " + strings.TrimSpace(line)
			continue
		}

		if len(line) < 6 || line[4:6] != "- " {
			return nil, fmt.Errorf("parsing medline text: malformed field line: %q", line)
		}
		code := strings.TrimRight(line[:4], " ")
		value := line[6:]

		if f, ok := byCode[code]; ok {
			f.parts = append(f.parts, value)
			last = f
			continue
		}
		f := &rawField{code: code, parts: []string{value}}
		fields = append(fields, f)
		byCode[code] = f
		last = f
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading medline text: %w", err)
	}
	flush()

	return records, nil
}

// filterFields returns a record holding only the allow-listed field codes,
// in original order. A nil or empty allow-list keeps all fields.
func filterFields(rec *record.Record, allowed []string) *record.Record {
	if len(allowed) == 0 {
		return rec
	}
	want := make(map[string]bool, len(allowed))
	for _, code := range allowed {
		want[code] = true
	}

	out := record.New()
	for _, code := range rec.Codes() {
		if !want[code] {
			continue
		}
		v, _ := rec.Get(code)
		if v.IsList() {
			out.SetList(code, v.Parts())
		} else {
			out.SetString(code, v.String())
		}
	}
	return out
}
