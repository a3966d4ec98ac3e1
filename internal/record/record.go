// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record implements the bibliographic data model: single Medline
// records keyed by short field codes, and ordered collections of records
// with soft-delete bookkeeping.
package record

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Value holds one field value: a single string or an ordered list of
// strings (e.g. multiple authors).
type Value struct {
	parts []string
	list  bool
}

// String returns a scalar value as-is and a list value joined with ", ".
func (v Value) String() string {
	if v.list {
		return strings.Join(v.parts, ", ")
	}
	if len(v.parts) == 0 {
		return ""
	}
	return v.parts[0]
}

// Join returns the value parts joined with sep.
func (v Value) Join(sep string) string {
	return strings.Join(v.parts, sep)
}

// Parts returns a copy of the value parts. Scalar values have one part.
func (v Value) Parts() []string {
	return append([]string(nil), v.parts...)
}

// IsList reports whether the value is list-shaped.
func (v Value) IsList() bool { return v.list }

// Record is one bibliographic entry: an ordered mapping from Medline field
// code (e.g. "TI", "AU", "DP", "PMID") to a string or list of strings.
// Field order is preserved from construction, so text renderings are stable
// across round trips.
type Record struct {
	codes  []string
	fields map[string]Value
}

// New returns an empty record.
func New() *Record {
	return &Record{fields: make(map[string]Value)}
}

// SetString sets code to a scalar value, appending the code to the field
// order if it is new.
func (r *Record) SetString(code, value string) {
	r.set(code, Value{parts: []string{value}})
}

// SetList sets code to a list value, appending the code to the field order
// if it is new.
func (r *Record) SetList(code string, values []string) {
	r.set(code, Value{parts: append([]string(nil), values...), list: true})
}

// Add appends one part to code. A new code becomes a scalar; adding to an
// existing code promotes it to a list. Parsers use this for repeated codes.
func (r *Record) Add(code, part string) {
	v, ok := r.fields[code]
	if !ok {
		r.SetString(code, part)
		return
	}
	v.parts = append(v.parts, part)
	v.list = true
	r.fields[code] = v
}

func (r *Record) set(code string, v Value) {
	if _, ok := r.fields[code]; !ok {
		r.codes = append(r.codes, code)
	}
	r.fields[code] = v
}

// Get returns the value for code. The second return is false when the
// field is absent.
func (r *Record) Get(code string) (Value, bool) {
	v, ok := r.fields[code]
	return v, ok
}

// Codes returns the field codes in record order.
func (r *Record) Codes() []string {
	return append([]string(nil), r.codes...)
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.codes) }

// PMID returns the record's PubMed identifier. Records fetched from
// Entrez always carry one; hand-built or degraded records may not.
func (r *Record) PMID() (string, bool) {
	v, ok := r.fields["PMID"]
	if !ok || v.String() == "" {
		return "", false
	}
	return v.String(), true
}

// Year returns the publication year, parsed from the first four characters
// of the DP field. The second return is false when DP is missing or
// malformed.
func (r *Record) Year() (int, bool) {
	v, ok := r.fields["DP"]
	if !ok {
		return 0, false
	}
	dp := v.String()
	if len(dp) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(dp[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// Equal reports whether two records have the same fields, values, and
// field order.
func (r *Record) Equal(o *Record) bool {
	if o == nil || len(r.codes) != len(o.codes) {
		return false
	}
	for i, code := range r.codes {
		if o.codes[i] != code {
			return false
		}
		a, b := r.fields[code], o.fields[code]
		if a.list != b.list || len(a.parts) != len(b.parts) {
			return false
		}
		for j := range a.parts {
			if a.parts[j] != b.parts[j] {
				return false
			}
		}
	}
	return true
}

// defaultTextFields are the fields included in AsText when none are given.
var defaultTextFields = []string{"TI", "AU", "AB"}

// AsText concatenates the selected field values into one string, in record
// field order. List values are joined with ", ". Absent fields are skipped.
// With no arguments it uses Title, Authors, and Abstract.
func (r *Record) AsText(fields ...string) string {
	if len(fields) == 0 {
		fields = defaultTextFields
	}
	want := make(map[string]bool, len(fields))
	for _, f := range fields {
		want[f] = true
	}

	var parts []string
	for _, code := range r.codes {
		if want[code] {
			parts = append(parts, r.fields[code].String())
		}
	}
	return strings.Join(parts, " ")
}

// isSubstring reports whether the pattern contains only alphanumerics once
// separators (space, hyphen, underscore) are stripped. Such patterns are
// treated as literal substrings rather than regular expressions.
func isSubstring(pattern string) bool {
	stripped := strings.NewReplacer("-", "", "_", "", " ", "").Replace(pattern)
	if stripped == "" {
		return false
	}
	for _, c := range stripped {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// CompilePattern compiles a search pattern: substring-shaped input is
// quoted and matched literally, anything else compiles as a regular
// expression. Both forms match anywhere in the searched text.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if isSubstring(pattern) {
		return regexp.Compile(regexp.QuoteMeta(pattern))
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Matches reports whether the pattern matches anywhere in AsText().
func (r *Record) Matches(pattern string) (bool, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(r.AsText()), nil
}

// fieldLabels maps common Medline field codes to human-readable labels for
// display. Codes without an entry render as themselves.
var fieldLabels = map[string]string{
	"PMID": "PubMed ID",
	"TI":   "Title",
	"AB":   "Abstract",
	"AU":   "Authors",
	"FAU":  "Full Authors",
	"AD":   "Affiliation",
	"DP":   "Date of Publication",
	"TA":   "Journal Title Abbreviation",
	"JT":   "Journal Title",
	"VI":   "Volume",
	"IP":   "Issue",
	"PG":   "Pagination",
	"LA":   "Language",
	"PT":   "Publication Type",
	"MH":   "MeSH Terms",
	"SO":   "Source",
	"AID":  "Article Identifier",
	"LID":  "Location Identifier",
}

// Label returns the display label for a field code.
func Label(code string) string {
	if l, ok := fieldLabels[code]; ok {
		return l
	}
	return code
}

// DefaultDisplayFields are the fields shown by Display when none are given.
var DefaultDisplayFields = []string{"TI", "AU", "DP", "AB"}

// DefaultDisplayWidth is the wrap width used by Display when width is <= 0.
const DefaultDisplayWidth = 80

// Display writes a human-readable block for the record: a header line with
// the PMID, then each requested field label and its word-wrapped value.
// Absent fields render a "not available" placeholder.
func (r *Record) Display(w io.Writer, fields []string, width int) {
	if len(fields) == 0 {
		fields = DefaultDisplayFields
	}
	if width <= 0 {
		width = DefaultDisplayWidth
	}

	pmid, _ := r.PMID()
	fmt.Fprintf(w, "\n----- %s\n", pmid)
	for _, code := range fields {
		fmt.Fprintf(w, "\n%s:\n", Label(code))
		v, ok := r.fields[code]
		if !ok {
			fmt.Fprintf(w, "    %s not available for this record\n", Label(code))
			continue
		}
		text := v.Join(" ")
		fmt.Fprintln(w, WrapText(text, width, "    ", "    "))
	}
}

// WrapText word-wraps text to the given width, prefixing the first line
// with initialIndent and every following line with subsequentIndent.
// Indents count toward the width. Words longer than a line are kept whole.
func WrapText(text string, width int, initialIndent, subsequentIndent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return initialIndent
	}

	var b strings.Builder
	line := initialIndent + words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			b.WriteString(line)
			b.WriteByte('\n')
			line = subsequentIndent + word
			continue
		}
		line += " " + word
	}
	b.WriteString(line)
	return b.String()
}
