// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders records to interchange formats: BibTeX for
// reference managers and Medline text (nbib) for bibliography software.
package export

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-engine/internal/record"
)

// notAvailable fills template slots for fields the record lacks.
const notAvailable = "NA"

// BibTeX renders the record as an @article BibTeX entry. Authors are
// formatted as "Surname, F." pairs joined with " and "; the citation key
// is the first author's lowercased name plus the year; ampersands in the
// journal name are escaped.
func BibTeX(r *record.Record) string {
	authors := authorList(r)

	year := notAvailable
	if y, ok := r.Year(); ok {
		year = fmt.Sprintf("%d", y)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("@article{%s,\n", citationKey(authors, year)))
	b.WriteString(fmt.Sprintf("Author = {%s},\n", bibtexAuthors(authors)))
	b.WriteString(fmt.Sprintf("Title = {%s},\n", fieldOr(r, "TI")))
	b.WriteString(fmt.Sprintf("Year = {%s},\n", year))
	b.WriteString(fmt.Sprintf("Journal = {%s},\n", strings.ReplaceAll(fieldOr(r, "JT"), "&", `\&`)))
	b.WriteString(fmt.Sprintf("Number = {%s},\n", fieldOr(r, "IP")))
	b.WriteString(fmt.Sprintf("Pages = {%s},\n", pages(r)))
	b.WriteString(fmt.Sprintf("Volume = {%s}}\n", fieldOr(r, "VI")))
	return b.String()
}

func fieldOr(r *record.Record, code string) string {
	v, ok := r.Get(code)
	if !ok {
		return notAvailable
	}
	return v.String()
}

func authorList(r *record.Record) []string {
	v, ok := r.Get("AU")
	if !ok {
		return nil
	}
	return v.Parts()
}

// citationKey builds the key from the first author's first token,
// lowercased and stripped to letters, joined to the year with a colon.
func citationKey(authors []string, year string) string {
	name := ""
	if len(authors) > 0 {
		first := strings.Fields(authors[0])
		if len(first) > 0 {
			for _, c := range strings.ToLower(first[0]) {
				if 'a' <= c && c <= 'z' {
					name += string(c)
				}
			}
		}
	}
	if name == "" {
		name = "anon"
	}
	return name + ":" + year
}

// bibtexAuthors formats Medline "Surname Initials" entries as
// "Surname, I.N." joined with " and ".
func bibtexAuthors(authors []string) string {
	if len(authors) == 0 {
		return notAvailable
	}
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		tokens := strings.Fields(a)
		if len(tokens) < 2 {
			out = append(out, a)
			continue
		}
		surname := strings.Join(tokens[:len(tokens)-1], " ")
		initials := tokens[len(tokens)-1]

		var dotted strings.Builder
		for _, c := range initials {
			dotted.WriteRune(c)
			dotted.WriteByte('.')
		}
		out = append(out, fmt.Sprintf("%s, %s", surname, dotted.String()))
	}
	return strings.Join(out, " and ")
}

// pages returns the PG field normalized: only the first entry of a
// multi-entry value is kept, and an abbreviated range upper bound is
// expanded from the lower bound ("2390-5" becomes "2390-2395").
func pages(r *record.Record) string {
	v, ok := r.Get("PG")
	if !ok {
		return notAvailable
	}
	pg := v.String()
	if i := strings.Index(pg, ";"); i >= 0 {
		pg = strings.TrimSpace(pg[:i])
	}

	from, to, found := strings.Cut(pg, "-")
	if !found || from == "" || to == "" {
		return pg
	}
	if len(to) < len(from) {
		to = from[:len(from)-len(to)] + to
	}
	return from + "-" + to
}
