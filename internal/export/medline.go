// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-engine/internal/record"
)

// medlineWrapWidth is the wrap width for Medline field values.
const medlineWrapWidth = 70

// medlineContinuation indents wrapped continuation lines.
const medlineContinuation = "      "

// Medline renders the record in line-oriented Medline (nbib) format: a
// "PMID- <id>" header line, then one "<code padded to 4>- <value>" line
// per remaining field in record order. List values are joined with spaces
// and long values wrap with a six-space continuation indent.
func Medline(r *record.Record) string {
	var b strings.Builder

	pmid, _ := r.PMID()
	b.WriteString("\n\nPMID- " + pmid)

	for _, code := range r.Codes() {
		if code == "PMID" {
			continue
		}
		v, _ := r.Get(code)
		value := record.WrapText(v.Join(" "), medlineWrapWidth, "", medlineContinuation)
		b.WriteString(fmt.Sprintf("\n%-4s- %s", code, value))
	}
	return b.String()
}
