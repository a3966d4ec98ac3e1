// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/pubmed-engine/internal/record"
)

// WriteBibTeXFile writes one BibTeX entry per non-excluded record to path,
// in collection order, appending ".bib" when the path has no extension.
// It returns the path actually written.
func WriteBibTeXFile(c *record.Collection, path string) (string, error) {
	return writeFormatted(c, path, ".bib", BibTeX)
}

// WriteMedlineFile writes one Medline block per non-excluded record to
// path, in collection order, appending ".nbib" when the path has no
// extension. It returns the path actually written.
func WriteMedlineFile(c *record.Collection, path string) (string, error) {
	return writeFormatted(c, path, ".nbib", Medline)
}

func writeFormatted(c *record.Collection, path, ext string, format func(*record.Record) string) (string, error) {
	if !strings.HasSuffix(path, ext) {
		path += ext
	}

	var b strings.Builder
	for i := 0; i < c.Len(); i++ {
		if c.IsMarked(i) {
			continue
		}
		b.WriteString(format(c.At(i)))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing export to %s: %w", path, err)
	}
	return path, nil
}
