// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/export"
	"github.com/pdiddy/pubmed-engine/internal/record"
)

var exportCmd = &cobra.Command{
	Use:   "export [collection.json]",
	Short: "Export a collection to BibTeX or Medline text",
	Long: `Export loads a collection and writes one formatted entry per record.
BibTeX output (.bib) suits reference managers; Medline text (.nbib) suits
bibliography software that imports PubMed format.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "bibtex", "export format: bibtex or medline")
	exportCmd.Flags().String("out", "records", "output file (extension appended if missing)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide a collection file to export")
	}

	recs, err := record.Load(args[0])
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	var written string
	switch format {
	case "bibtex":
		written, err = export.WriteBibTeXFile(recs, out)
	case "medline":
		written, err = export.WriteMedlineFile(recs, out)
	default:
		return fmt.Errorf("unsupported format %q: use bibtex or medline", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("exported %d record(s) to %s\n", recs.Len(), written)
	return nil
}
