// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/record"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe [collection.json...]",
	Short: "Combine collections and drop PMID duplicates",
	Long: `Dedupe loads one or more collections, concatenates them in argument
order, and removes records whose PMID was already seen. The first
occurrence wins and relative order is preserved. Records without a PMID
are always kept.`,
	RunE: runDedupe,
}

func init() {
	dedupeCmd.Flags().String("out", "deduped.json", "output collection file")
	dedupeCmd.Flags().String("find", "", "keep only records matching this substring or regexp")

	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide at least one collection file")
	}

	combined, err := record.NewCollection()
	if err != nil {
		return err
	}
	for _, path := range args {
		recs, err := record.Load(path)
		if err != nil {
			return err
		}
		combined, err = combined.Combine(recs)
		if err != nil {
			return err
		}
	}

	before := combined.Len()
	deduped := combined.Deduplicate()
	dupsRemoved := before - deduped.Len()

	pattern, _ := cmd.Flags().GetString("find")
	if pattern != "" {
		deduped, err = deduped.Find(pattern)
		if err != nil {
			return err
		}
	}

	out, _ := cmd.Flags().GetString("out")
	if err := deduped.Save(out); err != nil {
		return err
	}

	fmt.Printf("%d record(s) in, %d out (%d duplicates removed), saved to %s\n",
		before, deduped.Len(), dupsRemoved, out)
	fmt.Println(deduped.Summary())
	return nil
}
