// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/record"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [collection.json]",
	Short: "Resolve record DOIs to article URLs",
	Long: `Resolve scans each record's AID, SO, and LID fields for a DOI and
follows it through the DOI resolver to the publisher's article URL.
Records without a DOI are reported as such; resolver failures are
reported per record and do not stop the run.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("pmid", "", "resolve only the record with this PMID")
	resolveCmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide a collection file")
	}

	recs, err := record.Load(args[0])
	if err != nil {
		return err
	}

	only, _ := cmd.Flags().GetString("pmid")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	client := &http.Client{Timeout: timeout}
	ctx := context.Background()

	failures := 0
	for _, r := range recs.Records() {
		pmid, _ := r.PMID()
		if only != "" && pmid != only {
			continue
		}

		url, err := r.ResolveDOIURL(ctx, client)
		switch {
		case errors.Is(err, record.ErrNoDOI):
			fmt.Printf("%s: no DOI\n", pmid)
		case err != nil:
			fmt.Printf("%s: resolution failed: %v\n", pmid, err)
			failures++
		default:
			fmt.Printf("%s: %s\n", pmid, url)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d record(s) failed to resolve", failures)
	}
	return nil
}
