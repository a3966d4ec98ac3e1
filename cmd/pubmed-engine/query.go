// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-engine/internal/fetch"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "pubmed-engine/0.1"
)

var queryCmd = &cobra.Command{
	Use:   "query [search term...]",
	Short: "Search PubMed and download matching records",
	Long: `Query runs a PubMed search, reports the total hit count, pages the
matching PMIDs, and downloads the full Medline records in batches. The
records are written to a JSON collection file for later review and export.

NCBI asks for a contact email on E-utilities calls; set it with --email,
the entrez-email secret file, or PUBMED_ENGINE_EMAIL.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("out", "records.json", "output collection file")
	queryCmd.Flags().String("email", "", "requester email sent to NCBI")
	queryCmd.Flags().String("api-key", "", "NCBI API key for higher rate limits")
	queryCmd.Flags().Int("batch-size", 50, "PMIDs fetched per EFetch call")
	queryCmd.Flags().Int("max", 0, "maximum records to download (0 = all)")
	queryCmd.Flags().String("fields", "", "comma-separated field codes to keep (default all)")
	queryCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	queryCmd.Flags().Bool("count-only", false, "report the hit count without downloading")
	queryCmd.Flags().String("save-query", "", "also save the run (term, config, PMIDs) to a YAML query file")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search term")
	}
	term := strings.Join(args, " ")

	cfg := fetchConfigFromFlags(cmd)
	client := fetch.NewClient(cfg)
	ctx := context.Background()

	countOnly, _ := cmd.Flags().GetBool("count-only")
	if countOnly {
		count, err := client.Count(ctx, term)
		if err != nil {
			return err
		}
		fmt.Printf("%d records found for %q\n", count, term)
		return nil
	}

	recs, err := client.Query(ctx, term, os.Stdout)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if err := recs.Save(out); err != nil {
		return err
	}
	fmt.Printf("saved %d records to %s\n", recs.Len(), out)

	queryFile, _ := cmd.Flags().GetString("save-query")
	if queryFile != "" {
		pmids := make([]string, 0, recs.Len())
		for _, r := range recs.Records() {
			if pmid, ok := r.PMID(); ok {
				pmids = append(pmids, pmid)
			}
		}
		if err := fetch.WriteQueryFile(queryFile, term, cfg, recs.Len(), pmids); err != nil {
			return err
		}
		fmt.Printf("saved query to %s\n", queryFile)
	}

	return nil
}

func fetchConfigFromFlags(cmd *cobra.Command) types.FetchConfig {
	email, _ := cmd.Flags().GetString("email")
	apiKey, _ := cmd.Flags().GetString("api-key")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	max, _ := cmd.Flags().GetInt("max")
	fieldsFlag, _ := cmd.Flags().GetString("fields")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	var fields []string
	if fieldsFlag != "" {
		for _, f := range strings.Split(fieldsFlag, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Email:      firstNonEmpty(email, secretDefault("entrez-email", ""), viper.GetString("email")),
		APIKey:     firstNonEmpty(apiKey, secretDefault("ncbi-api-key", ""), viper.GetString("api_key")),
		BatchSize:  batchSize,
		Fields:     fields,
		MaxRecords: max,
	}
}
