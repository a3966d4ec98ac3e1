// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/archive"
	"github.com/pdiddy/pubmed-engine/internal/record"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the local record archive (store, search, export)",
	Long: `Archive maintains a local SQLite database of fetched records with
full-text search over titles and abstracts. Use subcommands to store a
collection, search the archive, or export it back to JSON.`,
}

// --- store subcommand ---

var archiveStoreCmd = &cobra.Command{
	Use:   "store [collection.json]",
	Short: "Upsert a collection into the archive",
	RunE:  runArchiveStore,
}

func runArchiveStore(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide a collection file to store")
	}

	recs, err := record.Load(args[0])
	if err != nil {
		return err
	}

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Store(context.Background(), recs, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("stored %d record(s), skipped %d\n", summary.Stored, summary.Skipped)
	return nil
}

// --- search subcommand ---

var archiveSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over archived titles and abstracts",
	RunE:  runArchiveSearch,
}

func runArchiveSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := store.Search(context.Background(), args[0], limit)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		if err := results.Save(out); err != nil {
			return err
		}
		fmt.Printf("saved %d record(s) to %s\n", results.Len(), out)
		return nil
	}

	for _, r := range results.Records() {
		r.Display(os.Stdout, nil, 0)
	}
	fmt.Println("\n" + results.Summary())
	return nil
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the archive to a JSON collection file",
	RunE:  runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	out, _ := cmd.Flags().GetString("out")
	if err := store.ExportJSON(ctx, out); err != nil {
		return err
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d record(s) to %s\n", count, out)
	return nil
}

// --- shared helpers ---

func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	dir, _ := cmd.Flags().GetString("archive-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return archive.NewStore(types.ArchiveConfig{
		Dir:        dir,
		MaxResults: maxResults,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	archiveCmd.PersistentFlags().String("archive-dir", "archive", "directory holding the archive database")
	archiveCmd.PersistentFlags().Int("max-results", 20, "default maximum search results")

	archiveSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	archiveSearchCmd.Flags().String("out", "", "save results to a collection file instead of displaying")

	archiveExportCmd.Flags().String("out", "archive.json", "output collection file")

	archiveCmd.AddCommand(archiveStoreCmd)
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}
