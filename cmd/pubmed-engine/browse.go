// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/record"
)

var browseCmd = &cobra.Command{
	Use:   "browse [collection.json]",
	Short: "Review records interactively and drop rejects",
	Long: `Browse loads a collection and walks through its records one at a time,
displaying the selected fields. Answer "n" to mark a record for exclusion,
"q" to stop early, anything else to keep it. Marked records are dropped and
the collection is written back.`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().String("fields", "", "comma-separated field codes to display (default TI,AU,DP,AB)")
	browseCmd.Flags().Int("width", 80, "wrap width for displayed values")
	browseCmd.Flags().String("out", "", "output file (default: overwrite the input)")

	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide a collection file to browse")
	}
	path := args[0]

	recs, err := record.Load(path)
	if err != nil {
		return err
	}

	fields := splitFields(cmd, "fields")
	width, _ := cmd.Flags().GetInt("width")

	if err := recs.Browse(os.Stdin, os.Stdout, fields, width); err != nil {
		return err
	}

	dropped := len(recs.Marked())
	recs.DropMarked()

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = path
	}
	if err := recs.Save(out); err != nil {
		return err
	}

	fmt.Printf("\ndropped %d record(s); %d remaining, saved to %s\n", dropped, recs.Len(), out)
	return nil
}

func splitFields(cmd *cobra.Command, flag string) []string {
	raw, _ := cmd.Flags().GetString(flag)
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
