// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dem-catalog/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Materialize stored item documents as catalog files",
	Long: `Extract writes stored item documents to files under the catalog base
directory, mirroring each item's self href. Select a whole collection, a
single item, an id list from a text file, or everything in the store.

With --ndjson each selected collection is written as one newline-delimited
JSON file instead of the per-item directory mirror. Existing files are
only replaced with --overwrite; --dry-run prints what would be written.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := catalogConfig(cmd)

	collection, _ := cmd.Flags().GetString("collection")
	itemID, _ := cmd.Flags().GetString("item")
	textFile, _ := cmd.Flags().GetString("ids")
	allItems, _ := cmd.Flags().GetBool("all")
	ndjson, _ := cmd.Flags().GetBool("ndjson")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	summary, err := s.Extract(context.Background(), store.ExtractOptions{
		Collection: collection,
		ItemID:     itemID,
		TextFile:   textFile,
		AllItems:   allItems,
		NDJSON:     ndjson,
		Overwrite:  overwrite,
		DryRun:     dryRun,
		BaseDir:    cfg.BaseDir,
	}, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Missing > 0 {
		return fmt.Errorf("%d item(s) from the id list were not in the store", summary.Missing)
	}
	return nil
}

func init() {
	extractCmd.Flags().String("collection", "", "collection id to extract")
	extractCmd.Flags().String("item", "", "single item id (requires --collection)")
	extractCmd.Flags().String("ids", "", "text file of item ids, one per line (requires --collection)")
	extractCmd.Flags().Bool("all", false, "extract every stored item")
	extractCmd.Flags().Bool("ndjson", false, "write one newline-delimited JSON file per collection")
	extractCmd.Flags().Bool("overwrite", false, "replace existing files")
	extractCmd.Flags().Bool("dry-run", false, "print what would be written without writing")
	extractCmd.Flags().String("base-dir", "", "catalog tree directory")
	extractCmd.Flags().String("base-url", "", "public catalog base URL")
	extractCmd.Flags().String("s3-bucket", "", "object-storage mirror bucket")

	rootCmd.AddCommand(extractCmd)
}
