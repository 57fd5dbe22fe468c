// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dem-catalog/internal/canonical"
	"github.com/pdiddy/dem-catalog/internal/store"
	"github.com/pdiddy/dem-catalog/pkg/types"
)

var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize",
	Short: "Resolve each logical identity to its canonical version",
	Long: `Canonicalize groups the unified record set by logical identity,
compares processing versions as dot-delimited integer tuples, and marks
every superseded identity deprecated with a pointer to its successor.
Deprecated records are retained for lineage audit, never deleted.`,
	RunE: runCanonicalize,
}

func runCanonicalize(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	unified, err := s.LoadUnified(ctx)
	if err != nil {
		return err
	}

	var records []types.UnifiedRecord
	for _, recs := range unified {
		records = append(records, recs...)
	}
	if len(records) == 0 {
		return fmt.Errorf("no unified records in store: run unify first")
	}

	resolution := canonical.Resolve(records, os.Stdout)
	canonRecords := resolution.Records()

	if err := s.SaveCanonical(ctx, canonRecords); err != nil {
		return err
	}

	live := 0
	for _, rec := range canonRecords {
		if !rec.Deprecated {
			live++
		}
	}
	fmt.Printf("stored %d canonical records (%d live, %d deprecated)\n",
		len(canonRecords), live, len(canonRecords)-live)
	return nil
}

func init() {
	rootCmd.AddCommand(canonicalizeCmd)
}
