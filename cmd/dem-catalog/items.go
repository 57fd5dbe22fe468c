// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dem-catalog/internal/stacitem"
	"github.com/pdiddy/dem-catalog/internal/store"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Build catalog item documents for published canonical records",
	Long: `Items joins live canonical records against the release publication
manifest and stored raster asset metadata, builds one item document per
published record, stores the documents, and materializes them as files
under the catalog base directory.

Records without a publication are skipped. Missing raster metadata
degrades the affected item fields to null; a record missing identity,
geometry, or spatial partition fails that item alone and the batch
continues.`,
	RunE: runItems,
}

func runItems(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()

	manifest := flagOrViper(cmd, "publications", "items.publications", "")
	if manifest != "" {
		pubs, err := store.LoadPublicationManifest(manifest)
		if err != nil {
			return err
		}
		if err := s.SavePublications(ctx, pubs); err != nil {
			return err
		}
		fmt.Printf("loaded %d publications from %s\n", len(pubs), manifest)
	}

	records, err := s.LoadCanonical(ctx, false)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no canonical records in store: run canonicalize first")
	}

	pubs, err := s.LoadPublications(ctx)
	if err != nil {
		return err
	}
	assetInfo, err := s.LoadAssetInfo(ctx)
	if err != nil {
		return err
	}

	var inputs []stacitem.Input
	unpublished := 0
	for _, rec := range records {
		pub, ok := pubs[rec.StripDEMID]
		if !ok {
			unpublished++
			continue
		}
		itemID := rec.SceneDEMID
		if itemID == "" {
			itemID = rec.StripDEMID
		}
		collection := stacitem.CollectionKey{
			Domain:     pub.Domain,
			Kind:       pub.Kind,
			Release:    pub.ReleaseVersion,
			Resolution: rec.Resolution,
		}.ID()
		inputs = append(inputs, stacitem.Input{
			Record:      rec,
			Publication: pub,
			Assets:      assetInfo[store.AssetKey{Collection: collection, ItemID: itemID}],
		})
	}
	if unpublished > 0 {
		fmt.Printf("skipped %d records without a publication\n", unpublished)
	}

	cfg := catalogConfig(cmd)
	builder := &stacitem.Builder{BaseURL: cfg.BaseURL, S3Bucket: cfg.S3Bucket}
	result := builder.BuildAll(ctx, inputs, cfg.Parallelism, os.Stdout)

	if err := s.SaveItems(ctx, result.Items); err != nil {
		return err
	}

	if write, _ := cmd.Flags().GetBool("write"); write {
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		if _, err := s.Extract(ctx, store.ExtractOptions{
			AllItems:  true,
			BaseDir:   cfg.BaseDir,
			Overwrite: overwrite,
		}, os.Stdout); err != nil {
			return err
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d item(s) failed to build", len(result.Fails))
	}
	return nil
}

func init() {
	itemsCmd.Flags().String("publications", "", "YAML manifest of release publications to load before building")
	itemsCmd.Flags().String("base-url", "", "public catalog base URL")
	itemsCmd.Flags().String("s3-bucket", "", "object-storage mirror bucket")
	itemsCmd.Flags().String("base-dir", "", "catalog tree directory")
	itemsCmd.Flags().Int("parallelism", 0, "bound on concurrent item builds")
	itemsCmd.Flags().Bool("write", true, "materialize built items under the base directory")
	itemsCmd.Flags().Bool("overwrite", false, "replace existing item files")

	rootCmd.AddCommand(itemsCmd)
}
