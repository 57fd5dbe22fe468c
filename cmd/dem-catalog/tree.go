// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dem-catalog/internal/stactree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Rebuild the catalog node tree above the item documents",
	Long: `Tree scans the catalog base directory for item documents and rebuilds
every node above them: spatial-partition catalogs, release collections,
domain collections, and the root catalog. Each node is rebuilt whole from
its members; --collection restricts partition and collection rebuilds to
the named collections while upper levels still reflect full membership.

The build holds an advisory lock on the base directory. Existing node
files are only replaced with --overwrite. With --feed, every written
document is also appended to a newline-delimited JSON feed.`,
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg := catalogConfig(cmd)

	collections, _ := cmd.Flags().GetStringSlice("collection")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	feed := flagOrViper(cmd, "feed", "tree.feed_path", "")

	builder := &stactree.Builder{
		BaseDir:     cfg.BaseDir,
		BaseURL:     cfg.BaseURL,
		Overwrite:   overwrite,
		Collections: collections,
		FeedPath:    feed,
		Parallelism: cfg.Parallelism,
	}

	_, err := builder.Build(context.Background(), os.Stdout)
	return err
}

func init() {
	treeCmd.Flags().String("base-url", "", "public catalog base URL")
	treeCmd.Flags().String("s3-bucket", "", "object-storage mirror bucket")
	treeCmd.Flags().String("base-dir", "", "catalog tree directory")
	treeCmd.Flags().Int("parallelism", 0, "bound on concurrent partition builds")
	treeCmd.Flags().Bool("overwrite", false, "replace existing node files")
	treeCmd.Flags().StringSlice("collection", nil, "restrict rebuild to these collection ids (repeatable)")
	treeCmd.Flags().String("feed", "", "write touched documents as newline-delimited JSON to this file")

	rootCmd.AddCommand(treeCmd)
}
