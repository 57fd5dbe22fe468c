// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

const (
	defaultStorePath = "catalog/dem-catalog.db"
	defaultBaseURL   = "https://pgc-opendata-dems.s3.us-west-2.amazonaws.com"
	defaultS3Bucket  = "pgc-opendata-dems"
	defaultBaseDir   = "catalog/tree"
)

// flagOrViper resolves a setting: an explicitly set flag wins, then the
// config file or environment, then the built-in default.
func flagOrViper(cmd *cobra.Command, flag, viperKey, fallback string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(viperKey) {
		return viper.GetString(viperKey)
	}
	v, _ := cmd.Flags().GetString(flag)
	if v != "" {
		return v
	}
	return fallback
}

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	path, _ := cmd.Root().PersistentFlags().GetString("store")
	if path == "" {
		path = viper.GetString("store.path")
	}
	if path == "" {
		path = defaultStorePath
	}
	return types.StoreConfig{Path: path}
}

func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	parallelism, _ := cmd.Flags().GetInt("parallelism")
	if parallelism == 0 {
		parallelism = viper.GetInt("catalog.parallelism")
	}
	return types.CatalogConfig{
		BaseURL:     flagOrViper(cmd, "base-url", "catalog.base_url", defaultBaseURL),
		S3Bucket:    flagOrViper(cmd, "s3-bucket", "catalog.s3_bucket", defaultS3Bucket),
		BaseDir:     flagOrViper(cmd, "base-dir", "catalog.base_dir", defaultBaseDir),
		Parallelism: parallelism,
	}
}
