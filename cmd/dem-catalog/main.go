// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dem-catalog CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the dem-catalog CLI.
var rootCmd = &cobra.Command{
	Use:   "dem-catalog",
	Short: "Canonicalize DEM metadata and assemble the published catalog",
	Long: `dem-catalog unifies elevation-product metadata records from multiple
source pools, resolves each logical identity to its canonical version, and
assembles the static catalog: item documents plus the hierarchical catalog
tree above them.

Each pipeline stage is a subcommand: unify, canonicalize, items, tree, and
extract. Stages communicate through the catalog SQLite store, so each can
be run and re-run independently.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dem-catalog.yaml or ~/.config/dem-catalog/config.yaml)")
	rootCmd.PersistentFlags().String("store", "", "catalog store database (default: catalog/dem-catalog.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dem-catalog")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dem-catalog"))
		}
	}

	viper.SetEnvPrefix("DEM_CATALOG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
