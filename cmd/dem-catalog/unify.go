// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dem-catalog/internal/source"
	"github.com/pdiddy/dem-catalog/internal/store"
	"github.com/pdiddy/dem-catalog/internal/unify"
	"github.com/pdiddy/dem-catalog/pkg/types"
)

var unifyCmd = &cobra.Command{
	Use:   "unify",
	Short: "Union source pools into the deduplicated unified record set",
	Long: `Unify loads every configured source pool, validates and stamps each
record with its pool and priority, collapses duplicates, and overlays pools
by priority so each (scene, strip, variant) triple survives exactly once.
Records of the degenerate resolution class are excluded when the authority
pool carries the same identity.

Pools come from the config file (source.pools) or repeated --pool flags in
the form name:priority:kind:path, where kind is sqlite, ndjson, or pseudo.`,
	RunE: runUnify,
}

func runUnify(cmd *cobra.Command, args []string) error {
	poolCfgs, err := poolConfigs(cmd)
	if err != nil {
		return err
	}
	if len(poolCfgs) == 0 {
		return fmt.Errorf("no source pools configured: set source.pools or pass --pool")
	}

	pools := make([]source.Pool, 0, len(poolCfgs))
	for _, cfg := range poolCfgs {
		p, err := source.New(cfg)
		if err != nil {
			return err
		}
		pools = append(pools, p)
	}

	ctx := context.Background()
	loaded, _, err := source.LoadAll(ctx, pools, os.Stdout)
	if err != nil {
		return err
	}

	degenerate, _ := cmd.Flags().GetString("degenerate-resolution")
	authority, _ := cmd.Flags().GetString("authority-pool")
	unified, summary := unify.Run(loaded, unify.Options{
		DegenerateResolution: degenerate,
		AuthorityPool:        authority,
	}, os.Stdout)

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SaveUnified(ctx, unified); err != nil {
		return err
	}
	fmt.Printf("stored %d unified records\n", summary.Kept)
	return nil
}

// poolConfigs merges pools from the config file with --pool flag specs.
func poolConfigs(cmd *cobra.Command) ([]types.PoolConfig, error) {
	var cfgs []types.PoolConfig
	if viper.IsSet("source.pools") {
		if err := viper.UnmarshalKey("source.pools", &cfgs); err != nil {
			return nil, fmt.Errorf("parsing source.pools: %w", err)
		}
	}

	specs, _ := cmd.Flags().GetStringArray("pool")
	for _, spec := range specs {
		cfg, err := parsePoolSpec(spec)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func parsePoolSpec(spec string) (types.PoolConfig, error) {
	parts := strings.SplitN(spec, ":", 4)
	if len(parts) != 4 {
		return types.PoolConfig{}, fmt.Errorf("bad pool spec %q: want name:priority:kind:path", spec)
	}
	priority, err := strconv.Atoi(parts[1])
	if err != nil {
		return types.PoolConfig{}, fmt.Errorf("bad pool priority in %q: %w", spec, err)
	}
	return types.PoolConfig{
		Name:     parts[0],
		Priority: priority,
		Kind:     types.PoolKind(parts[2]),
		Path:     parts[3],
	}, nil
}

func init() {
	unifyCmd.Flags().StringArray("pool", nil, "source pool spec name:priority:kind:path (repeatable)")
	unifyCmd.Flags().String("degenerate-resolution", "", "resolution class excluded when the authority pool carries the identity (default 0.5m)")
	unifyCmd.Flags().String("authority-pool", "", "pool whose records supersede the degenerate class (default aux)")

	rootCmd.AddCommand(unifyCmd)
}
