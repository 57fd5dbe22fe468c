// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source reads heterogeneous metadata record pools and exposes them
// as uniform typed records. Pools are read-only relations; adapters never
// write back to their origin.
package source

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// Pool is one source record pool. Higher Priority pools win identity
// conflicts during unification.
type Pool interface {
	Name() string
	Priority() int
	Load(ctx context.Context) ([]types.SourceRecord, error)
}

// Loaded holds the validated records of one pool.
type Loaded struct {
	Name     string
	Priority int
	Records  []types.SourceRecord
}

// LoadSummary reports per-pool load counts. Records missing a logical
// identity are rejected and counted, never silently dropped into the pool.
type LoadSummary struct {
	Pool     string
	Loaded   int
	Rejected int
}

// New constructs the adapter for one pool configuration.
func New(cfg types.PoolConfig) (Pool, error) {
	switch cfg.Kind {
	case types.PoolSQLite:
		return &InventoryPool{name: cfg.Name, priority: cfg.Priority, path: cfg.Path}, nil
	case types.PoolNDJSON:
		return &NDJSONPool{name: cfg.Name, priority: cfg.Priority, path: cfg.Path}, nil
	case types.PoolPseudo:
		return &PseudoPool{name: cfg.Name, priority: cfg.Priority, path: cfg.Path}, nil
	default:
		return nil, fmt.Errorf("unknown pool kind %q for pool %q", cfg.Kind, cfg.Name)
	}
}

// LoadAll loads every pool, validates records, and returns the pools sorted
// by descending priority. Individual record rejections are reported in the
// summaries; a pool-level read error fails the call.
func LoadAll(ctx context.Context, pools []Pool, w io.Writer) ([]Loaded, []LoadSummary, error) {
	loaded := make([]Loaded, 0, len(pools))
	summaries := make([]LoadSummary, 0, len(pools))

	for _, p := range pools {
		recs, err := p.Load(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("loading pool %s: %w", p.Name(), err)
		}

		sum := LoadSummary{Pool: p.Name()}
		kept := make([]types.SourceRecord, 0, len(recs))
		for _, r := range recs {
			if r.StripDEMID == "" {
				fmt.Fprintf(w, "rejected %s record without logical identity (scene=%q location=%q)\n",
					p.Name(), r.SceneDEMID, r.Location)
				sum.Rejected++
				continue
			}
			r.Pool = p.Name()
			r.Priority = p.Priority()
			kept = append(kept, r)
		}
		sum.Loaded = len(kept)

		loaded = append(loaded, Loaded{Name: p.Name(), Priority: p.Priority(), Records: kept})
		summaries = append(summaries, sum)
		fmt.Fprintf(w, "loaded  %s: %d records, %d rejected\n", p.Name(), sum.Loaded, sum.Rejected)
	}

	sort.SliceStable(loaded, func(i, j int) bool { return loaded[i].Priority > loaded[j].Priority })
	return loaded, summaries, nil
}
