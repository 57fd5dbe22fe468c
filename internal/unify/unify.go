// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package unify merges source record pools into one deduplicated pool per
// product class. Higher-priority pools win identity conflicts outright;
// duplicates within a pool collapse by a deterministic tie-break.
package unify

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/dem-catalog/internal/source"
	"github.com/pdiddy/dem-catalog/pkg/types"
)

// Options controls the degenerate-resolution exclusion pass.
type Options struct {
	// DegenerateResolution is the legacy resolution class superseded by the
	// authority pool (default "0.5m").
	DegenerateResolution string

	// AuthorityPool is the pool whose records supersede degenerate-class
	// records regardless of variant (default "aux").
	AuthorityPool string
}

func (o Options) withDefaults() Options {
	if o.DegenerateResolution == "" {
		o.DegenerateResolution = "0.5m"
	}
	if o.AuthorityPool == "" {
		o.AuthorityPool = "aux"
	}
	return o
}

// Summary reports the outcome of a unification run.
type Summary struct {
	Kept               int
	DroppedLowPriority int
	Collapsed          int
	ExcludedDegenerate int
}

// Total returns the number of input records accounted for.
func (s Summary) Total() int {
	return s.Kept + s.DroppedLowPriority + s.Collapsed + s.ExcludedDegenerate
}

// dedupeKey is the duplicate identity: at most one survivor exists per key.
type dedupeKey struct {
	sceneDEMID string
	stripDEMID string
	isLSF      bool
}

func keyOf(r types.SourceRecord) dedupeKey {
	return dedupeKey{sceneDEMID: r.SceneDEMID, stripDEMID: r.StripDEMID, isLSF: r.IsLSF}
}

// Run merges the loaded pools (ordered highest priority first) into one
// UnifiedRecord pool per product class. The result is deterministic: running
// twice on the same input produces field-identical pools.
func Run(pools []source.Loaded, opts Options, w io.Writer) (map[types.ProductClass][]types.UnifiedRecord, Summary) {
	opts = opts.withDefaults()

	var summary Summary

	// Collapse duplicate (identity, source) pairs within each pool. The
	// survivor is the record with the lexicographically smallest
	// Location+IndexedAt concatenation. This is convention, not semantics:
	// preserved exactly for reproducibility.
	collapsed := make([]source.Loaded, len(pools))
	for i, pool := range pools {
		recs := append([]types.SourceRecord(nil), pool.Records...)
		sort.SliceStable(recs, func(a, b int) bool {
			ka, kb := recs[a].Location+recs[a].IndexedAt, recs[b].Location+recs[b].IndexedAt
			if ka != kb {
				return ka < kb
			}
			// Full tie: fall back to identity ordering so reruns agree.
			return recs[a].SceneDEMID < recs[b].SceneDEMID
		})

		seen := make(map[dedupeKey]bool, len(recs))
		kept := recs[:0]
		for _, r := range recs {
			k := keyOf(r)
			if seen[k] {
				summary.Collapsed++
				continue
			}
			seen[k] = true
			kept = append(kept, r)
		}
		collapsed[i] = source.Loaded{Name: pool.Name, Priority: pool.Priority, Records: kept}
	}

	// Priority overlay: an identity represented in a higher-priority pool
	// excludes lower-priority records entirely. No field-by-field merging.
	seen := make(map[dedupeKey]bool)
	authority := make(map[string]bool)
	var union []types.SourceRecord
	for _, pool := range collapsed {
		for _, r := range pool.Records {
			if pool.Name == opts.AuthorityPool && r.Resolution == opts.DegenerateResolution {
				authority[r.StripDEMID] = true
			}
			k := keyOf(r)
			if seen[k] {
				summary.DroppedLowPriority++
				continue
			}
			seen[k] = true
			union = append(union, r)
		}
	}

	// Degenerate resolution class: the authority pool supersedes by identity
	// alone, independent of variant.
	out := make(map[types.ProductClass][]types.UnifiedRecord)
	for _, r := range union {
		if r.Resolution == opts.DegenerateResolution &&
			r.Pool != opts.AuthorityPool && authority[r.StripDEMID] {
			summary.ExcludedDegenerate++
			continue
		}
		summary.Kept++
		out[r.Class] = append(out[r.Class], types.UnifiedRecord{SourceRecord: r})
	}

	// Deterministic pool ordering for downstream consumers and reruns.
	for class := range out {
		recs := out[class]
		sort.SliceStable(recs, func(a, b int) bool {
			if recs[a].StripDEMID != recs[b].StripDEMID {
				return recs[a].StripDEMID < recs[b].StripDEMID
			}
			if recs[a].SceneDEMID != recs[b].SceneDEMID {
				return recs[a].SceneDEMID < recs[b].SceneDEMID
			}
			return !recs[a].IsLSF && recs[b].IsLSF
		})
	}

	fmt.Fprintf(w, "\nUnify summary: %d kept, %d dropped by priority, %d collapsed, %d degenerate excluded (total: %d)\n",
		summary.Kept, summary.DroppedLowPriority, summary.Collapsed, summary.ExcludedDegenerate, summary.Total())
	return out, summary
}
