// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package canonical selects one canonical record group per logical identity
// and marks superseded versions as deprecated. Resolution is a whole-pool
// set computation: each identity prefix resolves independently, so callers
// may shard by prefix hash without coordination.
package canonical

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// Resolution is the outcome of canonical version resolution.
type Resolution struct {
	// Canonical maps each winning StripDEMID to its selected-variant records.
	Canonical map[string][]types.UnifiedRecord

	// Deprecated maps each superseded StripDEMID to the StripDEMID that
	// supersedes it. Deprecation is a flag, not a deletion: deprecated
	// identities stay available for lineage audit.
	Deprecated map[string]string
}

// Records flattens the resolution into CanonicalRecord rows, winning
// identities first, then deprecated ones, each in identity order.
func (r Resolution) Records() []types.CanonicalRecord {
	ids := make([]string, 0, len(r.Canonical))
	for id := range r.Canonical {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []types.CanonicalRecord
	for _, id := range ids {
		for _, rec := range r.Canonical[id] {
			out = append(out, types.CanonicalRecord{UnifiedRecord: rec})
		}
	}

	depr := make([]string, 0, len(r.Deprecated))
	for id := range r.Deprecated {
		depr = append(depr, id)
	}
	sort.Strings(depr)
	for _, id := range depr {
		out = append(out, types.CanonicalRecord{
			UnifiedRecord: types.UnifiedRecord{SourceRecord: types.SourceRecord{StripDEMID: id}},
			Deprecated:    true,
			SupersededBy:  r.Deprecated[id],
		})
	}
	return out
}

// Resolve groups unified records by version-stripped identity prefix and
// selects the maximum version within each group. Versions compare as
// dot-delimited integer tuples, not lexicographically. At the winning
// version, the non-LSF variant is preferred; the LSF-only representation is
// canonical only when every sub-record is LSF.
//
// An identity group that is empty after deduplication simply produces no
// canonical record; that is expected for retired identities, not an error.
func Resolve(records []types.UnifiedRecord, w io.Writer) Resolution {
	res := Resolution{
		Canonical:  make(map[string][]types.UnifiedRecord),
		Deprecated: make(map[string]string),
	}

	// Group sub-records by versioned identity, and identities by prefix.
	groups := make(map[string][]types.UnifiedRecord)
	prefixes := make(map[string][]string)
	for _, rec := range records {
		id := rec.StripDEMID
		if _, ok := groups[id]; !ok {
			prefix := rec.PairResKey()
			prefixes[prefix] = append(prefixes[prefix], id)
		}
		groups[id] = append(groups[id], rec)
	}

	prefixKeys := make([]string, 0, len(prefixes))
	for p := range prefixes {
		prefixKeys = append(prefixKeys, p)
	}
	sort.Strings(prefixKeys)

	for _, prefix := range prefixKeys {
		ids := prefixes[prefix]
		sort.Strings(ids)

		stripMax := ids[0]
		maxVer := parseGroupVersion(ids[0], groups[ids[0]], w)
		for _, id := range ids[1:] {
			ver := parseGroupVersion(id, groups[id], w)
			switch CompareVersions(ver, maxVer) {
			case 1:
				stripMax, maxVer = id, ver
			case 0:
				// Full tie on the version tuple: fall back to identity
				// string ordering. Logged because silent non-determinism
				// would break tree-build idempotence.
				winner := stripMax
				if id > stripMax {
					winner = id
				}
				fmt.Fprintf(w, "warning: version tie between %s and %s, keeping %s\n",
					stripMax, id, winner)
				stripMax, maxVer = winner, ver
			}
		}

		// Every non-winning identity in the prefix group is deprecated.
		for _, id := range ids {
			if id != stripMax {
				res.Deprecated[id] = stripMax
			}
		}

		res.Canonical[stripMax] = selectVariant(groups[stripMax])
	}

	fmt.Fprintf(w, "\nResolve summary: %d canonical, %d deprecated\n",
		len(res.Canonical), len(res.Deprecated))
	return res
}

// parseGroupVersion parses the version shared by a sub-record group,
// warning when it does not parse as a dot-delimited integer tuple. An
// unparseable version never crashes resolution; it sorts lowest.
func parseGroupVersion(id string, recs []types.UnifiedRecord, w io.Writer) []int {
	version := ""
	if len(recs) > 0 {
		version = recs[0].Version
	}
	ver, ok := ParseVersion(version)
	if !ok {
		fmt.Fprintf(w, "warning: unparseable version %q for %s, treated as lowest\n", version, id)
	}
	return ver
}

// selectVariant applies the variant preference at the winning version: the
// group is represented by its LSF records only when every sub-record is LSF
// (boolean AND reduction); otherwise the non-LSF records represent it.
func selectVariant(recs []types.UnifiedRecord) []types.UnifiedRecord {
	allLSF := true
	for _, r := range recs {
		if !r.IsLSF {
			allLSF = false
			break
		}
	}
	if allLSF {
		return recs
	}

	out := make([]types.UnifiedRecord, 0, len(recs))
	for _, r := range recs {
		if !r.IsLSF {
			out = append(out, r)
		}
	}
	return out
}
