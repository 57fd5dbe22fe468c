// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package unify

import (
	"io"
	"reflect"
	"testing"

	"github.com/pdiddy/dem-catalog/internal/source"
	"github.com/pdiddy/dem-catalog/pkg/types"
)

func record(pool, stripID, sceneID string, isLSF bool) types.SourceRecord {
	return types.SourceRecord{
		Pool:       pool,
		StripDEMID: stripID,
		SceneDEMID: sceneID,
		IsLSF:      isLSF,
		Class:      types.ClassStrip,
		Resolution: "2m",
	}
}

func TestPriorityOverlayFirstHitWins(t *testing.T) {
	high := record("dem", "strip1", "scene1", false)
	high.Location = "/dem/strip1"
	low := record("tape", "strip1", "scene1", false)
	low.Location = "/tape/strip1"

	pools := []source.Loaded{
		{Name: "dem", Priority: 2, Records: []types.SourceRecord{high}},
		{Name: "tape", Priority: 1, Records: []types.SourceRecord{low}},
	}

	out, summary := Run(pools, Options{}, io.Discard)

	strips := out[types.ClassStrip]
	if len(strips) != 1 {
		t.Fatalf("want 1 record, got %d", len(strips))
	}
	if strips[0].Location != "/dem/strip1" {
		t.Errorf("high-priority record must win, got location %s", strips[0].Location)
	}
	if summary.DroppedLowPriority != 1 {
		t.Errorf("want 1 dropped by priority, got %d", summary.DroppedLowPriority)
	}
}

func TestNoFieldMerging(t *testing.T) {
	high := record("dem", "strip1", "scene1", false)
	high.Sensor1 = ""
	low := record("tape", "strip1", "scene1", false)
	low.Sensor1 = "WV01"

	pools := []source.Loaded{
		{Name: "dem", Priority: 2, Records: []types.SourceRecord{high}},
		{Name: "tape", Priority: 1, Records: []types.SourceRecord{low}},
	}

	out, _ := Run(pools, Options{}, io.Discard)

	// The winner is taken whole. A populated field on the loser never leaks
	// into the surviving record.
	if got := out[types.ClassStrip][0].Sensor1; got != "" {
		t.Errorf("loser field leaked into winner: Sensor1 = %q", got)
	}
}

func TestVariantsAreDistinctIdentities(t *testing.T) {
	plain := record("dem", "strip1", "scene1", false)
	lsf := record("dem", "strip1", "scene1", true)

	pools := []source.Loaded{
		{Name: "dem", Priority: 1, Records: []types.SourceRecord{plain, lsf}},
	}

	out, summary := Run(pools, Options{}, io.Discard)

	if len(out[types.ClassStrip]) != 2 {
		t.Fatalf("LSF and non-LSF are distinct identities, want 2 records, got %d", len(out[types.ClassStrip]))
	}
	if summary.Collapsed != 0 {
		t.Errorf("want 0 collapsed, got %d", summary.Collapsed)
	}
}

func TestWithinPoolCollapseTieBreak(t *testing.T) {
	a := record("dem", "strip1", "scene1", false)
	a.Location = "/z/strip1"
	a.IndexedAt = "2026-01-01T00:00:00Z"
	b := record("dem", "strip1", "scene1", false)
	b.Location = "/a/strip1"
	b.IndexedAt = "2026-06-01T00:00:00Z"

	pools := []source.Loaded{
		{Name: "dem", Priority: 1, Records: []types.SourceRecord{a, b}},
	}

	out, summary := Run(pools, Options{}, io.Discard)

	strips := out[types.ClassStrip]
	if len(strips) != 1 {
		t.Fatalf("want 1 record after collapse, got %d", len(strips))
	}
	// Survivor has the lexicographically smallest Location+IndexedAt.
	if strips[0].Location != "/a/strip1" {
		t.Errorf("wrong collapse survivor: %s", strips[0].Location)
	}
	if summary.Collapsed != 1 {
		t.Errorf("want 1 collapsed, got %d", summary.Collapsed)
	}
}

func TestDegenerateExclusionByIdentityAlone(t *testing.T) {
	legacy := record("dem", "strip05", "scene1", true)
	legacy.Resolution = "0.5m"
	auth := record("aux", "strip05", "scene1", false)
	auth.Resolution = "0.5m"
	unrelated := record("dem", "strip05b", "scene2", false)
	unrelated.Resolution = "0.5m"

	pools := []source.Loaded{
		{Name: "dem", Priority: 2, Records: []types.SourceRecord{legacy, unrelated}},
		{Name: "aux", Priority: 1, Records: []types.SourceRecord{auth}},
	}

	out, summary := Run(pools, Options{}, io.Discard)

	// The authority pool supersedes strip05 regardless of variant, so the
	// higher-priority LSF record is excluded. strip05b has no authority
	// counterpart and survives.
	strips := out[types.ClassStrip]
	ids := make(map[string]string)
	for _, r := range strips {
		ids[r.StripDEMID] = r.Pool
	}
	if ids["strip05"] != "aux" {
		t.Errorf("strip05 should survive only from the authority pool, got %q", ids["strip05"])
	}
	if ids["strip05b"] != "dem" {
		t.Errorf("strip05b should survive from its own pool, got %q", ids["strip05b"])
	}
	if summary.ExcludedDegenerate != 1 {
		t.Errorf("want 1 degenerate exclusion, got %d", summary.ExcludedDegenerate)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	recs := []types.SourceRecord{
		record("dem", "stripB", "scene2", false),
		record("dem", "stripA", "scene1", true),
		record("dem", "stripA", "scene1", false),
	}

	pools := []source.Loaded{{Name: "dem", Priority: 1, Records: recs}}

	first, _ := Run(pools, Options{}, io.Discard)
	second, _ := Run(pools, Options{}, io.Discard)

	if !reflect.DeepEqual(first, second) {
		t.Error("running twice on the same input must produce identical pools")
	}

	strips := first[types.ClassStrip]
	if strips[0].StripDEMID != "stripA" || strips[0].IsLSF {
		t.Errorf("output must sort by identity with non-LSF first, got %+v", strips[0])
	}
}

func TestSummaryTotalAccountsForEveryRecord(t *testing.T) {
	a := record("dem", "strip1", "scene1", false)
	dup := record("dem", "strip1", "scene1", false)
	low := record("tape", "strip1", "scene1", false)

	pools := []source.Loaded{
		{Name: "dem", Priority: 2, Records: []types.SourceRecord{a, dup}},
		{Name: "tape", Priority: 1, Records: []types.SourceRecord{low}},
	}

	_, summary := Run(pools, Options{}, io.Discard)
	if summary.Total() != 3 {
		t.Errorf("summary must account for all 3 input records, got %d", summary.Total())
	}
}
