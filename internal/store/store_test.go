// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Path: filepath.Join(t.TempDir(), "catalog.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testItemDoc(collection, id string) *types.Item {
	self := "https://dems.example.com/arcticdem/strips-s2s041-2m/n60e010/" + id + ".json"
	return &types.Item{
		Type:        "Feature",
		StacVersion: types.StacVersion,
		ID:          id,
		Collection:  collection,
		Properties:  map[string]any{"title": id},
		Links:       []types.Link{{Rel: "self", Href: self, Type: "application/geo+json"}},
	}
}

func TestUnifiedRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	records := map[types.ProductClass][]types.UnifiedRecord{
		types.ClassStrip: {
			{SourceRecord: types.SourceRecord{SceneDEMID: "scene1", StripDEMID: "strip1", Class: types.ClassStrip, Resolution: "2m"}},
			{SourceRecord: types.SourceRecord{SceneDEMID: "scene2", StripDEMID: "strip1", Class: types.ClassStrip, Resolution: "2m", IsLSF: true}},
		},
	}
	if err := s.SaveUnified(ctx, records); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadUnified(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got[types.ClassStrip]) != 2 {
		t.Fatalf("want 2 strip records, got %d", len(got[types.ClassStrip]))
	}
	if got[types.ClassStrip][0].SceneDEMID != "scene1" {
		t.Errorf("records should load in identity order: %+v", got[types.ClassStrip][0])
	}

	// Save replaces: a second save with fewer records does not accrete.
	records[types.ClassStrip] = records[types.ClassStrip][:1]
	if err := s.SaveUnified(ctx, records); err != nil {
		t.Fatal(err)
	}
	got, err = s.LoadUnified(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got[types.ClassStrip]) != 1 {
		t.Errorf("save must replace the record set, got %d records", len(got[types.ClassStrip]))
	}
}

func TestCanonicalRoundtripAndDeprecatedFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	records := []types.CanonicalRecord{
		{UnifiedRecord: types.UnifiedRecord{SourceRecord: types.SourceRecord{StripDEMID: "strip_v2", SceneDEMID: "s1"}}},
		{
			UnifiedRecord: types.UnifiedRecord{SourceRecord: types.SourceRecord{StripDEMID: "strip_v1"}},
			Deprecated:    true,
			SupersededBy:  "strip_v2",
		},
	}
	if err := s.SaveCanonical(ctx, records); err != nil {
		t.Fatal(err)
	}

	live, err := s.LoadCanonical(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(live) != 1 || live[0].StripDEMID != "strip_v2" {
		t.Errorf("live set should hold only the winner, got %+v", live)
	}

	all, err := s.LoadCanonical(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("full set should retain the deprecated stub, got %d", len(all))
	}
	for _, rec := range all {
		if rec.StripDEMID == "strip_v1" && rec.SupersededBy != "strip_v2" {
			t.Errorf("deprecated stub lost its successor pointer: %+v", rec)
		}
	}
}

func TestPublicationsUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	pub := types.ReleasePublication{
		StripDEMID: "strip1", Domain: "arcticdem", Kind: "strips", ReleaseVersion: "s2s041",
		LicenseClass: "CC-BY-4.0",
	}
	if err := s.SavePublications(ctx, []types.ReleasePublication{pub}); err != nil {
		t.Fatal(err)
	}

	pub.ReleaseVersion = "s2s050"
	if err := s.SavePublications(ctx, []types.ReleasePublication{pub}); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadPublications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("upsert must not duplicate, got %d publications", len(got))
	}
	if got["strip1"].ReleaseVersion != "s2s050" {
		t.Errorf("upsert must replace fields, got %q", got["strip1"].ReleaseVersion)
	}
}

func TestAssetInfoRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	nodata := -9999.0
	infos := []types.RasterAssetInfo{
		{Collection: "c1", ItemID: "item1", Role: "dem", Nodata: &nodata, DataType: "float32", GSD: 2, ProjCode: "EPSG:3413"},
		{Collection: "c1", ItemID: "item1", Role: "hillshade", DataType: "uint8", GSD: 10},
	}
	if err := s.SaveAssetInfo(ctx, infos); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadAssetInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	roles := got[AssetKey{Collection: "c1", ItemID: "item1"}]
	if len(roles) != 2 {
		t.Fatalf("want 2 roles for c1/item1, got %d", len(roles))
	}
	if roles["dem"].ProjCode != "EPSG:3413" || roles["dem"].Nodata == nil || *roles["dem"].Nodata != nodata {
		t.Errorf("dem info lost fields: %+v", roles["dem"])
	}
}

func TestAssetInfoKeyedByCollection(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// The same item id published in two collections keeps separate rows.
	infos := []types.RasterAssetInfo{
		{Collection: "arcticdem-strips-s2s041-2m", ItemID: "item1", Role: "dem", GSD: 2},
		{Collection: "arcticdem-strips-s2s050-2m", ItemID: "item1", Role: "dem", GSD: 10},
	}
	if err := s.SaveAssetInfo(ctx, infos); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadAssetInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 keys, got %d", len(got))
	}
	old := got[AssetKey{Collection: "arcticdem-strips-s2s041-2m", ItemID: "item1"}]
	next := got[AssetKey{Collection: "arcticdem-strips-s2s050-2m", ItemID: "item1"}]
	if old["dem"].GSD != 2 {
		t.Errorf("s2s041 dem gsd = %v, want 2", old["dem"].GSD)
	}
	if next["dem"].GSD != 10 {
		t.Errorf("s2s050 dem gsd = %v, want 10", next["dem"].GSD)
	}
}

func TestItemsRoundtrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	items := []*types.Item{
		testItemDoc("arcticdem-strips-s2s041-2m", "itemA"),
		testItemDoc("arcticdem-strips-s2s041-2m", "itemB"),
		testItemDoc("rema-strips-s2s041-2m", "itemC"),
	}
	if err := s.SaveItems(ctx, items); err != nil {
		t.Fatal(err)
	}

	collections, err := s.Collections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(collections) != 2 {
		t.Fatalf("want 2 collections, got %v", collections)
	}

	arctic, err := s.LoadItems(ctx, "arcticdem-strips-s2s041-2m")
	if err != nil {
		t.Fatal(err)
	}
	if len(arctic) != 2 || arctic[0].ID != "itemA" {
		t.Errorf("collection load wrong: %+v", arctic)
	}

	one, err := s.LoadItem(ctx, "rema-strips-s2s041-2m", "itemC")
	if err != nil {
		t.Fatal(err)
	}
	if one.Properties["title"] != "itemC" {
		t.Errorf("item document lost properties: %+v", one.Properties)
	}

	if _, err := s.LoadItem(ctx, "rema-strips-s2s041-2m", "missing"); err == nil {
		t.Error("loading a missing item must fail")
	}
}

func TestExtractMirrorsSelfHref(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	baseDir := t.TempDir()

	if err := s.SaveItems(ctx, []*types.Item{testItemDoc("arcticdem-strips-s2s041-2m", "itemA")}); err != nil {
		t.Fatal(err)
	}

	summary, err := s.Extract(ctx, ExtractOptions{AllItems: true, BaseDir: baseDir}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Written != 1 {
		t.Fatalf("want 1 written, got %+v", summary)
	}

	path := filepath.Join(baseDir, "arcticdem", "strips-s2s041-2m", "n60e010", "itemA.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("item must be written at its self-href mirror path: %v", err)
	}

	// Rerun without overwrite skips the existing file.
	summary, err = s.Extract(ctx, ExtractOptions{AllItems: true, BaseDir: baseDir}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.Written != 0 {
		t.Errorf("rerun should skip, got %+v", summary)
	}
}

func TestExtractIDListReportsMissing(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	if err := s.SaveItems(ctx, []*types.Item{testItemDoc("coll", "itemA")}); err != nil {
		t.Fatal(err)
	}

	idList := filepath.Join(dir, "ids.txt")
	if err := os.WriteFile(idList, []byte("itemA\nitemGone\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log strings.Builder
	summary, err := s.Extract(ctx, ExtractOptions{
		Collection: "coll", TextFile: idList, BaseDir: dir, DryRun: true,
	}, &log)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Missing != 1 || summary.Written != 1 {
		t.Errorf("want 1 written 1 missing, got %+v", summary)
	}
	if !strings.Contains(log.String(), "itemGone") {
		t.Error("missing ids must be reported by name")
	}
}

func TestExtractNDJSON(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	baseDir := t.TempDir()

	items := []*types.Item{
		testItemDoc("coll", "itemA"),
		testItemDoc("coll", "itemB"),
	}
	if err := s.SaveItems(ctx, items); err != nil {
		t.Fatal(err)
	}

	summary, err := s.Extract(ctx, ExtractOptions{
		Collection: "coll", NDJSON: true, BaseDir: baseDir,
	}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Written != 2 {
		t.Fatalf("want 2 written, got %+v", summary)
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "coll.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("want 2 ndjson lines, got %d", len(lines))
	}
}

func TestExtractNothingSelected(t *testing.T) {
	s := testStore(t)
	if _, err := s.Extract(context.Background(), ExtractOptions{BaseDir: t.TempDir()}, io.Discard); err == nil {
		t.Error("extract with no selection must fail")
	}
}

func TestLoadPublicationManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	content := `publications:
  - strip_dem_id: strip1
    domain: arcticdem
    kind: strips
    release_version: s2s041
    license_class: CC-BY-4.0
  - strip_dem_id: strip2
    domain: rema
    kind: mosaics
    release_version: v2.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pubs, err := LoadPublicationManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pubs) != 2 {
		t.Fatalf("want 2 publications, got %d", len(pubs))
	}
	if pubs[0].Domain != "arcticdem" || pubs[1].ReleaseVersion != "v2.0" {
		t.Errorf("manifest fields parsed wrong: %+v", pubs)
	}
}

func TestLoadPublicationManifestRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	content := "publications:\n  - strip_dem_id: strip1\n    domain: arcticdem\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPublicationManifest(path); err == nil {
		t.Error("an entry missing required fields must fail the load")
	}
}
