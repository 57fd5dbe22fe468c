// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(types.PoolConfig{Name: "x", Kind: "carrier-pigeon"})
	if err == nil {
		t.Fatal("want error for unknown pool kind")
	}
}

func TestNDJSONPoolLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pool.ndjson", strings.Join([]string{
		`{"scene_dem_id":"scene1","strip_dem_id":"strip1","class":"strip","resolution":"2m"}`,
		``,
		`{"scene_dem_id":"scene2","strip_dem_id":"strip2","class":"strip","resolution":"2m"}`,
	}, "\n"))

	p := &NDJSONPool{name: "staging", priority: 3, path: path}
	recs, err := p.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 records (blank lines skipped), got %d", len(recs))
	}
	if recs[0].SceneDEMID != "scene1" || recs[1].StripDEMID != "strip2" {
		t.Errorf("records parsed wrong: %+v", recs)
	}
}

func TestNDJSONPoolBadLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pool.ndjson",
		`{"scene_dem_id":"scene1","strip_dem_id":"strip1"}`+"\n"+`{not json`)

	p := &NDJSONPool{name: "staging", priority: 3, path: path}
	_, err := p.Load(context.Background())
	if err == nil {
		t.Fatal("want parse error with line number")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the bad line: %v", err)
	}
}

func TestPseudoPoolDerivesFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ids.txt",
		"SETSM_s2s041_WV01_20200101_x_y_2m_lsf_v040103\n\nSETSM_s2s041_WV02_20200202_x_y_50cm_v4.1\n")

	p := &PseudoPool{name: "pseudo", priority: 0, path: path}
	recs, err := p.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}

	first := recs[0]
	if !first.IsLSF {
		t.Error("lsf token must set the LSF marker")
	}
	if first.Resolution != "2m" {
		t.Errorf("resolution = %q, want 2m", first.Resolution)
	}
	if first.Version != "4.1.3" {
		t.Errorf("compact version token must expand, got %q", first.Version)
	}

	second := recs[1]
	if second.IsLSF {
		t.Error("second record must not be LSF")
	}
	if second.Version != "4.1" {
		t.Errorf("dotted version token must pass through, got %q", second.Version)
	}
}

func TestInventoryPoolRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	if err := InitInventory(path); err != nil {
		t.Fatal(err)
	}

	records := []types.SourceRecord{
		{SceneDEMID: "scene1", StripDEMID: "strip1", Class: types.ClassStrip, Resolution: "2m"},
		{SceneDEMID: "scene2", StripDEMID: "strip2", Class: types.ClassStrip, Resolution: "2m"},
	}
	ctx := context.Background()
	if err := AppendInventory(ctx, path, "dem", records); err != nil {
		t.Fatal(err)
	}

	p := &InventoryPool{name: "dem", priority: 5, path: path}
	got, err := p.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	if got[0].SceneDEMID != "scene1" || got[1].SceneDEMID != "scene2" {
		t.Errorf("records out of order or wrong: %+v", got)
	}
}

func TestLoadAllRejectsMissingIdentity(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pool.ndjson", strings.Join([]string{
		`{"scene_dem_id":"scene1","strip_dem_id":"strip1"}`,
		`{"scene_dem_id":"orphan","strip_dem_id":""}`,
	}, "\n"))

	p := &NDJSONPool{name: "staging", priority: 3, path: path}

	var log strings.Builder
	loaded, summaries, err := LoadAll(context.Background(), []Pool{p}, &log)
	if err != nil {
		t.Fatal(err)
	}
	if summaries[0].Rejected != 1 || summaries[0].Loaded != 1 {
		t.Errorf("summary = %+v, want 1 loaded 1 rejected", summaries[0])
	}
	if !strings.Contains(log.String(), "rejected") {
		t.Error("rejections must be reported, not silent")
	}
	if loaded[0].Records[0].Pool != "staging" || loaded[0].Records[0].Priority != 3 {
		t.Error("surviving records must be stamped with pool and priority")
	}
}

func TestLoadAllSortsByDescendingPriority(t *testing.T) {
	dir := t.TempDir()
	lowPath := writeFile(t, dir, "low.ndjson", `{"strip_dem_id":"strip1"}`)
	highPath := writeFile(t, dir, "high.ndjson", `{"strip_dem_id":"strip1"}`)

	low := &NDJSONPool{name: "tape", priority: 1, path: lowPath}
	high := &NDJSONPool{name: "dem", priority: 9, path: highPath}

	loaded, _, err := LoadAll(context.Background(), []Pool{low, high}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if loaded[0].Name != "dem" || loaded[1].Name != "tape" {
		t.Errorf("pools must be ordered highest priority first, got %s then %s",
			loaded[0].Name, loaded[1].Name)
	}
}
