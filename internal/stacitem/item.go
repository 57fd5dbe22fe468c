// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stacitem derives self-describing feature documents from canonical
// records. Builds are declarative: every field is derived from the record,
// its release publication, and stored raster asset metadata. Missing asset
// metadata degrades the affected properties to null; missing identity or
// geometry fails the single item, never the batch.
package stacitem

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

const (
	stripDescription = "Digital surface models from photogrammetric elevation extraction " +
		"using the SETSM algorithm.  The DEM strips are a time-stamped product suited " +
		"to time-series analysis."
	mosaicDescription = "Digital surface model mosaic from photogrammetric elevation extraction " +
		"using the SETSM algorithm.  The mosaic tiles are a composite product using DEM " +
		"strips from varying collection times."
)

// Builder derives catalog items. Now is injectable so tests can pin the
// published timestamp.
type Builder struct {
	BaseURL  string
	S3Bucket string
	Now      func() time.Time
}

// Input is everything needed to build one item.
type Input struct {
	Record      types.CanonicalRecord
	Publication types.ReleasePublication
	Assets      map[string]types.RasterAssetInfo
}

// Build derives one catalog item. The returned document is complete and
// immutable; rebuilds replace it whole.
func (b *Builder) Build(in Input) (*types.Item, error) {
	rec := in.Record
	if rec.Deprecated {
		return nil, fmt.Errorf("identity %s is deprecated (superseded by %s)", rec.StripDEMID, rec.SupersededBy)
	}

	itemID := rec.SceneDEMID
	if itemID == "" {
		itemID = rec.StripDEMID
	}
	if itemID == "" {
		return nil, fmt.Errorf("record has no identity")
	}
	if rec.Geometry == nil {
		return nil, fmt.Errorf("record %s has no geometry", itemID)
	}

	bbox, err := GeoJSONBBox(rec.Geometry)
	if err != nil {
		return nil, fmt.Errorf("deriving bbox for %s: %w", itemID, err)
	}

	key := CollectionKey{
		Domain:     in.Publication.Domain,
		Kind:       in.Publication.Kind,
		Release:    in.Publication.ReleaseVersion,
		Resolution: rec.Resolution,
	}

	partition := rec.Geocell
	specs := stripAssetSpecs
	if rec.Class == types.ClassMosaic {
		partition = rec.Supertile
		specs = mosaicAssetSpecs
	}
	if partition == "" {
		return nil, fmt.Errorf("record %s has no spatial partition", itemID)
	}

	hrefs := HrefBuilder{
		BaseURL:   b.BaseURL,
		S3Bucket:  b.S3Bucket,
		Key:       key,
		Partition: partition,
		ItemID:    itemID,
	}

	item := &types.Item{
		Type:           "Feature",
		StacVersion:    types.StacVersion,
		StacExtensions: types.StacExtensions,
		ID:             itemID,
		BBox:           bbox,
		Collection:     key.ID(),
		Links:          b.links(rec, key, partition, hrefs),
		Assets:         b.assets(rec, specs, in.Assets, hrefs),
		Geometry:       rec.Geometry,
	}

	if rec.Class == types.ClassMosaic {
		item.Properties = b.mosaicProperties(rec, in, itemID)
	} else {
		item.Properties = b.stripProperties(rec, in, itemID)
	}
	return item, nil
}

func (b *Builder) links(rec types.CanonicalRecord, key CollectionKey, partition string, hrefs HrefBuilder) []types.Link {
	domainTitle := domainTitles[key.Domain]
	if domainTitle == "" {
		domainTitle = key.Domain
	}

	parentTitle := fmt.Sprintf("Geocell %s", partition)
	collectionTitle := fmt.Sprintf("%s %s DEM Strips, version %s", domainTitle, key.Resolution, key.Release)
	if rec.Class == types.ClassMosaic {
		parentTitle = fmt.Sprintf("Tile Catalog %s", partition)
		collectionTitle = fmt.Sprintf("%s %s DEM Mosaics, version %s", domainTitle, key.Resolution, key.Release)
	}

	// Exactly four entries, each a truncation of the item's own path.
	return []types.Link{
		{Rel: "self", Href: hrefs.ItemHref(), Type: "application/geo+json"},
		{Rel: "parent", Title: parentTitle, Href: hrefs.PartitionHref(), Type: "application/json"},
		{Rel: "collection", Title: collectionTitle, Href: hrefs.CollectionHref(), Type: "application/json"},
		{Rel: "root", Title: "PGC Data Catalog", Href: hrefs.RootHref(), Type: "application/json"},
	}
}

func (b *Builder) assets(rec types.CanonicalRecord, specs []assetSpec, infos map[string]types.RasterAssetInfo, hrefs HrefBuilder) map[string]types.Asset {
	itemGSD := 0.0
	if dem, ok := infos["dem"]; ok {
		itemGSD = dem.GSD
	}

	out := make(map[string]types.Asset, len(specs))
	for _, spec := range specs {
		if spec.role == "datamask" && !mosaicDomainsWithDatamask[rec.Domain] {
			continue
		}

		asset := types.Asset{
			Title: spec.title,
			Href:  hrefs.AssetHref(spec.suffix),
			Type:  spec.mediaType,
			Roles: spec.roles,
			Unit:  spec.unit,
			Alternate: &types.Alternate{
				S3: types.AlternateHref{Href: hrefs.AssetS3Href(spec.suffix)},
			},
		}

		if spec.raster {
			if info, ok := infos[spec.role]; ok {
				asset.Nodata = info.Nodata
				asset.DataType = info.DataType

				// Assets at a different resolution than the primary raster
				// carry proj properties superseding the item-level ones.
				if spec.projOverride && info.GSD != itemGSD {
					gsd := info.GSD
					asset.GSD = &gsd
					asset.ProjCode = info.ProjCode
					asset.ProjShape = info.ProjShape
					asset.ProjTransform = info.ProjTransform
					asset.ProjBBox = info.ProjBBox
					asset.ProjGeometry = info.ProjGeometry
					asset.ProjCentroid = info.ProjCentroid
				}
			}
		}
		out[spec.role] = asset
	}
	return out
}

func (b *Builder) stripProperties(rec types.CanonicalRecord, in Input, itemID string) map[string]any {
	start, end := rec.AcqTime1, rec.AcqTime2
	if end.Before(start) {
		start, end = end, start
	}

	props := map[string]any{
		"title":          itemID,
		"description":    stripDescription,
		"created":        iso8601(rec.CreationDate),
		"published":      iso8601(b.now()),
		"datetime":       iso8601(start),
		"start_datetime": iso8601(start),
		"end_datetime":   iso8601(end),
		"instruments":    []string{rec.Sensor1, rec.Sensor2},
		"constellation":  "maxar",
		"license":        in.Publication.LicenseClass,

		"pgc:image_ids":                    []string{rec.CatalogID1, rec.CatalogID2},
		"pgc:geocell":                      rec.Geocell,
		"pgc:is_xtrack":                    rec.IsXtrack,
		"pgc:is_lsf":                       rec.IsLSF,
		"pgc:setsm_version":                rec.SetsmVersion,
		"pgc:s2s_version":                  rec.S2SVersion,
		"pgc:rmse":                         round6(rec.RMSE),
		"pgc:stripdemid":                   rec.StripDEMID,
		"pgc:pairname":                     rec.Pairname,
		"pgc:masked_matchtag_density":      round6(rec.MaskedDensity),
		"pgc:valid_area_matchtag_density":  round6(rec.ValidDensity),
		"pgc:cloud_area_percent":           round6(rec.CloudPercent),
		"pgc:water_area_percent":           round6(rec.WaterPercent),
		"pgc:valid_area_percent":           round6(rec.ValidPercent),
		"pgc:cloud_area_sqkm":              round6(rec.CloudArea),
		"pgc:water_area_sqkm":              round6(rec.WaterArea),
		"pgc:valid_area_sqkm":              round6(rec.ValidArea),
		"pgc:avg_convergence_angle":        round6(rec.AvgConvergenceAngle),
		"pgc:avg_expected_height_accuracy": round6(rec.AvgHeightAccuracy),
		"pgc:avg_sun_elevs":                []float64{round6(rec.AvgSunElev1), round6(rec.AvgSunElev2)},
	}
	addProjProperties(props, in.Assets)
	return props
}

func (b *Builder) mosaicProperties(rec types.CanonicalRecord, in Input, itemID string) map[string]any {
	props := map[string]any{
		"title":          itemID,
		"description":    mosaicDescription,
		"created":        iso8601(rec.CreationDate),
		"published":      iso8601(b.now()),
		"datetime":       iso8601(rec.MinAcquired),
		"start_datetime": iso8601(rec.MinAcquired),
		"end_datetime":   iso8601(rec.MaxAcquired),
		"constellation":  "maxar",
		"license":        in.Publication.LicenseClass,

		"pgc:pairname_ids":    rec.PairnameIDs,
		"pgc:supertile":       rec.Supertile,
		"pgc:tile":            rec.Tile,
		"pgc:release_version": in.Publication.ReleaseVersion,
		"pgc:data_perc":       round6(rec.DataPercent),
		"pgc:num_components":  rec.NumComponents,
	}
	addProjProperties(props, in.Assets)
	return props
}

// addProjProperties fills the item-level proj block from the primary raster
// asset. A missing row resolves every field to null rather than failing.
func addProjProperties(props map[string]any, infos map[string]types.RasterAssetInfo) {
	info, ok := infos["dem"]
	if !ok {
		for _, k := range []string{"gsd", "proj:code", "proj:shape", "proj:transform",
			"proj:bbox", "proj:geometry", "proj:centroid"} {
			props[k] = nil
		}
		return
	}
	props["gsd"] = info.GSD
	props["proj:code"] = info.ProjCode
	props["proj:shape"] = info.ProjShape
	props["proj:transform"] = info.ProjTransform
	props["proj:bbox"] = info.ProjBBox
	props["proj:geometry"] = info.ProjGeometry
	props["proj:centroid"] = info.ProjCentroid
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}

// iso8601 formats a timestamp, or returns nil for the zero time so the
// field serializes as null instead of a bogus date.
func iso8601(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

// Failure records a single item that could not be built.
type Failure struct {
	ItemID string
	Err    error
}

// BatchResult summarizes a build run. Failures are per-entity; the batch
// always completes.
type BatchResult struct {
	RunID string
	Items []*types.Item
	Fails []Failure
}

// HasFailures reports whether any item failed to build.
func (r BatchResult) HasFailures() bool { return len(r.Fails) > 0 }

// BuildAll builds items concurrently with bounded parallelism. Partitions
// are independent, so no locking beyond the result slots is needed. Output
// order matches input order regardless of scheduling.
func (b *Builder) BuildAll(ctx context.Context, inputs []Input, parallelism int, w io.Writer) BatchResult {
	if parallelism <= 0 {
		parallelism = 8
	}

	items := make([]*types.Item, len(inputs))
	errs := make([]error, len(inputs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range inputs {
		i := i
		g.Go(func() error {
			item, err := b.Build(inputs[i])
			items[i], errs[i] = item, err
			return nil
		})
	}
	g.Wait()

	result := BatchResult{RunID: uuid.NewString()}
	for i := range inputs {
		if errs[i] != nil {
			id := inputs[i].Record.SceneDEMID
			if id == "" {
				id = inputs[i].Record.StripDEMID
			}
			fmt.Fprintf(w, "failed  %s: %v\n", id, errs[i])
			result.Fails = append(result.Fails, Failure{ItemID: id, Err: errs[i]})
			continue
		}
		result.Items = append(result.Items, items[i])
	}

	fmt.Fprintf(w, "\nBuild summary [%s]: %d built, %d failed (total: %d)\n",
		result.RunID, len(result.Items), len(result.Fails), len(inputs))
	return result
}
