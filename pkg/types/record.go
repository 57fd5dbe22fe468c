// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds shared record, document, and configuration types
// used across the catalog pipeline stages.
package types

import (
	"strings"
	"time"
)

// ProductClass identifies the kind of elevation product a record describes.
type ProductClass string

const (
	ClassScene  ProductClass = "scene"
	ClassStrip  ProductClass = "strip"
	ClassMosaic ProductClass = "mosaic"
)

// SourceRecord is one raw metadata record from a single source pool.
// Records are read-only inputs; the pipeline never mutates a pool.
type SourceRecord struct {
	// SceneDEMID identifies the scene or strip segment (mosaics use the tile id).
	SceneDEMID string `json:"scene_dem_id" yaml:"scene_dem_id"`

	// StripDEMID is the versioned logical identity: pairname, resolution,
	// and processing-version suffix (e.g. "..._2m_v040103").
	StripDEMID string `json:"strip_dem_id" yaml:"strip_dem_id"`

	Class      ProductClass `json:"class" yaml:"class"`
	Resolution string       `json:"resolution" yaml:"resolution"`

	// Version is the processing version as a dot-delimited integer tuple
	// (e.g. "4.1.3"). An empty or unparseable version sorts lowest.
	Version string `json:"version" yaml:"version"`

	// IsLSF marks the least-squares-filtered variant of a strip.
	IsLSF    bool `json:"is_lsf" yaml:"is_lsf"`
	IsXtrack bool `json:"is_xtrack" yaml:"is_xtrack"`

	// Location is the file path or URL the record was indexed from. May be
	// empty for pseudo records.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// IndexedAt is the indexing timestamp in RFC 3339 form. Kept as a string
	// because the duplicate tie-break compares the Location+IndexedAt
	// concatenation lexicographically.
	IndexedAt string `json:"indexed_at,omitempty" yaml:"indexed_at,omitempty"`

	// Pool and Priority are stamped by the source adapter at load time.
	Pool     string `json:"pool,omitempty" yaml:"pool,omitempty"`
	Priority int    `json:"priority,omitempty" yaml:"priority,omitempty"`

	// Acquisition and processing metadata.
	Domain       string    `json:"domain,omitempty" yaml:"domain,omitempty"`
	Pairname     string    `json:"pairname,omitempty" yaml:"pairname,omitempty"`
	Geocell      string    `json:"geocell,omitempty" yaml:"geocell,omitempty"`
	Supertile    string    `json:"supertile,omitempty" yaml:"supertile,omitempty"`
	Tile         string    `json:"tile,omitempty" yaml:"tile,omitempty"`
	Sensor1      string    `json:"sensor1,omitempty" yaml:"sensor1,omitempty"`
	Sensor2      string    `json:"sensor2,omitempty" yaml:"sensor2,omitempty"`
	CatalogID1   string    `json:"catalog_id1,omitempty" yaml:"catalog_id1,omitempty"`
	CatalogID2   string    `json:"catalog_id2,omitempty" yaml:"catalog_id2,omitempty"`
	AcqTime1     time.Time `json:"acq_time1,omitempty" yaml:"acq_time1,omitempty"`
	AcqTime2     time.Time `json:"acq_time2,omitempty" yaml:"acq_time2,omitempty"`
	MinAcquired  time.Time `json:"min_acquired,omitempty" yaml:"min_acquired,omitempty"`
	MaxAcquired  time.Time `json:"max_acquired,omitempty" yaml:"max_acquired,omitempty"`
	CreationDate time.Time `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	SetsmVersion string    `json:"setsm_version,omitempty" yaml:"setsm_version,omitempty"`
	S2SVersion   string    `json:"s2s_version,omitempty" yaml:"s2s_version,omitempty"`

	// Quality metrics.
	RMSE                float64 `json:"rmse,omitempty" yaml:"rmse,omitempty"`
	MaskedDensity       float64 `json:"masked_density,omitempty" yaml:"masked_density,omitempty"`
	ValidDensity        float64 `json:"valid_density,omitempty" yaml:"valid_density,omitempty"`
	CloudPercent        float64 `json:"cloud_percent,omitempty" yaml:"cloud_percent,omitempty"`
	WaterPercent        float64 `json:"water_percent,omitempty" yaml:"water_percent,omitempty"`
	ValidPercent        float64 `json:"valid_percent,omitempty" yaml:"valid_percent,omitempty"`
	CloudArea           float64 `json:"cloud_area,omitempty" yaml:"cloud_area,omitempty"`
	WaterArea           float64 `json:"water_area,omitempty" yaml:"water_area,omitempty"`
	ValidArea           float64 `json:"valid_area,omitempty" yaml:"valid_area,omitempty"`
	AvgConvergenceAngle float64 `json:"avg_convergence_angle,omitempty" yaml:"avg_convergence_angle,omitempty"`
	AvgHeightAccuracy   float64 `json:"avg_height_accuracy,omitempty" yaml:"avg_height_accuracy,omitempty"`
	AvgSunElev1         float64 `json:"avg_sun_elev1,omitempty" yaml:"avg_sun_elev1,omitempty"`
	AvgSunElev2         float64 `json:"avg_sun_elev2,omitempty" yaml:"avg_sun_elev2,omitempty"`

	// Mosaic-only fields.
	PairnameIDs   []string `json:"pairname_ids,omitempty" yaml:"pairname_ids,omitempty"`
	DataPercent   float64  `json:"data_percent,omitempty" yaml:"data_percent,omitempty"`
	NumComponents int      `json:"num_components,omitempty" yaml:"num_components,omitempty"`

	FileSize int64 `json:"file_size,omitempty" yaml:"file_size,omitempty"`

	// Geometry is the footprint in WGS84 lon/lat order.
	Geometry *Geometry `json:"geometry,omitempty" yaml:"geometry,omitempty"`
}

// PairResKey returns the version-stripped identity prefix (acquisition pair
// plus resolution). A trailing "_v<digits...>" token is removed; identities
// without a version token are returned unchanged.
func (r SourceRecord) PairResKey() string {
	return PairResKey(r.StripDEMID)
}

// PairResKey strips the processing-version suffix from a StripDEMID.
func PairResKey(stripDEMID string) string {
	i := strings.LastIndex(stripDEMID, "_")
	if i < 0 {
		return stripDEMID
	}
	tail := stripDEMID[i+1:]
	if len(tail) < 2 || tail[0] != 'v' {
		return stripDEMID
	}
	for _, c := range tail[1:] {
		if (c < '0' || c > '9') && c != '.' {
			return stripDEMID
		}
	}
	return stripDEMID[:i]
}

// UnifiedRecord is a SourceRecord that survived union and deduplication.
// At most one exists per (SceneDEMID, StripDEMID, IsLSF) triple.
type UnifiedRecord struct {
	SourceRecord
}

// CanonicalRecord is the UnifiedRecord chosen to represent a logical
// identity, or a superseded version retained for lineage audit.
type CanonicalRecord struct {
	UnifiedRecord

	// Deprecated marks identities superseded by a newer version. Deprecated
	// records are retained, never deleted, and excluded from publication.
	Deprecated bool `json:"deprecated" yaml:"deprecated"`

	// SupersededBy names the winning StripDEMID when Deprecated is set.
	SupersededBy string `json:"superseded_by,omitempty" yaml:"superseded_by,omitempty"`
}

// ReleasePublication marks a canonical record for public catalog exposure.
type ReleasePublication struct {
	StripDEMID     string    `json:"strip_dem_id" yaml:"strip_dem_id"`
	Domain         string    `json:"domain" yaml:"domain"`
	Kind           string    `json:"kind" yaml:"kind"`
	ReleaseVersion string    `json:"release_version" yaml:"release_version"`
	LicenseClass   string    `json:"license_class" yaml:"license_class"`
	ReleaseDate    time.Time `json:"release_date" yaml:"release_date"`
}

// RasterAssetInfo holds projection metadata for one raster asset, produced
// by an external raster-introspection collaborator. Absence of a row must
// degrade the affected item fields to null, never fail a build.
type RasterAssetInfo struct {
	Collection    string    `json:"collection" yaml:"collection"`
	ItemID        string    `json:"item_id" yaml:"item_id"`
	Role          string    `json:"role" yaml:"role"`
	Nodata        *float64  `json:"nodata" yaml:"nodata"`
	DataType      string    `json:"data_type" yaml:"data_type"`
	GSD           float64   `json:"gsd" yaml:"gsd"`
	ProjCode      string    `json:"proj_code" yaml:"proj_code"`
	ProjShape     []int     `json:"proj_shape" yaml:"proj_shape"`
	ProjTransform []float64 `json:"proj_transform" yaml:"proj_transform"`
	ProjBBox      []float64 `json:"proj_bbox" yaml:"proj_bbox"`
	ProjGeometry  *Geometry `json:"proj_geometry,omitempty" yaml:"proj_geometry,omitempty"`
	ProjCentroid  []float64 `json:"proj_centroid" yaml:"proj_centroid"`
}
