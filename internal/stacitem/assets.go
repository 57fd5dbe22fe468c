// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stacitem

// Static asset-role tables. The mapping from role to file suffix, content
// type, roles, and unit is fixed convention, loaded once, never computed.

const (
	cogMediaType  = "image/tiff; application=geotiff; profile=cloud-optimized"
	textMediaType = "text/plain"
)

// assetSpec describes one asset role of an item.
type assetSpec struct {
	role      string
	title     string
	suffix    string
	mediaType string
	roles     []string
	unit      string

	// raster marks roles backed by a raster file with introspection
	// metadata; metadata/readme assets have none.
	raster bool

	// projOverride marks assets whose resolution can differ from the item's
	// primary raster; their proj properties supersede the item-level ones.
	projOverride bool
}

// stripAssetSpecs lists the assets of a strip segment item, in the order
// they appear in the asset block of published documents.
var stripAssetSpecs = []assetSpec{
	{
		role: "hillshade", title: "10m hillshade", suffix: "_dem_10m_shade.tif",
		mediaType: cogMediaType, roles: []string{"overview", "visual"},
		raster: true, projOverride: true,
	},
	{
		role: "hillshade_masked", title: "Masked 10m hillshade", suffix: "_dem_10m_shade_masked.tif",
		mediaType: cogMediaType, roles: []string{"overview", "visual"},
		raster: true, projOverride: true,
	},
	{
		role: "dem", title: "2m DEM", suffix: "_dem.tif",
		mediaType: cogMediaType, roles: []string{"data"}, unit: "meter",
		raster: true,
	},
	{
		role: "mask", title: "Valid data mask", suffix: "_bitmask.tif",
		mediaType: cogMediaType,
		roles:     []string{"metadata", "data-mask", "land-water", "water-mask", "cloud"},
		raster:    true,
	},
	{
		role: "matchtag", title: "Match point mask", suffix: "_matchtag.tif",
		mediaType: cogMediaType, roles: []string{"metadata", "matchtag"},
		raster: true,
	},
	{
		role: "metadata", title: "Metadata", suffix: "_mdf.txt",
		mediaType: textMediaType, roles: []string{"metadata"},
	},
	{
		role: "readme", title: "Readme", suffix: "_readme.txt",
		mediaType: textMediaType, roles: []string{"metadata"},
	},
}

// mosaicAssetSpecs lists the assets of a mosaic tile item. The datamask
// asset only exists for arcticdem and earthdem mosaics.
var mosaicAssetSpecs = []assetSpec{
	{
		role: "hillshade", title: "Hillshade", suffix: "_browse.tif",
		mediaType: cogMediaType, roles: []string{"overview", "visual"},
		raster: true, projOverride: true,
	},
	{
		role: "dem", title: "DEM", suffix: "_dem.tif",
		mediaType: cogMediaType, roles: []string{"data"}, unit: "meter",
		raster: true,
	},
	{
		role: "count", title: "Count", suffix: "_count.tif",
		mediaType: cogMediaType, roles: []string{"metadata", "count"},
		raster: true,
	},
	{
		role: "mad", title: "Median Absolute Deviation", suffix: "_mad.tif",
		mediaType: cogMediaType, roles: []string{"metadata", "mad"}, unit: "meter",
		raster: true,
	},
	{
		role: "maxdate", title: "Max date", suffix: "_maxdate.tif",
		mediaType: cogMediaType, roles: []string{"metadata", "date"},
		raster: true,
	},
	{
		role: "mindate", title: "Min date", suffix: "_mindate.tif",
		mediaType: cogMediaType, roles: []string{"metadata", "date"},
		raster: true,
	},
	{
		role: "datamask", title: "Valid data mask", suffix: "_datamask.tif",
		mediaType: cogMediaType, roles: []string{"metadata", "data-mask"},
		raster: true,
	},
	{
		role: "metadata", title: "Metadata", suffix: "_meta.txt",
		mediaType: textMediaType, roles: []string{"metadata"},
	},
}

// domainTitles maps domain ids to display titles.
var domainTitles = map[string]string{
	"arcticdem": "ArcticDEM",
	"earthdem":  "EarthDEM",
	"rema":      "REMA",
}

// DomainTitle returns the display title of a domain id.
func DomainTitle(domain string) (string, bool) {
	t, ok := domainTitles[domain]
	return t, ok
}

// mosaicDomainsWithDatamask lists the domains whose mosaics carry a
// datamask asset.
var mosaicDomainsWithDatamask = map[string]bool{
	"arcticdem": true,
	"earthdem":  true,
}
