// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StacVersion is the schema identifier stamped on every document.
const StacVersion = "1.1.0"

// StacExtensions lists the extension schemas declared on every item.
var StacExtensions = []string{
	"https://stac-extensions.github.io/projection/v2.0.0/schema.json",
	"https://stac-extensions.github.io/alternate-assets/v1.2.0/schema.json",
}

// Geometry is a GeoJSON geometry. Coordinates follow lon/lat order; rings
// are assumed single-part polygons for bbox derivation.
type Geometry struct {
	Type        string        `json:"type" yaml:"type"`
	Coordinates [][][]float64 `json:"coordinates" yaml:"coordinates"`
}

// Link is one entry in a document's links block.
type Link struct {
	Rel   string `json:"rel"`
	Title string `json:"title,omitempty"`
	Href  string `json:"href"`
	Type  string `json:"type"`
}

// AlternateHref holds the object-storage mirror of an asset href.
type AlternateHref struct {
	Href string `json:"href"`
}

// Alternate maps alternate-location names to their hrefs.
type Alternate struct {
	S3 AlternateHref `json:"s3"`
}

// Asset is one entry in an item's asset block. Proj fields are only set
// when the asset resolution differs from the item resolution.
type Asset struct {
	Title         string     `json:"title,omitempty"`
	Href          string     `json:"href"`
	Type          string     `json:"type,omitempty"`
	Roles         []string   `json:"roles,omitempty"`
	Alternate     *Alternate `json:"alternate,omitempty"`
	Unit          string     `json:"unit,omitempty"`
	Nodata        *float64   `json:"nodata,omitempty"`
	DataType      string     `json:"data_type,omitempty"`
	GSD           *float64   `json:"gsd,omitempty"`
	ProjCode      string     `json:"proj:code,omitempty"`
	ProjShape     []int      `json:"proj:shape,omitempty"`
	ProjTransform []float64  `json:"proj:transform,omitempty"`
	ProjBBox      []float64  `json:"proj:bbox,omitempty"`
	ProjGeometry  *Geometry  `json:"proj:geometry,omitempty"`
	ProjCentroid  []float64  `json:"proj:centroid,omitempty"`
}

// Item is a self-describing feature document for one published product.
// Items are immutable once built; rebuilds replace the whole document.
type Item struct {
	Type           string           `json:"type"`
	StacVersion    string           `json:"stac_version"`
	StacExtensions []string         `json:"stac_extensions"`
	ID             string           `json:"id"`
	BBox           []float64        `json:"bbox"`
	Collection     string           `json:"collection"`
	Properties     map[string]any   `json:"properties"`
	Links          []Link           `json:"links"`
	Assets         map[string]Asset `json:"assets"`
	Geometry       *Geometry        `json:"geometry"`
}

// SelfHref returns the href of the item's self link, or "".
func (it *Item) SelfHref() string {
	for _, l := range it.Links {
		if l.Rel == "self" {
			return l.Href
		}
	}
	return ""
}

// Provider describes one organization in a collection's provider list.
type Provider struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// SpatialExtent holds the bounding boxes covered by a collection.
type SpatialExtent struct {
	BBox [][]float64 `json:"bbox"`
}

// TemporalExtent holds the time intervals covered by a collection. Open
// interval ends are null.
type TemporalExtent struct {
	Interval [][]*string `json:"interval"`
}

// Extent combines spatial and temporal coverage.
type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`
}

// Node is a catalog or collection document grouping child items and nodes.
type Node struct {
	Type        string     `json:"type"`
	StacVersion string     `json:"stac_version"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	License     string     `json:"license,omitempty"`
	Providers   []Provider `json:"providers,omitempty"`
	Extent      *Extent    `json:"extent,omitempty"`
	Links       []Link     `json:"links"`
}

// SelfHref returns the href of the node's self link, or "".
func (n *Node) SelfHref() string {
	for _, l := range n.Links {
		if l.Rel == "self" {
			return l.Href
		}
	}
	return ""
}
