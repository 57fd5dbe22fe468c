// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stactree

import (
	"fmt"
	"strings"

	"github.com/pdiddy/dem-catalog/internal/stacitem"
	"github.com/pdiddy/dem-catalog/pkg/types"
)

var providers = []types.Provider{
	{
		Name:  "Maxar",
		Roles: []string{"producer"},
		URL:   "https://www.maxar.com",
	},
	{
		Name:        "Polar Geospatial Center",
		Description: "The PGC provides geospatial support, mapping, and GIS/remote sensing solutions to researchers and logistics groups in the polar science community.",
		Roles:       []string{"processor", "host"},
		URL:         "https://www.pgc.umn.edu",
	},
}

// parseCollSeg splits a collection path segment "kind-release-resolution"
// on its first and last dash, so releases containing dashes survive.
func parseCollSeg(seg string) (kind, release, resolution string) {
	first := strings.Index(seg, "-")
	last := strings.LastIndex(seg, "-")
	if first < 0 || first == last {
		return seg, "", ""
	}
	return seg[:first], seg[first+1 : last], seg[last+1:]
}

func domainTitle(domain string) string {
	if t, ok := stacitem.DomainTitle(domain); ok {
		return t
	}
	return domain
}

func collectionTitle(domain, collSeg string) string {
	kind, release, resolution := parseCollSeg(collSeg)
	kindWord := "DEM Strips"
	if kind == "mosaics" {
		kindWord = "DEM Mosaics"
	}
	return fmt.Sprintf("%s %s %s, version %s", domainTitle(domain), resolution, kindWord, release)
}

func (b *Builder) rootCatalog() *types.Node {
	href := fmt.Sprintf("%s/%s.json", b.BaseURL, stacitem.RootCatalogID)
	return &types.Node{
		Type:        "Catalog",
		StacVersion: types.StacVersion,
		ID:          stacitem.RootCatalogID,
		Title:       "PGC Data Catalog",
		Description: "Catalogs of published data from the Polar Geospatial Center",
		Links: []types.Link{
			{Rel: "self", Href: href, Type: "application/json"},
			{Rel: "root", Href: href, Type: "application/json"},
		},
	}
}

func (b *Builder) domainCollection(domain string) *types.Node {
	href := fmt.Sprintf("%s/%s.json", b.BaseURL, domain)
	root := fmt.Sprintf("%s/%s.json", b.BaseURL, stacitem.RootCatalogID)
	title := domainTitle(domain)
	return &types.Node{
		Type:        "Collection",
		StacVersion: types.StacVersion,
		ID:          domain,
		Title:       title,
		Description: fmt.Sprintf("%s digital elevation models", title),
		License:     "CC-BY-4.0",
		Providers:   providers,
		Links: []types.Link{
			{Rel: "self", Href: href, Type: "application/json"},
			{Rel: "root", Href: root, Type: "application/json"},
			{Rel: "parent", Title: "PGC Data Catalog", Href: root, Type: "application/json"},
		},
	}
}

func (b *Builder) collectionNode(domain, collSeg string) *types.Node {
	href := fmt.Sprintf("%s/%s/%s.json", b.BaseURL, domain, collSeg)
	parent := fmt.Sprintf("%s/%s.json", b.BaseURL, domain)
	root := fmt.Sprintf("%s/%s.json", b.BaseURL, stacitem.RootCatalogID)
	title := collectionTitle(domain, collSeg)
	return &types.Node{
		Type:        "Collection",
		StacVersion: types.StacVersion,
		ID:          domain + "-" + collSeg,
		Title:       title,
		Description: fmt.Sprintf("%s digital elevation models", title),
		License:     "CC-BY-4.0",
		Providers:   providers,
		Links: []types.Link{
			{Rel: "self", Href: href, Type: "application/json"},
			{Rel: "root", Href: root, Type: "application/json"},
			{Rel: "parent", Title: domainTitle(domain), Href: parent, Type: "application/json"},
		},
	}
}

// partitionCatalog builds a spatial-partition catalog with item child links
// in ascending item-id order.
func (b *Builder) partitionCatalog(domain, collSeg, partition string, items []*types.Item) *types.Node {
	href := fmt.Sprintf("%s/%s/%s/%s.json", b.BaseURL, domain, collSeg, partition)
	parent := fmt.Sprintf("%s/%s/%s.json", b.BaseURL, domain, collSeg)
	root := fmt.Sprintf("%s/%s.json", b.BaseURL, stacitem.RootCatalogID)
	title := fmt.Sprintf("%s %s", collectionTitle(domain, collSeg), partition)
	node := &types.Node{
		Type:        "Catalog",
		StacVersion: types.StacVersion,
		ID:          fmt.Sprintf("%s-%s-%s", domain, collSeg, partition),
		Title:       title,
		Description: title,
		Links: []types.Link{
			{Rel: "self", Href: href, Type: "application/json"},
			{Rel: "root", Href: root, Type: "application/json"},
			{Rel: "parent", Title: collectionTitle(domain, collSeg), Href: parent, Type: "application/json"},
		},
	}
	for _, item := range sortedItems(items) {
		addChild(node, itemChildLink(item))
	}
	return node
}

// extentAccum merges item bboxes and datetimes into a collection extent.
type extentAccum struct {
	bbox    []float64
	hasBBox bool
	minDate string
}

func newExtentAccum() *extentAccum {
	return &extentAccum{bbox: []float64{180, 90, -180, -90}}
}

func (e *extentAccum) addItem(item *types.Item) {
	e.addBBox(item.BBox)
	for _, key := range []string{"datetime", "start_datetime"} {
		if s, ok := item.Properties[key].(string); ok && s != "" {
			e.addDate(s)
		}
	}
}

// addBBox widens the accumulated envelope. Both longitude slots of the
// member box feed both min and max: antimeridian-crossing boxes carry
// minx > maxx, and merging them slot-wise would produce an envelope that
// excludes the crossing member.
func (e *extentAccum) addBBox(bbox []float64) {
	if len(bbox) != 4 {
		return
	}
	e.hasBBox = true
	e.bbox[0] = min(e.bbox[0], bbox[0], bbox[2])
	e.bbox[1] = min(e.bbox[1], bbox[1], bbox[3])
	e.bbox[2] = max(e.bbox[2], bbox[0], bbox[2])
	e.bbox[3] = max(e.bbox[3], bbox[1], bbox[3])
}

// addDate keeps the earliest RFC 3339 timestamp seen. Lexicographic order
// matches chronological order for this format.
func (e *extentAccum) addDate(s string) {
	if e.minDate == "" || s < e.minDate {
		e.minDate = s
	}
}

func (e *extentAccum) merge(other *extentAccum) {
	if other.hasBBox {
		e.addBBox(other.bbox)
	}
	if other.minDate != "" {
		e.addDate(other.minDate)
	}
}

// apply stamps the accumulated extent onto a collection node. The temporal
// interval is open-ended; published collections keep accruing items.
func (e *extentAccum) apply(n *types.Node) {
	if n.Type != "Collection" || !e.hasBBox {
		return
	}
	var start *string
	if e.minDate != "" {
		d := e.minDate
		start = &d
	}
	n.Extent = &types.Extent{
		Spatial:  types.SpatialExtent{BBox: [][]float64{e.bbox}},
		Temporal: types.TemporalExtent{Interval: [][]*string{{start, nil}}},
	}
}
