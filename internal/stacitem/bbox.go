// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stacitem

import (
	"fmt"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

// GeoJSONBBox derives the bounding box from a geometry's outer ring.
// Geometries crossing the antimeridian are represented with minx > maxx per
// RFC 7946 §5.2.
func GeoJSONBBox(geom *types.Geometry) ([]float64, error) {
	if geom == nil || len(geom.Coordinates) == 0 || len(geom.Coordinates[0]) < 2 {
		return nil, fmt.Errorf("geometry has no outer ring")
	}

	ring := geom.Coordinates[0]
	minx, miny := 9999.0, 9999.0
	maxx, maxy := -9999.0, -9999.0
	crosses180 := false

	for i := 0; i < len(ring)-1; i++ {
		pt1, pt2 := ring[i], ring[i+1]
		if len(pt1) < 2 || len(pt2) < 2 {
			return nil, fmt.Errorf("ring point %d has fewer than 2 coordinates", i)
		}

		minx = min(pt1[0], pt2[0], minx)
		maxx = max(pt1[0], pt2[0], maxx)
		miny = min(pt1[1], pt2[1], miny)
		maxy = max(pt1[1], pt2[1], maxy)

		if sign(pt1[0]) != sign(pt2[0]) {
			crosses180 = true
		}
	}

	if crosses180 {
		return []float64{maxx, miny, minx, maxy}, nil
	}
	return []float64{minx, miny, maxx, maxy}, nil
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}
