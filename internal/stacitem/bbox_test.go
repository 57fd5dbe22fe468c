// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stacitem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dem-catalog/pkg/types"
)

func polygon(ring [][]float64) *types.Geometry {
	return &types.Geometry{Type: "Polygon", Coordinates: [][][]float64{ring}}
}

func TestGeoJSONBBox(t *testing.T) {
	bbox, err := GeoJSONBBox(polygon([][]float64{
		{10, 60}, {12, 60}, {12, 62}, {10, 62}, {10, 60},
	}))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 60, 12, 62}, bbox)
}

func TestGeoJSONBBoxAntimeridian(t *testing.T) {
	// A footprint spanning the 180th meridian: longitudes change sign, so
	// the box is emitted with minx > maxx per RFC 7946.
	bbox, err := GeoJSONBBox(polygon([][]float64{
		{179, -71}, {-179, -71}, {-179, -70}, {179, -70}, {179, -71},
	}))
	require.NoError(t, err)
	assert.Equal(t, []float64{179, -71, -179, -70}, bbox)
}

func TestGeoJSONBBoxRejectsEmptyGeometry(t *testing.T) {
	_, err := GeoJSONBBox(nil)
	assert.Error(t, err)

	_, err = GeoJSONBBox(polygon(nil))
	assert.Error(t, err)
}
