// Package geo handles geographic value types and planar coordinate math.
package geo

import "math"

// Point represents a geographic coordinate. Longitude is the x-axis,
// latitude the y-axis, with latitude decreasing downward (image-row order).
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// BBox represents a geographic bounding box by its upper-left and
// lower-right corners.
type BBox struct {
	UL Point `json:"ul"`
	LR Point `json:"lr"`
}

// Valid reports whether the box has positive extent on both axes.
func (b BBox) Valid() bool {
	return b.UL.Lon < b.LR.Lon && b.UL.Lat > b.LR.Lat
}

// Intersects reports whether the two boxes overlap.
func (b BBox) Intersects(o BBox) bool {
	return b.UL.Lon < o.LR.Lon && o.UL.Lon < b.LR.Lon &&
		b.LR.Lat < o.UL.Lat && o.LR.Lat < b.UL.Lat
}

// Clip returns the intersection of the two boxes. The result is only
// meaningful when Intersects(o) holds.
func (b BBox) Clip(o BBox) BBox {
	return BBox{
		UL: Point{Lon: math.Max(b.UL.Lon, o.UL.Lon), Lat: math.Min(b.UL.Lat, o.UL.Lat)},
		LR: Point{Lon: math.Min(b.LR.Lon, o.LR.Lon), Lat: math.Max(b.LR.Lat, o.LR.Lat)},
	}
}

// Contains reports whether the box fully contains o.
func (b BBox) Contains(o BBox) bool {
	return b.UL.Lon <= o.UL.Lon && o.LR.Lon <= b.LR.Lon &&
		b.LR.Lat <= o.LR.Lat && o.UL.Lat <= b.UL.Lat
}

// Width returns the longitudinal extent of the box in degrees.
func (b BBox) Width() float64 {
	return b.LR.Lon - b.UL.Lon
}

// Height returns the latitudinal extent of the box in degrees.
func (b BBox) Height() float64 {
	return b.UL.Lat - b.LR.Lat
}

// Dist returns the planar Euclidean distance between two points in
// degrees. No geodesic correction is applied; all distances in the
// system use this one metric.
func Dist(a, b Point) float64 {
	return math.Hypot(a.Lon-b.Lon, a.Lat-b.Lat)
}
