// Package tiles implements the implicit quadtree over the pre-rendered
// tile pyramid and the selection of mosaic tile sets.
package tiles

import (
	"math"

	"github.com/brandonteo/BearMaps/internal/geo"
)

// TileSize is the pixel edge length of every pyramid tile.
const TileSize = 256

// RootPath is the storage key of the depth-0 tile, whose quadrant path is
// empty.
const RootPath = "root"

// Tile identifies a single pyramid tile by its quadrant path together with
// its geographic bounds. Quadrant digits are 1=NW, 2=NE, 3=SW, 4=SE; the
// path length is the tile's depth.
type Tile struct {
	Path   string
	Bounds geo.BBox
}

// Key returns the storage key for the tile image. The root tile has an
// empty path and is stored under RootPath.
func (t Tile) Key() string {
	if t.Path == "" {
		return RootPath
	}
	return t.Path
}

// Index is the quadtree over the pyramid's coverage. It is never
// materialized as a pointer tree: tile geometry is a pure function of
// (depth, path), so everything is computed arithmetically on demand.
type Index struct {
	Root     geo.BBox
	MaxDepth int
}

// LonDPP returns the longitudinal degrees-per-pixel of tiles at the given
// depth. Depth 0 is coarsest; resolution doubles per level.
func (ix *Index) LonDPP(depth int) float64 {
	return ix.Root.Width() / float64(int(1)<<depth) / TileSize
}

// TileBounds returns the bounding box of the tile addressed by the given
// quadrant path, halving the root extents along each axis per step.
func (ix *Index) TileBounds(path string) geo.BBox {
	b := ix.Root
	for i := 0; i < len(path); i++ {
		midLon := (b.UL.Lon + b.LR.Lon) / 2
		midLat := (b.UL.Lat + b.LR.Lat) / 2
		switch path[i] {
		case '1':
			b = geo.BBox{UL: b.UL, LR: geo.Point{Lon: midLon, Lat: midLat}}
		case '2':
			b = geo.BBox{
				UL: geo.Point{Lon: midLon, Lat: b.UL.Lat},
				LR: geo.Point{Lon: b.LR.Lon, Lat: midLat},
			}
		case '3':
			b = geo.BBox{
				UL: geo.Point{Lon: b.UL.Lon, Lat: midLat},
				LR: geo.Point{Lon: midLon, Lat: b.LR.Lat},
			}
		case '4':
			b = geo.BBox{UL: geo.Point{Lon: midLon, Lat: midLat}, LR: b.LR}
		}
	}
	return b
}

// TilesAtDepth returns the tiles at the given depth intersecting q, in
// row-major order: the top row left to right, then the next row. The
// mosaic assembler blits fixed-size blocks sequentially and relies on this
// order. q must intersect the root box.
func (ix *Index) TilesAtDepth(depth int, q geo.BBox) []Tile {
	colLo, colHi, rowLo, rowHi := ix.gridRange(depth, q)

	out := make([]Tile, 0, (rowHi-rowLo+1)*(colHi-colLo+1))
	for row := rowLo; row <= rowHi; row++ {
		for col := colLo; col <= colHi; col++ {
			path := PathFor(depth, col, row)
			out = append(out, Tile{Path: path, Bounds: ix.TileBounds(path)})
		}
	}
	return out
}

// gridRange returns the inclusive column and row index ranges of the
// depth-d tiles whose interiors intersect q, clipped to the grid.
func (ix *Index) gridRange(depth int, q geo.BBox) (colLo, colHi, rowLo, rowHi int) {
	n := int(1) << depth
	lonStep := ix.Root.Width() / float64(n)
	latStep := ix.Root.Height() / float64(n)

	colLo = clampIdx(int(math.Floor((q.UL.Lon-ix.Root.UL.Lon)/lonStep)), n)
	colHi = clampIdx(int(math.Ceil((q.LR.Lon-ix.Root.UL.Lon)/lonStep))-1, n)
	rowLo = clampIdx(int(math.Floor((ix.Root.UL.Lat-q.UL.Lat)/latStep)), n)
	rowHi = clampIdx(int(math.Ceil((ix.Root.UL.Lat-q.LR.Lat)/latStep))-1, n)

	if colHi < colLo {
		colHi = colLo
	}
	if rowHi < rowLo {
		rowHi = rowLo
	}
	return colLo, colHi, rowLo, rowHi
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// PathFor builds the quadrant path of the tile at (col, row) on the
// depth-d grid. Each path digit encodes one bit of the column and one bit
// of the row, most significant first.
func PathFor(depth, col, row int) string {
	buf := make([]byte, depth)
	for k := 0; k < depth; k++ {
		shift := uint(depth - 1 - k)
		cb := (col >> shift) & 1
		rb := (row >> shift) & 1
		buf[k] = byte('1' + cb + 2*rb)
	}
	return string(buf)
}
