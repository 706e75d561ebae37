package tiles

import (
	"github.com/rs/zerolog/log"

	"github.com/brandonteo/BearMaps/internal/geo"
)

// Solution describes an assembled mosaic: its snapped geographic bounds,
// pixel dimensions, the selected pyramid depth, and the tile list in
// row-major assembly order. A failed query yields Success=false with
// zero-value geometry.
type Solution struct {
	Bounds  geo.BBox
	Width   int
	Height  int
	Depth   int
	Success bool
	Tiles   []Tile
}

// Selector chooses the coarsest sufficient resolution and the minimal
// covering tile set for a query box. It is purely computational and safe
// for concurrent use.
type Selector struct {
	idx *Index
}

// NewSelector returns a Selector over the given index.
func NewSelector(idx *Index) *Selector {
	return &Selector{idx: idx}
}

// Select picks the tiles covering q for a viewport of width x height
// pixels. A degenerate viewport, a malformed box, or a box entirely
// outside the pyramid's coverage produces Success=false rather than an
// error; callers must check the flag.
func (s *Selector) Select(q geo.BBox, width, height int) Solution {
	if width <= 0 || height <= 0 || !q.Valid() || !q.Intersects(s.idx.Root) {
		log.Debug().
			Float64("ullon", q.UL.Lon).
			Float64("ullat", q.UL.Lat).
			Float64("lrlon", q.LR.Lon).
			Float64("lrlat", q.LR.Lat).
			Int("w", width).
			Int("h", height).
			Msg("Unservable raster query")
		return Solution{}
	}

	clipped := s.idx.Root.Clip(q)
	targetDPP := clipped.Width() / float64(width)

	// Coarsest depth still at or below the requested degrees-per-pixel.
	// If even the finest level is too coarse, clamp: best available, not
	// a failure.
	depth := 0
	for depth < s.idx.MaxDepth && s.idx.LonDPP(depth) > targetDPP {
		depth++
	}

	selected := s.idx.TilesAtDepth(depth, clipped)

	bounds := selected[0].Bounds
	for _, t := range selected[1:] {
		if t.Bounds.UL.Lon < bounds.UL.Lon {
			bounds.UL.Lon = t.Bounds.UL.Lon
		}
		if t.Bounds.UL.Lat > bounds.UL.Lat {
			bounds.UL.Lat = t.Bounds.UL.Lat
		}
		if t.Bounds.LR.Lon > bounds.LR.Lon {
			bounds.LR.Lon = t.Bounds.LR.Lon
		}
		if t.Bounds.LR.Lat < bounds.LR.Lat {
			bounds.LR.Lat = t.Bounds.LR.Lat
		}
	}

	colLo, colHi, rowLo, rowHi := s.idx.gridRange(depth, clipped)

	return Solution{
		Bounds:  bounds,
		Width:   (colHi - colLo + 1) * TileSize,
		Height:  (rowHi - rowLo + 1) * TileSize,
		Depth:   depth,
		Success: true,
		Tiles:   selected,
	}
}
