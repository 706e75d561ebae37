package graph

import (
	"math"

	"github.com/brandonteo/BearMaps/internal/geo"
)

// gridCells is the target cell count per axis. Coverage extents divided by
// this give the cell size, so lookup cost stays flat as the map grows.
const gridCells = 64

type gridNode struct {
	id int64
	pt geo.Point
}

// nearestGrid is a flat spatial hash over the node set. A naive nearest
// scan is O(n) per query; bucketing nodes into fixed-size cells and
// searching outward in rings touches only a handful of cells for typical
// road densities, behind the same contract.
type nearestGrid struct {
	origin   geo.Point // min lon, min lat of the node set
	cellSize float64
	maxRing  int
	cells    map[uint64][]gridNode
}

// cellKey packs two int32 cell indices into a single uint64 map key.
func cellKey(ix, iy int32) uint64 {
	return uint64(uint32(ix))<<32 | uint64(uint32(iy))
}

func newNearestGrid(nodes map[int64]Node) *nearestGrid {
	g := &nearestGrid{cells: make(map[uint64][]gridNode)}
	if len(nodes) == 0 {
		g.cellSize = 1
		return g
	}

	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minLon = math.Min(minLon, n.Lon)
		minLat = math.Min(minLat, n.Lat)
		maxLon = math.Max(maxLon, n.Lon)
		maxLat = math.Max(maxLat, n.Lat)
	}

	extent := math.Max(maxLon-minLon, maxLat-minLat)
	if extent == 0 {
		extent = 1
	}

	g.origin = geo.Point{Lon: minLon, Lat: minLat}
	g.cellSize = extent / gridCells
	g.maxRing = gridCells + 1

	for id, n := range nodes {
		key := cellKey(g.cellOf(n.Point()))
		g.cells[key] = append(g.cells[key], gridNode{id: id, pt: n.Point()})
	}
	return g
}

func (g *nearestGrid) cellOf(p geo.Point) (int32, int32) {
	return int32(math.Floor((p.Lon - g.origin.Lon) / g.cellSize)),
		int32(math.Floor((p.Lat - g.origin.Lat) / g.cellSize))
}

// nearest returns the id of the node closest to p, ties to the lowest id.
// It scans cells in expanding Chebyshev rings around p's cell and stops
// once any farther ring cannot beat the best distance found. Points
// outside the indexed area fall back to a full scan: the ring lower
// bound only holds when p lies inside its own cell's grid.
func (g *nearestGrid) nearest(p geo.Point) int64 {
	cx, cy := g.cellOf(p)
	if cx < 0 || cy < 0 || cx > gridCells || cy > gridCells {
		return g.scanAll(p)
	}

	bestID := int64(-1)
	bestDist := math.Inf(1)

	for ring := 0; ring <= g.maxRing; ring++ {
		// Nodes in ring r are at least (r-1) cells away from p.
		if bestID >= 0 && float64(ring-1)*g.cellSize > bestDist {
			break
		}

		for dx := -ring; dx <= ring; dx++ {
			for dy := -ring; dy <= ring; dy++ {
				if max(abs(dx), abs(dy)) != ring {
					continue
				}
				for _, gn := range g.cells[cellKey(cx+int32(dx), cy+int32(dy))] {
					d := geo.Dist(p, gn.pt)
					if d < bestDist || (d == bestDist && gn.id < bestID) {
						bestDist = d
						bestID = gn.id
					}
				}
			}
		}
	}
	if bestID < 0 {
		return g.scanAll(p)
	}
	return bestID
}

func (g *nearestGrid) scanAll(p geo.Point) int64 {
	bestID := int64(-1)
	bestDist := math.Inf(1)
	for _, bucket := range g.cells {
		for _, gn := range bucket {
			d := geo.Dist(p, gn.pt)
			if d < bestDist || (d == bestDist && gn.id < bestID) {
				bestDist = d
				bestID = gn.id
			}
		}
	}
	return bestID
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
