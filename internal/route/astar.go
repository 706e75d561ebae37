// Package route implements shortest-path search over the road graph.
package route

import (
	"container/heap"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/brandonteo/BearMaps/internal/geo"
	"github.com/brandonteo/BearMaps/internal/graph"
)

// ErrNoRoute is returned when the snapped endpoints lie in disconnected
// components of the road graph.
var ErrNoRoute = errors.New("no route found")

// expansionFactor bounds the total number of frontier pops as a multiple
// of the node count. Every node is settled at most once, so only stale
// duplicate handling could push past 1x; exceeding the bound means the
// search is not going to terminate usefully.
const expansionFactor = 4

type entry struct {
	node     graph.Node
	gCost    float64
	priority float64 // gCost + straight-line distance to destination
	prev     *entry
	index    int // position in the frontier heap
}

// frontier is a min-heap of open entries ordered by priority.
type frontier []*entry

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].priority < f[j].priority }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i]; f[i].index = i; f[j].index = j }
func (f *frontier) Push(x interface{}) { e := x.(*entry); e.index = len(*f); *f = append(*f, e) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return e
}

// Finder runs A* searches over a frozen road graph. It holds no mutable
// state, so one Finder serves concurrent queries.
type Finder struct {
	g *graph.Graph
}

// NewFinder returns a Finder over g.
func NewFinder(g *graph.Graph) *Finder {
	return &Finder{g: g}
}

// FindPath snaps src and dst to their nearest road nodes and returns the
// shortest path between them as an ordered node-id sequence from the
// source side to the destination side. ErrNoRoute is returned when no
// path exists.
//
// The heuristic is the planar straight-line distance to the destination
// node, the same metric edge weights use. That makes it consistent, which
// is what allows settled nodes to never be reconsidered; if the edge-cost
// model ever changes, this search must be revisited.
func (f *Finder) FindPath(src, dst geo.Point) ([]int64, error) {
	srcNode, err := f.g.NearestNode(src)
	if err != nil {
		return nil, err
	}
	dstNode, err := f.g.NearestNode(dst)
	if err != nil {
		return nil, err
	}

	h := func(n graph.Node) float64 {
		return geo.Dist(n.Point(), dstNode.Point())
	}

	open := &frontier{}
	heap.Init(open)
	// Open entries by node id; doubles as the discovered set.
	index := make(map[int64]*entry)
	settled := make(map[int64]bool)

	start := &entry{node: srcNode, gCost: 0, priority: h(srcNode)}
	heap.Push(open, start)
	index[srcNode.ID] = start

	maxExpansions := expansionFactor * f.g.NodeCount()
	for expansions := 0; ; expansions++ {
		if open.Len() == 0 {
			return nil, ErrNoRoute
		}
		if expansions > maxExpansions {
			log.Warn().
				Int64("src", srcNode.ID).
				Int64("dst", dstNode.ID).
				Int("expansions", expansions).
				Msg("Route search exceeded expansion bound")
			return nil, ErrNoRoute
		}

		cur := heap.Pop(open).(*entry)
		delete(index, cur.node.ID)
		settled[cur.node.ID] = true

		if cur.node.ID == dstNode.ID {
			return reconstruct(cur), nil
		}

		for _, e := range f.g.Neighbors(cur.node.ID) {
			if settled[e.To] {
				continue
			}

			nb, err := f.g.Node(e.To)
			if err != nil {
				// Adjacency pointing at a missing node is a build bug.
				return nil, err
			}

			tentative := cur.gCost + e.Weight
			priority := tentative + h(nb)

			if old, ok := index[e.To]; ok {
				if priority >= old.priority {
					continue
				}
				// Decrease-key as remove and reinsert; a plain binary
				// heap has no native decrease-key.
				heap.Remove(open, old.index)
			}

			next := &entry{node: nb, gCost: tentative, priority: priority, prev: cur}
			heap.Push(open, next)
			index[e.To] = next
		}
	}
}

// reconstruct follows predecessor links from the settled destination back
// to the source and reverses into source-to-destination order.
func reconstruct(end *entry) []int64 {
	var ids []int64
	for e := end; e != nil; e = e.prev {
		ids = append(ids, e.node.ID)
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}
