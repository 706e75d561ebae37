// Package graph holds the immutable road network: nodes with geographic
// coordinates, undirected weighted adjacency, and nearest-node lookup.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/brandonteo/BearMaps/internal/geo"
)

// ErrNotFound is returned when a node id does not exist in the graph. Ids
// reaching lookups come from previously computed paths, so hitting this is
// a logic bug, not a user-facing condition.
var ErrNotFound = errors.New("node not found")

// Node is a single road-network vertex.
type Node struct {
	ID  int64
	Lon float64
	Lat float64
}

// Point returns the node's coordinates as a geo.Point.
func (n Node) Point() geo.Point {
	return geo.Point{Lon: n.Lon, Lat: n.Lat}
}

// Edge is one half of an undirected weighted connection. The weight is the
// planar Euclidean distance between the endpoints.
type Edge struct {
	To     int64
	Weight float64
}

// Graph is the road network. It is built exactly once before any query is
// served and never mutated afterwards, which is what allows concurrent
// read access without locking.
type Graph struct {
	nodes map[int64]Node
	adj   map[int64][]Edge
	grid  *nearestGrid
}

// Builder accumulates nodes and edges before the graph is frozen.
type Builder struct {
	nodes map[int64]Node
	adj   map[int64][]Edge
}

// NewBuilder returns an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[int64]Node),
		adj:   make(map[int64][]Edge),
	}
}

// AddNode registers a node. Re-adding an id overwrites its coordinates.
func (b *Builder) AddNode(n Node) {
	b.nodes[n.ID] = n
}

// AddEdge connects u and v in both directions, weighted by the planar
// distance between them. Unknown endpoints are ignored.
func (b *Builder) AddEdge(u, v int64) {
	nu, ok := b.nodes[u]
	if !ok {
		return
	}
	nv, ok := b.nodes[v]
	if !ok {
		return
	}
	b.AddWeightedEdge(u, v, geo.Dist(nu.Point(), nv.Point()))
}

// AddWeightedEdge connects u and v in both directions with an explicit
// non-negative weight. The weight must never undercut the planar distance
// between the endpoints or shortest-path search loses its correctness
// guarantee.
func (b *Builder) AddWeightedEdge(u, v int64, w float64) {
	if _, ok := b.nodes[u]; !ok {
		return
	}
	if _, ok := b.nodes[v]; !ok {
		return
	}
	b.adj[u] = append(b.adj[u], Edge{To: v, Weight: w})
	b.adj[v] = append(b.adj[v], Edge{To: u, Weight: w})
}

// Build freezes the builder into an immutable Graph. Nodes with no edges
// are pruned: they cannot appear on any route and would only distort
// nearest-node snapping.
func (b *Builder) Build() *Graph {
	g := &Graph{
		nodes: make(map[int64]Node, len(b.adj)),
		adj:   b.adj,
	}
	for id := range b.adj {
		g.nodes[id] = b.nodes[id]
	}
	g.grid = newNearestGrid(g.nodes)

	return g
}

// Node returns the node with the given id, or ErrNotFound.
func (g *Graph) Node(id int64) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	return n, nil
}

// Neighbors returns the adjacency of the given node. The returned slice is
// shared and must not be modified.
func (g *Graph) Neighbors(id int64) []Edge {
	return g.adj[id]
}

// NodeCount returns the number of routable nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// NearestNode returns the node minimizing planar Euclidean distance to p,
// ties broken by lowest id. The graph must be non-empty.
func (g *Graph) NearestNode(p geo.Point) (Node, error) {
	if len(g.nodes) == 0 {
		return Node{}, fmt.Errorf("nearest node: empty graph: %w", ErrNotFound)
	}

	id := g.grid.nearest(p)
	return g.nodes[id], nil
}

// NodeIDs returns all node ids in ascending order. Used by debugging and
// brute-force comparisons in tests.
func (g *Graph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *Graph) logSummary() {
	edges := 0
	for _, es := range g.adj {
		edges += len(es)
	}
	log.Info().
		Int("nodes", len(g.nodes)).
		Int("edges", edges/2).
		Msg("Road graph built")
}
