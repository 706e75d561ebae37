package graph

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/brandonteo/BearMaps/internal/geo"
)

func buildLine(t *testing.T) *Graph {
	t.Helper()
	b := NewBuilder()
	b.AddNode(Node{ID: 1, Lon: 0, Lat: 0})
	b.AddNode(Node{ID: 2, Lon: 1, Lat: 0})
	b.AddNode(Node{ID: 3, Lon: 2, Lat: 0})
	b.AddNode(Node{ID: 4, Lon: 9, Lat: 9}) // isolated, pruned by Build
	b.AddEdge(1, 2)
	b.AddEdge(2, 3)
	return b.Build()
}

func TestEdgeSymmetry(t *testing.T) {
	g := buildLine(t)

	for _, id := range g.NodeIDs() {
		for _, e := range g.Neighbors(id) {
			found := false
			for _, back := range g.Neighbors(e.To) {
				if back.To == id && back.Weight == e.Weight {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("edge %d->%d (w=%v) has no symmetric counterpart", id, e.To, e.Weight)
			}
		}
	}
}

func TestEdgeWeightIsPlanarDistance(t *testing.T) {
	g := buildLine(t)

	for _, e := range g.Neighbors(1) {
		if e.To == 2 && e.Weight != 1 {
			t.Errorf("edge 1-2 weight = %v, want 1", e.Weight)
		}
	}
}

func TestNodeNotFound(t *testing.T) {
	g := buildLine(t)

	if _, err := g.Node(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Node(99) err = %v, want ErrNotFound", err)
	}
	// Isolated nodes are pruned and therefore unknown.
	if _, err := g.Node(4); !errors.Is(err, ErrNotFound) {
		t.Errorf("pruned node must be unknown, got err = %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", g.NodeCount())
	}
}

func TestNearestNodeBruteForce(t *testing.T) {
	b := NewBuilder()
	// A small cross-hatch of nodes, all connected so none are pruned.
	id := int64(1)
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			b.AddNode(Node{ID: id, Lon: float64(x) * 0.01, Lat: float64(y) * 0.01})
			id++
		}
	}
	for i := int64(1); i < id-1; i++ {
		b.AddEdge(i, i+1)
	}
	g := b.Build()

	queries := []geo.Point{
		{Lon: 0, Lat: 0},
		{Lon: 0.021, Lat: 0.034},
		{Lon: -0.5, Lat: 0.02},
		{Lon: 0.1, Lat: 0.1},
		{Lon: 0.0449, Lat: 0.0051},
	}
	for _, q := range queries {
		got, err := g.NearestNode(q)
		if err != nil {
			t.Fatalf("NearestNode(%+v): %v", q, err)
		}

		bestID, bestDist := int64(-1), math.Inf(1)
		for _, nid := range g.NodeIDs() {
			n, _ := g.Node(nid)
			d := geo.Dist(q, n.Point())
			if d < bestDist || (d == bestDist && nid < bestID) {
				bestDist, bestID = d, nid
			}
		}
		if got.ID != bestID {
			t.Errorf("NearestNode(%+v) = %d, brute force says %d", q, got.ID, bestID)
		}
	}
}

func TestNearestNodeTieBreaksByLowestID(t *testing.T) {
	b := NewBuilder()
	b.AddNode(Node{ID: 7, Lon: -1, Lat: 0})
	b.AddNode(Node{ID: 3, Lon: 1, Lat: 0})
	b.AddWeightedEdge(7, 3, 2)
	g := b.Build()

	n, err := g.NearestNode(geo.Point{Lon: 0, Lat: 0})
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != 3 {
		t.Errorf("tie broken to id %d, want 3", n.ID)
	}
}

const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="10" lat="37.8700" lon="-122.2600"/>
  <node id="11" lat="37.8710" lon="-122.2590"/>
  <node id="12" lat="37.8720" lon="-122.2580"/>
  <node id="13" lat="37.8800" lon="-122.2500">
    <tag k="name" v="Lone Lamp Post"/>
  </node>
  <way id="100">
    <nd ref="10"/>
    <nd ref="11"/>
    <nd ref="12"/>
    <tag k="highway" v="residential"/>
  </way>
  <way id="101">
    <nd ref="12"/>
    <nd ref="13"/>
    <tag k="building" v="yes"/>
  </way>
</osm>`

func TestParseOSM(t *testing.T) {
	g, err := Parse(strings.NewReader(sampleOSM))
	if err != nil {
		t.Fatal(err)
	}

	if g.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3 (non-road nodes pruned)", g.NodeCount())
	}
	if _, err := g.Node(13); !errors.Is(err, ErrNotFound) {
		t.Error("node on non-highway way only must be pruned")
	}

	// The residential way chains 10-11-12.
	n11 := g.Neighbors(11)
	if len(n11) != 2 {
		t.Fatalf("node 11 has %d neighbors, want 2", len(n11))
	}
	for _, e := range n11 {
		if e.To != 10 && e.To != 12 {
			t.Errorf("unexpected neighbor %d of node 11", e.To)
		}
		if e.Weight <= 0 {
			t.Errorf("edge weight %v must be positive", e.Weight)
		}
	}
}

func TestParseOSMBadNode(t *testing.T) {
	bad := `<osm><node id="x" lat="1" lon="2"/></osm>`
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Error("malformed node id must fail the parse")
	}
}
