package graph

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// highwayValues lists the way classifications retained as routable roads.
// Footways and similar are excluded: routing is over the drivable network.
var highwayValues = map[string]bool{
	"motorway": true, "trunk": true, "primary": true, "secondary": true,
	"tertiary": true, "unclassified": true, "residential": true,
	"living_street": true, "motorway_link": true, "trunk_link": true,
	"primary_link": true, "secondary_link": true, "tertiary_link": true,
	"road": true, "service": true,
}

type osmWay struct {
	Refs []struct {
		Ref int64 `xml:"ref,attr"`
	} `xml:"nd"`
	Tags []struct {
		K string `xml:"k,attr"`
		V string `xml:"v,attr"`
	} `xml:"tag"`
}

func (w osmWay) routable() bool {
	for _, t := range w.Tags {
		if t.K == "highway" && highwayValues[t.V] {
			return true
		}
	}
	return false
}

// LoadOSM builds the road graph from an OSM XML extract on disk.
func LoadOSM(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open osm file: %w", err)
	}
	defer func() { _ = f.Close() }()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}

// Parse streams OSM XML from r into a frozen Graph. All <node> elements
// are collected first as edge endpoints; only nodes that end up on a
// routable way survive the build.
func Parse(r io.Reader) (*Graph, error) {
	b := NewBuilder()
	dec := xml.NewDecoder(r)

	ways := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "node":
			n, err := parseNodeAttrs(se)
			if err != nil {
				return nil, err
			}
			b.AddNode(n)

		case "way":
			var w osmWay
			if err := dec.DecodeElement(&w, &se); err != nil {
				return nil, fmt.Errorf("decode way: %w", err)
			}
			if !w.routable() {
				continue
			}
			ways++
			for i := 1; i < len(w.Refs); i++ {
				b.AddEdge(w.Refs[i-1].Ref, w.Refs[i].Ref)
			}
		}
	}

	g := b.Build()
	log.Debug().Int("ways", ways).Msg("OSM ways processed")
	g.logSummary()
	return g, nil
}

func parseNodeAttrs(se xml.StartElement) (Node, error) {
	var n Node
	for _, a := range se.Attr {
		var err error
		switch a.Name.Local {
		case "id":
			n.ID, err = strconv.ParseInt(a.Value, 10, 64)
		case "lon":
			n.Lon, err = strconv.ParseFloat(a.Value, 64)
		case "lat":
			n.Lat, err = strconv.ParseFloat(a.Value, 64)
		}
		if err != nil {
			return Node{}, fmt.Errorf("node attribute %s=%q: %w", a.Name.Local, a.Value, err)
		}
	}
	return n, nil
}
