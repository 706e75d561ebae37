package server

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/brandonteo/BearMaps/internal/config"
	"github.com/brandonteo/BearMaps/internal/geo"
	"github.com/brandonteo/BearMaps/internal/graph"
	"github.com/brandonteo/BearMaps/internal/render"
	"github.com/brandonteo/BearMaps/internal/route"
	"github.com/brandonteo/BearMaps/internal/store"
	"github.com/brandonteo/BearMaps/internal/tiles"
)

// Context holds the read-only dependencies shared by request handlers.
// Everything except lastRoute is built once at startup and never mutated,
// so concurrent requests need no coordination.
type Context struct {
	Config   *config.Config
	Graph    *graph.Graph
	Index    *tiles.Index
	Selector *tiles.Selector
	Finder   *route.Finder
	Store    *store.Store
	Stroke   render.Options

	// lastRoute keeps the most recent route for the legacy viewer, which
	// calls /route and then /raster without passing the route back. The
	// core render path takes the route explicitly; this is only the
	// compatibility shim, and every access goes through the mutex.
	mu        sync.RWMutex
	lastRoute []int64
}

// NewContext wires the query pipeline from configuration and a loaded
// road graph.
func NewContext(cfg *config.Config, g *graph.Graph) (*Context, error) {
	stroke, err := cfg.Mosaic.Color()
	if err != nil {
		return nil, err
	}

	idx := &tiles.Index{Root: cfg.Coverage.BBox(), MaxDepth: cfg.MaxDepth}

	log.Info().
		Float64("ullon", cfg.Coverage.ULLon).
		Float64("ullat", cfg.Coverage.ULLat).
		Float64("lrlon", cfg.Coverage.LRLon).
		Float64("lrlat", cfg.Coverage.LRLat).
		Int("max_depth", cfg.MaxDepth).
		Int("graph_nodes", g.NodeCount()).
		Str("tiles_dir", cfg.TilesDir).
		Msg("Server context initialized")

	return &Context{
		Config:   cfg,
		Graph:    g,
		Index:    idx,
		Selector: tiles.NewSelector(idx),
		Finder:   route.NewFinder(g),
		Store:    store.New(cfg.TilesDir),
		Stroke: render.Options{
			StrokeWidth: cfg.Mosaic.StrokeWidth,
			StrokeColor: stroke,
		},
	}, nil
}

// setRoute stores ids as the last computed route.
func (s *Context) setRoute(ids []int64) {
	s.mu.Lock()
	s.lastRoute = ids
	s.mu.Unlock()
}

// clearRoute drops the last computed route.
func (s *Context) clearRoute() {
	s.setRoute(nil)
}

// routeIDs returns a copy of the last computed route.
func (s *Context) routeIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.lastRoute...)
}

// routePoints resolves the last computed route to coordinates. An id that
// fails to resolve indicates a graph-build bug; it is logged and skipped.
func (s *Context) routePoints() []geo.Point {
	ids := s.routeIDs()
	pts := make([]geo.Point, 0, len(ids))
	for _, id := range ids {
		n, err := s.Graph.Node(id)
		if err != nil {
			log.Error().Err(err).Int64("id", id).Msg("Route id does not resolve")
			continue
		}
		pts = append(pts, n.Point())
	}
	return pts
}
