// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brandonteo/BearMaps/internal/geo"
	"github.com/brandonteo/BearMaps/internal/metrics"
	"github.com/brandonteo/BearMaps/internal/render"
	"github.com/brandonteo/BearMaps/internal/route"
)

var rasterParams = []string{"ullon", "ullat", "lrlon", "lrlat", "w", "h"}
var routeParams = []string{"start_lon", "start_lat", "end_lon", "end_lat"}

// floatParams validates and parses the required numeric query parameters.
// A missing or non-numeric value writes a 403 response and returns false;
// the core never sees unvalidated input.
func floatParams(w http.ResponseWriter, r *http.Request, required []string) (map[string]float64, bool) {
	q := r.URL.Query()
	out := make(map[string]float64, len(required))
	for _, name := range required {
		if !q.Has(name) {
			http.Error(w, "Request failed - parameters missing.", http.StatusForbidden)
			return nil, false
		}
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			http.Error(w, "Incorrect parameters - provide numbers.", http.StatusForbidden)
			return nil, false
		}
		out[name] = v
	}
	return out, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

// HandleRaster serves the mosaic query: it selects the covering tile set,
// assembles the image with the last route overlaid, and returns the
// raster geometry plus the base64-encoded payload.
func (s *Context) HandleRaster(w http.ResponseWriter, r *http.Request) {
	params, ok := floatParams(w, r, rasterParams)
	if !ok {
		return
	}

	start := time.Now()
	metrics.RasterTotal.Inc()

	q := geo.BBox{
		UL: geo.Point{Lon: params["ullon"], Lat: params["ullat"]},
		LR: geo.Point{Lon: params["lrlon"], Lat: params["lrlat"]},
	}
	sol := s.Selector.Select(q, int(params["w"]), int(params["h"]))

	resp := map[string]interface{}{
		"raster_ul_lon": sol.Bounds.UL.Lon,
		"raster_ul_lat": sol.Bounds.UL.Lat,
		"raster_lr_lon": sol.Bounds.LR.Lon,
		"raster_lr_lat": sol.Bounds.LR.Lat,
		"raster_width":  sol.Width,
		"raster_height": sol.Height,
		"depth":         sol.Depth,
		"query_success": sol.Success,
	}

	if !sol.Success {
		metrics.RasterFailed.Inc()
		writeJSON(w, resp)
		return
	}

	img := render.Mosaic(s.Store, sol, s.routePoints(), s.Stroke)

	var buf bytes.Buffer
	if err := render.Encode(&buf, img, s.Config.Mosaic.Format); err != nil {
		log.Error().Err(err).Msg("Mosaic encoding failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	resp["b64_encoded_image_data"] = base64.StdEncoding.EncodeToString(buf.Bytes())

	metrics.RasterDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	writeJSON(w, resp)
}

// HandleRoute serves the shortest-path query and returns the ordered node
// ids. An empty array means no route; it is not an error.
func (s *Context) HandleRoute(w http.ResponseWriter, r *http.Request) {
	params, ok := floatParams(w, r, routeParams)
	if !ok {
		return
	}

	start := time.Now()
	metrics.RouteTotal.Inc()

	src := geo.Point{Lon: params["start_lon"], Lat: params["start_lat"]}
	dst := geo.Point{Lon: params["end_lon"], Lat: params["end_lat"]}

	ids, err := s.Finder.FindPath(src, dst)
	switch {
	case errors.Is(err, route.ErrNoRoute):
		metrics.RouteNotFound.Inc()
		ids = []int64{}
	case err != nil:
		log.Error().Err(err).Msg("Route search failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.setRoute(ids)

	metrics.RouteDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, ids)
}

// HandleRouteGeoJSON exports the last computed route as a GeoJSON
// LineString for map viewers.
func (s *Context) HandleRouteGeoJSON(w http.ResponseWriter, r *http.Request) {
	pts := s.routePoints()
	fc := geo.RouteFeature(pts, map[string]interface{}{"nodes": len(pts)})

	w.Header().Set("Content-Type", "application/geo+json")
	_ = json.NewEncoder(w).Encode(fc)
}

// HandleClearRoute drops the stored route.
func (s *Context) HandleClearRoute(w http.ResponseWriter, r *http.Request) {
	s.clearRoute()
	writeJSON(w, true)
}

// HandleSearch is the location-name search endpoint. The location index
// is not part of this server; the viewer expects an empty result set.
func (s *Context) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("full") {
		writeJSON(w, []map[string]interface{}{})
		return
	}
	writeJSON(w, []string{})
}

// CORS allows all origins: this is an unauthenticated read-only API.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Request-Method", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		next.ServeHTTP(w, r)
	})
}
