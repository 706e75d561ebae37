// Package metrics exposes Prometheus collectors for query observability.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RasterTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bearmaps_raster_requests_total",
		Help: "Total number of /raster requests reaching the selector",
	})
	RasterFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bearmaps_raster_failed_total",
		Help: "Total raster queries rejected as out of coverage or degenerate",
	})
	RasterDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bearmaps_raster_duration_ms",
		Help:    "Raster query duration (selection, assembly, encoding) in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	RouteTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bearmaps_route_requests_total",
		Help: "Total number of /route requests reaching the finder",
	})
	RouteNotFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bearmaps_route_not_found_total",
		Help: "Total route queries with disconnected endpoints",
	})
	RouteDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bearmaps_route_duration_ms",
		Help:    "Route search duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	TileMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bearmaps_tile_misses_total",
		Help: "Total tiles missing from the pyramid during mosaic assembly",
	})
)

func init() {
	prometheus.MustRegister(
		RasterTotal,
		RasterFailed,
		RasterDurationMs,
		RouteTotal,
		RouteNotFound,
		RouteDurationMs,
		TileMisses,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
