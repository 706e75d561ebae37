package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brandonteo/BearMaps/internal/config"
	"github.com/brandonteo/BearMaps/internal/graph"
)

func testContext(t *testing.T) *Context {
	t.Helper()

	cfg := config.Default()
	cfg.TilesDir = t.TempDir() // empty pyramid: mosaics render with gaps

	b := graph.NewBuilder()
	b.AddNode(graph.Node{ID: 1, Lon: -122.260, Lat: 37.870})
	b.AddNode(graph.Node{ID: 2, Lon: -122.255, Lat: 37.871})
	b.AddNode(graph.Node{ID: 3, Lon: -122.250, Lat: 37.872})
	b.AddNode(graph.Node{ID: 9, Lon: -122.220, Lat: 37.830})
	b.AddNode(graph.Node{ID: 10, Lon: -122.219, Lat: 37.831})
	b.AddEdge(1, 2)
	b.AddEdge(2, 3)
	b.AddEdge(9, 10) // disconnected pocket in the corner

	srv, err := NewContext(cfg, b.Build())
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func getJSON(t *testing.T, h http.HandlerFunc, url string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s response: %v", url, err)
		}
	}
	return rec
}

func TestRasterMissingParams(t *testing.T) {
	srv := testContext(t)

	rec := getJSON(t, srv.HandleRaster, "/raster?ullon=-122.3&ullat=37.89", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRasterNonNumericParams(t *testing.T) {
	srv := testContext(t)

	url := "/raster?ullon=abc&ullat=37.89&lrlon=-122.21&lrlat=37.82&w=256&h=256"
	rec := getJSON(t, srv.HandleRaster, url, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRasterFullCoverage(t *testing.T) {
	srv := testContext(t)

	var resp map[string]interface{}
	url := "/raster?ullon=-122.2998046875&ullat=37.892195547244356&lrlon=-122.2119140625&lrlat=37.82280243352756&w=256&h=256"
	rec := getJSON(t, srv.HandleRaster, url, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if resp["query_success"] != true {
		t.Fatalf("query_success = %v", resp["query_success"])
	}
	if resp["depth"] != float64(0) {
		t.Errorf("depth = %v, want 0", resp["depth"])
	}
	if resp["raster_width"] != float64(256) || resp["raster_height"] != float64(256) {
		t.Errorf("raster %vx%v, want 256x256", resp["raster_width"], resp["raster_height"])
	}
	if s, _ := resp["b64_encoded_image_data"].(string); s == "" {
		t.Error("successful raster must include the encoded image payload")
	}
}

func TestRasterOutOfCoverage(t *testing.T) {
	srv := testContext(t)

	var resp map[string]interface{}
	url := "/raster?ullon=-100&ullat=40&lrlon=-99&lrlat=39&w=256&h=256"
	getJSON(t, srv.HandleRaster, url, &resp)

	if resp["query_success"] != false {
		t.Errorf("query_success = %v, want false", resp["query_success"])
	}
	if _, ok := resp["b64_encoded_image_data"]; ok {
		t.Error("failed raster must not include an image payload")
	}
}

func TestRouteAndGeoJSON(t *testing.T) {
	srv := testContext(t)

	var ids []int64
	url := "/route?start_lon=-122.260&start_lat=37.870&end_lon=-122.250&end_lat=37.872"
	rec := getJSON(t, srv.HandleRoute, url, &ids)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("route = %v, want [1 2 3]", ids)
	}

	var fc struct {
		Features []struct {
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	getJSON(t, srv.HandleRouteGeoJSON, "/route/geojson", &fc)
	if len(fc.Features) != 1 || len(fc.Features[0].Geometry.Coordinates) != 3 {
		t.Errorf("geojson does not reflect the stored route: %+v", fc)
	}

	var cleared bool
	getJSON(t, srv.HandleClearRoute, "/clear_route", &cleared)
	if !cleared {
		t.Error("clear_route must acknowledge")
	}
	getJSON(t, srv.HandleRouteGeoJSON, "/route/geojson", &fc)
	if len(fc.Features[0].Geometry.Coordinates) != 0 {
		t.Error("route must be empty after clear")
	}
}

func TestRouteDisconnected(t *testing.T) {
	srv := testContext(t)

	var ids []int64
	url := "/route?start_lon=-122.260&start_lat=37.870&end_lon=-122.219&end_lat=37.831"
	rec := getJSON(t, srv.HandleRoute, url, &ids)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, disconnected route is not an HTTP error", rec.Code)
	}
	if len(ids) != 0 {
		t.Errorf("route = %v, want empty", ids)
	}
}

func TestRouteMissingParams(t *testing.T) {
	srv := testContext(t)

	rec := getJSON(t, srv.HandleRoute, "/route?start_lon=-122.26", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestSearchReturnsEmpty(t *testing.T) {
	srv := testContext(t)

	var names []string
	getJSON(t, srv.HandleSearch, "/search?term=cafe", &names)
	if len(names) != 0 {
		t.Errorf("names = %v, want empty", names)
	}

	var full []map[string]interface{}
	getJSON(t, srv.HandleSearch, "/search?term=cafe&full=true", &full)
	if len(full) != 0 {
		t.Errorf("full results = %v, want empty", full)
	}
}

func TestRasterOverlaysStoredRoute(t *testing.T) {
	srv := testContext(t)

	var ids []int64
	getJSON(t, srv.HandleRoute, "/route?start_lon=-122.260&start_lat=37.870&end_lon=-122.250&end_lat=37.872", &ids)
	if len(ids) == 0 {
		t.Fatal("route setup failed")
	}

	// Two renders of the same stored route both succeed: the stored
	// route is read, never consumed.
	for i := 0; i < 2; i++ {
		var resp map[string]interface{}
		url := "/raster?ullon=-122.2998046875&ullat=37.892195547244356&lrlon=-122.2119140625&lrlat=37.82280243352756&w=256&h=256"
		getJSON(t, srv.HandleRaster, url, &resp)
		if resp["query_success"] != true {
			t.Fatalf("render %d failed", i)
		}
	}
}
