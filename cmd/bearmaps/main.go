package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/brandonteo/BearMaps/internal/config"
	"github.com/brandonteo/BearMaps/internal/graph"
	"github.com/brandonteo/BearMaps/internal/logger"
	"github.com/brandonteo/BearMaps/internal/metrics"
	"github.com/brandonteo/BearMaps/internal/server"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file (optional)"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on" default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"    default:"4567"`
	OSMFile    string `short:"o" long:"osm"    env:"OSM_FILE"       description:"Road network OSM XML file (overrides config)"`
	TilesDir   string `short:"t" long:"tiles"  env:"TILES_DIR"      description:"Tile pyramid directory (overrides config)"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		cfg, err = config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}
	if opts.OSMFile != "" {
		cfg.OSMFile = opts.OSMFile
	}
	if opts.TilesDir != "" {
		cfg.TilesDir = opts.TilesDir
	}

	g, err := graph.LoadOSM(cfg.OSMFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.OSMFile).Msg("Failed to load road network")
	}

	srv, err := server.NewContext(cfg, g)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server context")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/raster", srv.HandleRaster)
	mux.HandleFunc("/route", srv.HandleRoute)
	mux.HandleFunc("/route/geojson", srv.HandleRouteGeoJSON)
	mux.HandleFunc("/clear_route", srv.HandleClearRoute)
	mux.HandleFunc("/search", srv.HandleSearch)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", srv.StaticHandler())

	handler := server.RequestLogger(server.CORS(mux))

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("graph_nodes", g.NodeCount()).
		Int("max_depth", cfg.MaxDepth).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
