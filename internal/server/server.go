package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-globe/internal/api"
	apiglobe "github.com/joeblew999/plat-globe/internal/api/globe"
	"github.com/joeblew999/plat-globe/internal/datasource"
	"github.com/joeblew999/plat-globe/internal/db"
	"github.com/joeblew999/plat-globe/internal/globe"
	"github.com/joeblew999/plat-globe/internal/logger"
	"github.com/joeblew999/plat-globe/internal/metrics"
	"github.com/joeblew999/plat-globe/internal/templates"
)

// Data source kinds accepted by Config.Source.
const (
	SourceHTTP   = "http"
	SourceDuckDB = "duckdb"
	SourceStatic = "static"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string // CSV dataset and DuckDB file for the duckdb source
	WebDir  string // Path to web/ directory for static files and page overrides

	// Source is http, duckdb or static.
	Source     string
	BackendURL string
	// RateLimit caps backend requests per second; 0 means unlimited.
	RateLimit    float64
	TickInterval time.Duration
	FetchTimeout time.Duration
}

// Server is the globe HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	engine   *globe.Engine
	renderer *templates.Renderer
	logger   *slog.Logger
}

// New creates a globe server. Nothing is fetched until Start.
func New(cfg Config) (*Server, error) {
	log := logger.L()

	src, err := newSource(cfg, log)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("plat-globe API", api.Version)
	humaConfig.Info.Description = "Interactive globe of airports, volcanoes and flight paths."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	renderer := templates.Default()
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := templates.New(fragmentsDir); err == nil {
			renderer = r
			log.Info("loaded fragment templates", "dir", fragmentsDir)
		}
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humago.New(mux, humaConfig),
		engine:   globe.New(src, globe.WithLogger(log), globe.WithFetchTimeout(cfg.FetchTimeout)),
		renderer: renderer,
		logger:   log,
	}
	s.routes()
	return s, nil
}

func newSource(cfg Config, log *slog.Logger) (datasource.Source, error) {
	switch cfg.Source {
	case SourceHTTP, "":
		return datasource.NewHTTP(cfg.BackendURL, datasource.WithRateLimit(cfg.RateLimit)), nil
	case SourceDuckDB:
		conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "globe"})
		if err != nil {
			return nil, err
		}
		return datasource.NewDuckDB(context.Background(), conn, cfg.DataDir, datasource.WithDuckDBLogger(log))
	case SourceStatic:
		return datasource.Demo(), nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Engine returns the globe engine behind the server.
func (s *Server) Engine() *globe.Engine { return s.engine }

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI { return s.humaAPI.OpenAPI() }

// Start loads the datasets and then drives the animation until ctx is done.
// Load failures leave the affected categories empty and are not fatal.
func (s *Server) Start(ctx context.Context) error {
	if err := s.engine.Load(ctx); err != nil {
		s.logger.Warn("initial load incomplete", "err", err)
	}
	err := s.engine.Run(ctx, globe.IntervalTicks{Interval: s.config.TickInterval})
	s.engine.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

func (s *Server) routes() {
	// Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.engine)
	huma.AutoRegister(s.humaAPI, api.NewInfoHandler(s.engine, s.sourceName()))

	// Datastar SSE routes driving the globe page
	ctrl := globe.NewController(s.engine, apiglobe.NewSurface(s.engine.Bus()))
	apiglobe.NewHandler(ctrl, s.renderer).RegisterRoutes(s.humaAPI)

	s.mux.Handle("/metrics", metrics.Handler())

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Page routes
	s.mux.HandleFunc("/viewer", s.handleViewer)
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) sourceName() string {
	if s.config.Source == "" {
		return SourceHTTP
	}
	return s.config.Source
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-globe",
		"status":  "running",
		"viewer":  "/viewer",
	})
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	page, err := templates.Page(s.config.WebDir, "viewer.html")
	if err != nil {
		http.Error(w, "viewer page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
