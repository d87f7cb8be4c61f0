package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-globe/internal/globe"
	"github.com/joeblew999/plat-globe/internal/logger"
	"github.com/joeblew999/plat-globe/internal/server"
)

// Options defines all CLI flags and env vars for the globe server.
// Flags: --host, --port, --data-dir, --web-dir, --source, --backend-url, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_SOURCE, SERVICE_BACKEND_URL, ...
type Options struct {
	Host           string `doc:"Host to bind to" default:"0.0.0.0"`
	Port           int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir        string `doc:"Directory holding the CSV dataset" default:".data"`
	WebDir         string `doc:"Path to web/ directory" default:"web"`
	Source         string `doc:"Data source: http, duckdb or static" default:"http"`
	BackendURL     string `doc:"Base URL of the data backend" default:"http://127.0.0.1:8000"`
	RateLimit      int    `doc:"Backend requests per second, 0 for unlimited" default:"20"`
	TickMs         int    `doc:"Animation tick interval in milliseconds" default:"50"`
	FetchTimeoutMs int    `doc:"Detail fetch timeout in milliseconds" default:"30000"`
	LogLevel       string `doc:"Log level: debug, info, warn, error" default:"info"`
	LogFormat      string `doc:"Log format: text or json" default:"text"`
	LogFile        string `doc:"Rotating log file, stderr when empty"`
}

func setupLogger(opts *Options) {
	logger.Setup(logger.Options{Level: opts.LogLevel, Format: opts.LogFormat, File: opts.LogFile})
}

func newServer(opts *Options) (*server.Server, error) {
	return server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		DataDir:      opts.DataDir,
		WebDir:       opts.WebDir,
		Source:       opts.Source,
		BackendURL:   opts.BackendURL,
		RateLimit:    float64(opts.RateLimit),
		TickInterval: time.Duration(opts.TickMs) * time.Millisecond,
		FetchTimeout: time.Duration(opts.FetchTimeoutMs) * time.Millisecond,
	})
}

func mustServer(opts *Options) *server.Server {
	srv, err := newServer(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}
	return srv
}

func writeOutput(v any, useYAML bool) {
	var output []byte
	var err error
	if useYAML {
		output, err = yaml.Marshal(v)
	} else {
		output, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(output))
}

func main() {
	_ = godotenv.Load(".env")

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		setupLogger(opts)
		srv := mustServer(opts)
		addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
		httpServer := &http.Server{Addr: addr, Handler: srv}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		hooks.OnStart(func() {
			defer cancel()
			defer srv.Close()

			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-globe server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Source:  %s\n", opts.Source)
			fmt.Println()
			fmt.Printf("  Pages:   %s/viewer\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics: %s/metrics\n", baseURL)
			fmt.Println()

			go func() {
				if err := srv.Start(ctx); err != nil {
					logger.L().Error("engine stopped", "err", err)
				}
			}()
			go func() {
				<-ctx.Done()
				shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				httpServer.Shutdown(shutdownCtx)
			}()

			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.L().Error("server error", "err", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			cancel()
		})
	})

	cli.Root().Use = "globe"
	cli.Root().Short = "Interactive globe of airports, volcanoes and flight paths"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := mustServer(opts)
			useYAML, _ := cmd.Flags().GetBool("yaml")
			writeOutput(srv.OpenAPI(), useYAML)
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// frame subcommand: load the datasets once and print the projected frame
	frameCmd := &cobra.Command{
		Use:   "frame",
		Short: "Load the datasets and print the projected frame",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			setupLogger(opts)
			srv := mustServer(opts)
			defer srv.Close()

			eng := srv.Engine()
			if err := eng.Load(cmd.Context()); err != nil {
				logger.L().Warn("load incomplete", "err", err)
			}
			if q, _ := cmd.Flags().GetString("query"); q != "" {
				eng.SetQuery(q)
			}

			frame := globe.Project(eng.Snapshot())
			if geo, _ := cmd.Flags().GetBool("geojson"); geo {
				b, err := frame.GeoJSON().MarshalJSON()
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error marshaling geojson: %v\n", err)
					os.Exit(1)
				}
				fmt.Println(string(b))
				return
			}
			useYAML, _ := cmd.Flags().GetBool("yaml")
			writeOutput(frame, useYAML)
		}),
	}
	frameCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	frameCmd.Flags().Bool("geojson", false, "Output points and arcs as GeoJSON")
	frameCmd.Flags().StringP("query", "q", "", "Apply a search query before projecting")
	cli.Root().AddCommand(frameCmd)

	cli.Run()
}
