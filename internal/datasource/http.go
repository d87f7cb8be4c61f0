package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/joeblew999/plat-globe/internal/service"
)

const (
	// DefaultBaseURL is where the original dataset backend listens.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit paces requests per second against the backend.
	DefaultRateLimit = 20.0
)

// Endpoints maps each operation to its backend path.
type Endpoints struct {
	Airports      string
	Volcanoes     string
	Airlines      string
	Routes        string
	FlightPaths   string // takes ?airportId=
	VolcanoDetail string // takes ?volcId=
}

// DefaultEndpoints are the paths served by the dataset backend.
var DefaultEndpoints = Endpoints{
	Airports:      "/airports",
	Volcanoes:     "/volcanoes",
	Airlines:      "/airline",
	Routes:        "/routes",
	FlightPaths:   "/flight-data",
	VolcanoDetail: "/volc-data",
}

// HTTP is a rate-limited client for the dataset backend.
type HTTP struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	endpoints  Endpoints
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.httpClient = hc
	}
}

// WithRateLimit sets the request pace; zero or less disables pacing.
func WithRateLimit(perSecond float64) HTTPOption {
	return func(h *HTTP) {
		if perSecond <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithEndpoints overrides the backend paths.
func WithEndpoints(e Endpoints) HTTPOption {
	return func(h *HTTP) {
		h.endpoints = e
	}
}

// NewHTTP creates a source reading from baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	h := &HTTP{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    strings.TrimRight(baseURL, "/"),
		endpoints:  DefaultEndpoints,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListAirports fetches every airport.
func (h *HTTP) ListAirports(ctx context.Context) ([]service.Airport, error) {
	var wire []airportWire
	if err := h.get(ctx, OpListAirports, h.endpoints.Airports, nil, &wire); err != nil {
		return nil, err
	}
	return convert(wire, airportWire.airport), nil
}

// ListVolcanoes fetches the lightweight volcano list.
func (h *HTTP) ListVolcanoes(ctx context.Context) ([]service.Volcano, error) {
	var wire []volcanoWire
	if err := h.get(ctx, OpListVolcanoes, h.endpoints.Volcanoes, nil, &wire); err != nil {
		return nil, err
	}
	return convert(wire, volcanoWire.volcano), nil
}

// ListAirlines fetches every airline.
func (h *HTTP) ListAirlines(ctx context.Context) ([]service.Airline, error) {
	var wire []airlineWire
	if err := h.get(ctx, OpListAirlines, h.endpoints.Airlines, nil, &wire); err != nil {
		return nil, err
	}
	return convert(wire, airlineWire.airline), nil
}

// ListRoutes fetches every route.
func (h *HTTP) ListRoutes(ctx context.Context) ([]service.Route, error) {
	var wire []routeWire
	if err := h.get(ctx, OpListRoutes, h.endpoints.Routes, nil, &wire); err != nil {
		return nil, err
	}
	return convert(wire, routeWire.route), nil
}

// FlightPathsForAirport fetches the arcs departing an airport.
func (h *HTTP) FlightPathsForAirport(ctx context.Context, airportID int) ([]service.FlightPath, error) {
	q := url.Values{"airportId": {strconv.Itoa(airportID)}}
	var wire []flightPathWire
	if err := h.get(ctx, OpFlightPaths, h.endpoints.FlightPaths, q, &wire); err != nil {
		return nil, err
	}
	return convert(wire, flightPathWire.flightPath), nil
}

// VolcanoDetail fetches the full record for one volcano. The backend omits
// the identifier, so it is filled in from the request.
func (h *HTTP) VolcanoDetail(ctx context.Context, volcanoID int) (service.Volcano, error) {
	q := url.Values{"volcId": {strconv.Itoa(volcanoID)}}
	var wire volcanoWire
	if err := h.get(ctx, OpVolcanoDetail, h.endpoints.VolcanoDetail, q, &wire); err != nil {
		return service.Volcano{}, err
	}
	v := wire.volcano()
	v.ID = volcanoID
	return v, nil
}

func (h *HTTP) get(ctx context.Context, op, path string, q url.Values, out any) error {
	if err := h.limiter.Wait(ctx); err != nil {
		return fetchErr(op, fmt.Errorf("rate limiter: %w", err))
	}

	u := h.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fetchErr(op, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fetchErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fetchErr(op, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fetchErr(op, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
