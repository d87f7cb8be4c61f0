// Package globe is the state-synchronization engine behind the globe view:
// it ingests the datasets, keeps the search result and the selection, drives
// the pulse animation and projects all of it into a renderable frame.
package globe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joeblew999/plat-globe/internal/datasource"
	"github.com/joeblew999/plat-globe/internal/logger"
	"github.com/joeblew999/plat-globe/internal/metrics"
	"github.com/joeblew999/plat-globe/internal/service"
)

// DefaultFetchTimeout bounds each detail fetch started by a click.
const DefaultFetchTimeout = 30 * time.Second

var (
	ErrUnknownEntity   = errors.New("unknown entity")
	ErrUnknownArc      = errors.New("unknown arc")
	ErrUnknownCategory = errors.New("unknown category")
)

// Engine owns the entity store, the search query, the selection, the current
// flight paths and the animation tick. All methods are safe for concurrent
// use; every change is published on the bus.
type Engine struct {
	src          datasource.Source
	store        *service.EntityStore
	bus          *service.EventBus
	logger       *slog.Logger
	fetchTimeout time.Duration

	mu        sync.RWMutex
	query     string
	dismissed bool
	search    SearchResult
	sel       selector
	flights   []service.FlightPath
	tick      uint64

	inflight sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithBus sets the bus changes are published on.
func WithBus(b *service.EventBus) Option {
	return func(e *Engine) {
		e.bus = b
	}
}

// WithFetchTimeout bounds detail fetches.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.fetchTimeout = d
		}
	}
}

// New creates an engine reading from src. Nothing is fetched until Load.
func New(src datasource.Source, opts ...Option) *Engine {
	e := &Engine{
		src:          src,
		store:        service.NewEntityStore(),
		fetchTimeout: DefaultFetchTimeout,
		search:       Filter("", nil, nil, nil),
		flights:      []service.FlightPath{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.L()
	}
	if e.bus == nil {
		e.bus = service.NewEventBus()
	}
	return e
}

// Store returns the entity store. Callers must treat it as read-only.
func (e *Engine) Store() *service.EntityStore { return e.store }

// Bus returns the bus changes are published on.
func (e *Engine) Bus() *service.EventBus { return e.bus }

// Load fetches every category concurrently. A failing category is logged and
// stays empty without affecting the others; the failures are returned joined.
func (e *Engine) Load(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	collect := func(err error) error {
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
		return nil
	}

	g.Go(func() error {
		return collect(load(ctx, e, datasource.OpListAirports, service.CategoryAirport, e.src.ListAirports, e.store.IngestAirports))
	})
	g.Go(func() error {
		return collect(load(ctx, e, datasource.OpListVolcanoes, service.CategoryVolcano, e.src.ListVolcanoes, e.store.IngestVolcanoes))
	})
	g.Go(func() error {
		return collect(load(ctx, e, datasource.OpListAirlines, service.CategoryAirline, e.src.ListAirlines, e.store.IngestAirlines))
	})
	g.Go(func() error {
		return collect(load(ctx, e, datasource.OpListRoutes, service.CategoryRoute, e.src.ListRoutes, e.store.IngestRoutes))
	})
	_ = g.Wait()

	return errors.Join(errs...)
}

func load[T any](ctx context.Context, e *Engine, op string, cat service.Category,
	fetch func(context.Context) ([]T, error), ingest func([]T)) error {
	start := time.Now()
	items, err := fetch(ctx)
	e.observe(op, cat, start, err)
	if err != nil {
		return err
	}

	e.mu.Lock()
	ingest(items)
	if cat != service.CategoryVolcano {
		e.refreshSearch()
	}
	e.mu.Unlock()
	e.logger.Info("ingested", "category", cat, "count", len(items))

	if cat != service.CategoryVolcano {
		e.publish(service.ResourceSearch, "updated", string(cat))
	}
	e.publish(service.ResourceStore, "loaded", string(cat))
	return nil
}

func (e *Engine) observe(op string, cat service.Category, start time.Time, err error) {
	metrics.FetchesTotal.WithLabelValues(op).Inc()
	metrics.FetchDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.FetchFailuresTotal.WithLabelValues(op).Inc()
		e.logger.Error("fetch failed", "op", op, "category", cat, "err", err)
	}
}

// refreshSearch recomputes the search result. Callers hold e.mu.
func (e *Engine) refreshSearch() {
	e.search = Filter(e.query, e.store.Airports(), e.store.Airlines(), e.store.Routes())
}

func (e *Engine) publish(resource, action, id string) {
	e.bus.Publish(service.Event{Resource: resource, Action: action, ID: id})
}

// Run feeds ticks from ts into the animation until ctx is done or the source
// closes.
func (e *Engine) Run(ctx context.Context, ts TickSource) error {
	ticks := ts.Ticks(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-ticks:
			if !ok {
				return nil
			}
			e.Advance(t)
		}
	}
}

// Advance records the latest tick. Ticks are only announced while volcanoes
// are present, since nothing else animates.
func (e *Engine) Advance(tick uint64) {
	e.mu.Lock()
	e.tick = tick
	e.mu.Unlock()
	metrics.TicksTotal.Inc()

	if len(e.store.Volcanoes()) == 0 {
		return
	}
	e.bus.Publish(service.Event{Resource: service.ResourceTick, Action: "advanced", Tick: tick})
}

// SetQuery replaces the search query and reopens the dropdown.
func (e *Engine) SetQuery(q string) SearchResult {
	e.mu.Lock()
	e.query = q
	e.dismissed = false
	e.refreshSearch()
	res := e.search
	e.mu.Unlock()

	e.publish(service.ResourceSearch, "updated", q)
	return res
}

// DismissDropdown hides the dropdown until the query changes again.
func (e *Engine) DismissDropdown() {
	e.mu.Lock()
	e.dismissed = true
	e.mu.Unlock()

	e.publish(service.ResourceSearch, "dismissed", "")
}

// SelectPoint makes the airport or volcano with id the active point and
// starts its detail fetch. Any earlier point selection is replaced; the
// flight detail is left alone.
func (e *Engine) SelectPoint(cat service.Category, id int) error {
	switch cat {
	case service.CategoryAirport:
		a, ok := e.store.Airport(id)
		if !ok {
			return fmt.Errorf("%w: airport %d", ErrUnknownEntity, id)
		}
		e.mu.Lock()
		token := e.sel.selectPoint(PointSelection{Category: cat, Airport: &a})
		e.mu.Unlock()
		e.publish(service.ResourceSelection, "selected", pointID(cat, id))

		e.fetchAsync(datasource.OpFlightPaths, cat, token, func(ctx context.Context) (func() service.Event, error) {
			paths, err := e.src.FlightPathsForAirport(ctx, id)
			if err != nil {
				return nil, err
			}
			return func() service.Event {
				e.flights = paths
				if e.flights == nil {
					e.flights = []service.FlightPath{}
				}
				return service.Event{Resource: service.ResourceFlights, Action: "replaced", ID: strconv.Itoa(id)}
			}, nil
		})

	case service.CategoryVolcano:
		v, ok := e.store.Volcano(id)
		if !ok {
			return fmt.Errorf("%w: volcano %d", ErrUnknownEntity, id)
		}
		e.mu.Lock()
		token := e.sel.selectPoint(PointSelection{Category: cat, Volcano: &v})
		e.mu.Unlock()
		e.publish(service.ResourceSelection, "selected", pointID(cat, id))

		e.fetchAsync(datasource.OpVolcanoDetail, cat, token, func(ctx context.Context) (func() service.Event, error) {
			d, err := e.src.VolcanoDetail(ctx, id)
			if err != nil {
				return nil, err
			}
			d.ID = id
			return func() service.Event {
				e.sel.enrichVolcano(d)
				return service.Event{Resource: service.ResourceSelection, Action: "enriched", ID: pointID(cat, id)}
			}, nil
		})

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	return nil
}

func pointID(cat service.Category, id int) string {
	return string(cat) + "/" + strconv.Itoa(id)
}

// fetchAsync runs fetch in the background. Its result is applied under the
// engine lock only if token still names the current point selection;
// otherwise it is dropped and counted.
func (e *Engine) fetchAsync(op string, cat service.Category, token uint64,
	fetch func(ctx context.Context) (func() service.Event, error)) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.fetchTimeout)
		defer cancel()

		start := time.Now()
		apply, err := fetch(ctx)
		e.observe(op, cat, start, err)
		if err != nil {
			return
		}

		e.mu.Lock()
		if !e.sel.current(token) {
			current := e.sel.token
			e.mu.Unlock()
			metrics.StaleResponsesTotal.WithLabelValues(op).Inc()
			e.logger.Info("discarded stale response", "op", op, "token", token, "current", current)
			return
		}
		ev := apply()
		e.mu.Unlock()

		e.bus.Publish(ev)
	}()
}

// SelectArc shows the detail of the current flight path with index.
func (e *Engine) SelectArc(index int) error {
	e.mu.Lock()
	found := false
	for _, fp := range e.flights {
		if fp.Index == index {
			e.sel.selectFlight(fp)
			found = true
			break
		}
	}
	e.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: %d", ErrUnknownArc, index)
	}
	e.publish(service.ResourceSelection, "selected", "flight/"+strconv.Itoa(index))
	return nil
}

// CloseDetail clears one detail panel; the other is untouched.
func (e *Engine) CloseDetail(slot DetailSlot) {
	e.mu.Lock()
	e.sel.close(slot)
	e.mu.Unlock()

	e.publish(service.ResourceSelection, "cleared", string(slot))
}

// Reset clears the query, both details and the flight paths.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.query = ""
	e.dismissed = false
	e.refreshSearch()
	e.sel.reset()
	e.flights = []service.FlightPath{}
	e.mu.Unlock()

	e.publish(service.ResourceSearch, "reset", "")
	e.publish(service.ResourceSelection, "reset", "")
	e.publish(service.ResourceFlights, "reset", "")
}

// TogglePulse flips the pulsing flag of one volcano, including the selected
// copy when that volcano is the point selection.
func (e *Engine) TogglePulse(id int) (bool, error) {
	e.mu.Lock()
	on, err := e.store.TogglePulse(id)
	if err == nil {
		e.sel.setPulsing(id, on)
	}
	e.mu.Unlock()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnknownEntity, err)
	}
	e.publish(service.ResourceStore, "pulse", pointID(service.CategoryVolcano, id))
	return on, nil
}

// Wait blocks until every detail fetch started so far has finished.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

// Snapshot is a consistent read-only view of the engine: store writes and
// the search refresh they trigger happen under one engine lock. Slices and
// pointers are shared with the engine and must not be modified.
type Snapshot struct {
	Airports          []service.Airport
	Volcanoes         []service.Volcano
	Search            SearchResult
	DropdownDismissed bool
	Selection         Selection
	Flights           []service.FlightPath
	Tick              uint64
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Snapshot{
		Airports:          e.store.Airports(),
		Volcanoes:         e.store.Volcanoes(),
		Search:            e.search,
		DropdownDismissed: e.dismissed,
		Selection:         e.sel.sel,
		Flights:           e.flights,
		Tick:              e.tick,
	}
}
