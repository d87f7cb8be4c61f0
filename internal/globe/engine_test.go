package globe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/joeblew999/plat-globe/internal/datasource"
	"github.com/joeblew999/plat-globe/internal/metrics"
	"github.com/joeblew999/plat-globe/internal/service"
)

func heathrowSource() *datasource.Static {
	return &datasource.Static{
		Airports: []service.Airport{
			{ID: 1, Name: "Heathrow", Code: "LHR", City: "London", Lat: 51.5, Lng: -0.45},
			{ID: 2, Name: "Charles de Gaulle", Code: "CDG", City: "Paris", Lat: 49.01, Lng: 2.55},
		},
		Volcanoes: []service.Volcano{
			{ID: 7, Country: "Italy", Lat: 37.73, Lng: 15.0, VMag: 5},
			{ID: 8, Country: "Iceland", Lat: 63.98, Lng: -19.7, VMag: 3},
		},
		Airlines: []service.Airline{{ID: 10, Name: "British Airways"}},
		Routes:   []service.Route{{ID: 100, AirlineID: 10, SourceID: 1, DestinationID: 2}},
		FlightPaths: map[int][]service.FlightPath{
			1: {
				{Index: 0, AirlineCode: "BA", SourceCode: "LHR", DestCode: "CDG", StartLat: 51.5, StartLng: -0.45, EndLat: 49.01, EndLng: 2.55},
				{Index: 1, AirlineCode: "BA", SourceCode: "LHR", DestCode: "JFK", StartLat: 51.5, StartLng: -0.45, EndLat: 40.64, EndLng: -73.78},
			},
			2: {
				{Index: 5, AirlineCode: "AF", SourceCode: "CDG", DestCode: "LHR", StartLat: 49.01, StartLng: 2.55, EndLat: 51.5, EndLng: -0.45},
			},
		},
		Details: map[int]service.Volcano{
			7: {Name: "Etna", Country: "Italy", Location: "Sicily", Year: 2021, Month: 2, Day: 16, Elevation: 3329},
		},
	}
}

func newTestEngine(t *testing.T, src datasource.Source) *Engine {
	t.Helper()
	e := New(src,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithFetchTimeout(5*time.Second),
	)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return e
}

// gatedSource holds flight path responses for gated airports until released.
type gatedSource struct {
	*datasource.Static
	gates map[int]chan struct{}
}

func (g *gatedSource) FlightPathsForAirport(ctx context.Context, id int) ([]service.FlightPath, error) {
	if gate, ok := g.gates[id]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.Static.FlightPathsForAirport(ctx, id)
}

func TestEngine_HeathrowScenario(t *testing.T) {
	e := newTestEngine(t, heathrowSource())

	res := e.SetQuery("lhr")
	if len(res.Airports) != 1 || res.Airports[0].ID != 1 || !res.ShowDropdown() {
		t.Fatalf("SetQuery(lhr) = %+v", res)
	}

	if err := e.SelectPoint(service.CategoryAirport, 1); err != nil {
		t.Fatalf("SelectPoint() error = %v", err)
	}
	e.Wait()

	s := e.Snapshot()
	if s.Selection.Point == nil || s.Selection.Point.Category != service.CategoryAirport || s.Selection.Point.ID() != 1 {
		t.Errorf("selection = %+v, want airport 1", s.Selection.Point)
	}
	if len(s.Flights) != 2 {
		t.Errorf("flights = %d, want 2", len(s.Flights))
	}
}

func TestEngine_PartialLoad(t *testing.T) {
	src := heathrowSource()
	src.Errors = map[string]error{
		datasource.OpListAirlines: errors.New("backend down"),
		datasource.OpListRoutes:   errors.New("backend down"),
	}
	e := New(src, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	err := e.Load(context.Background())
	if !errors.Is(err, datasource.ErrFetchFailure) {
		t.Fatalf("Load() error = %v, want ErrFetchFailure", err)
	}

	store := e.Store()
	if !store.Loaded(service.CategoryAirport) || !store.Loaded(service.CategoryVolcano) {
		t.Error("healthy categories not loaded")
	}
	if store.Loaded(service.CategoryAirline) || len(store.Airlines()) != 0 {
		t.Error("failed category should stay empty")
	}

	// Search degrades to airport-only matching.
	res := e.SetQuery("british")
	if res.Airline != nil || len(res.Airports) != 0 {
		t.Errorf("SetQuery(british) = %+v", res)
	}
	f := Project(e.Snapshot())
	if len(f.Points) != 2 {
		t.Errorf("points = %d, want the 2 volcanoes", len(f.Points))
	}
}

func TestEngine_NothingLoaded(t *testing.T) {
	e := New(&datasource.Static{}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	e.SetQuery("x")
	e.Advance(3)
	f := Project(e.Snapshot())
	if len(f.Points) != 0 || len(f.Arcs) != 0 || f.ShowDropdown {
		t.Errorf("frame = %+v, want empty", f)
	}
	if err := e.SelectPoint(service.CategoryAirport, 1); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("SelectPoint() error = %v, want ErrUnknownEntity", err)
	}
}

func TestEngine_SelectPointExclusive(t *testing.T) {
	e := newTestEngine(t, heathrowSource())

	if err := e.SelectPoint(service.CategoryVolcano, 7); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectPoint(service.CategoryAirport, 1); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	p := e.Snapshot().Selection.Point
	if p == nil || p.Category != service.CategoryAirport || p.Volcano != nil {
		t.Fatalf("point = %+v, want only airport 1", p)
	}

	// Selecting the same airport again yields the same displayed state.
	before := Project(e.Snapshot())
	if err := e.SelectPoint(service.CategoryAirport, 1); err != nil {
		t.Fatal(err)
	}
	e.Wait()
	after := Project(e.Snapshot())
	if after.Selection.Point.ID() != before.Selection.Point.ID() || len(after.Arcs) != len(before.Arcs) {
		t.Errorf("reselect changed state: %+v -> %+v", before.Selection, after.Selection)
	}
}

func TestEngine_SelectPointErrors(t *testing.T) {
	e := newTestEngine(t, heathrowSource())

	if err := e.SelectPoint(service.CategoryVolcano, 999); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("unknown volcano error = %v", err)
	}
	if err := e.SelectPoint(service.CategoryAirline, 10); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("airline click error = %v", err)
	}
	if !e.Snapshot().Selection.Idle() {
		t.Error("failed selection changed state")
	}
}

func TestEngine_VolcanoDetailEnrichesSelection(t *testing.T) {
	e := newTestEngine(t, heathrowSource())

	if err := e.SelectPoint(service.CategoryVolcano, 7); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	v := e.Snapshot().Selection.Point.Volcano
	if v == nil || v.ID != 7 || v.Name != "Etna" || v.Year != 2021 || v.Location != "Sicily" {
		t.Fatalf("volcano = %+v, want enriched Etna", v)
	}
	if !v.Pulsing || v.VMag != 5 {
		t.Errorf("enrichment lost list fields: %+v", v)
	}
}

func TestEngine_FailedFlightFetchKeepsPreviousPaths(t *testing.T) {
	src := heathrowSource()
	e := newTestEngine(t, src)

	if err := e.SelectPoint(service.CategoryAirport, 1); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	src.Errors = map[string]error{datasource.OpFlightPaths: errors.New("timeout")}
	if err := e.SelectPoint(service.CategoryAirport, 2); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	s := e.Snapshot()
	if s.Selection.Point.ID() != 2 {
		t.Errorf("selection = %d, want 2", s.Selection.Point.ID())
	}
	if len(s.Flights) != 2 || s.Flights[0].SourceCode != "LHR" {
		t.Errorf("flights = %+v, want the two LHR paths", s.Flights)
	}
}

func TestEngine_StaleResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &gatedSource{Static: heathrowSource(), gates: map[int]chan struct{}{1: gate}}
	e := newTestEngine(t, src)
	stale := metrics.StaleResponsesTotal.WithLabelValues(datasource.OpFlightPaths)
	before := testutil.ToFloat64(stale)

	if err := e.SelectPoint(service.CategoryAirport, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectPoint(service.CategoryAirport, 2); err != nil {
		t.Fatal(err)
	}
	close(gate)
	e.Wait()

	if got := testutil.ToFloat64(stale) - before; got != 1 {
		t.Errorf("stale responses counted = %v, want 1", got)
	}

	s := e.Snapshot()
	if s.Selection.Point.ID() != 2 {
		t.Errorf("selection = %d, want 2", s.Selection.Point.ID())
	}
	if len(s.Flights) != 1 || s.Flights[0].Index != 5 {
		t.Errorf("flights = %+v, want only the CDG path", s.Flights)
	}
}

func TestEngine_ResetDiscardsInflightFlights(t *testing.T) {
	gate := make(chan struct{})
	src := &gatedSource{Static: heathrowSource(), gates: map[int]chan struct{}{1: gate}}
	e := newTestEngine(t, src)

	if err := e.SelectPoint(service.CategoryAirport, 1); err != nil {
		t.Fatal(err)
	}
	e.Reset()
	close(gate)
	e.Wait()

	if n := len(e.Snapshot().Flights); n != 0 {
		t.Errorf("flights = %d after reset, want 0", n)
	}
}

func TestEngine_ArcSelectionIndependent(t *testing.T) {
	e := newTestEngine(t, heathrowSource())

	if err := e.SelectArc(0); !errors.Is(err, ErrUnknownArc) {
		t.Errorf("SelectArc before flights error = %v, want ErrUnknownArc", err)
	}

	if err := e.SelectPoint(service.CategoryAirport, 1); err != nil {
		t.Fatal(err)
	}
	e.Wait()
	if err := e.SelectArc(1); err != nil {
		t.Fatalf("SelectArc(1) error = %v", err)
	}

	// A new point selection leaves the flight detail alone.
	if err := e.SelectPoint(service.CategoryVolcano, 8); err != nil {
		t.Fatal(err)
	}
	e.Wait()
	s := e.Snapshot()
	if s.Selection.Flight == nil || s.Selection.Flight.DestCode != "JFK" {
		t.Errorf("flight detail = %+v, want LHR-JFK", s.Selection.Flight)
	}

	e.CloseDetail(SlotPoint)
	s = e.Snapshot()
	if !s.Selection.Idle() || s.Selection.Flight == nil {
		t.Errorf("close point: %+v", s.Selection)
	}

	e.CloseDetail(SlotFlight)
	if e.Snapshot().Selection.Flight != nil {
		t.Error("flight detail still shown")
	}
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t, heathrowSource())

	e.SetQuery("lhr")
	if err := e.SelectPoint(service.CategoryAirport, 1); err != nil {
		t.Fatal(err)
	}
	e.Wait()
	if err := e.SelectArc(0); err != nil {
		t.Fatal(err)
	}

	e.Reset()
	f := Project(e.Snapshot())
	if f.Query != "" || f.ShowDropdown || len(f.Arcs) != 0 {
		t.Errorf("frame after reset = query %q dropdown %v arcs %d", f.Query, f.ShowDropdown, len(f.Arcs))
	}
	if f.Selection.Point != nil || f.Selection.Flight != nil {
		t.Errorf("selection after reset = %+v", f.Selection)
	}
	if airports := countCategory(f.Points, service.CategoryAirport); airports != 2 {
		t.Errorf("visible airports = %d, want 2", airports)
	}
}

func TestEngine_TogglePulse(t *testing.T) {
	e := newTestEngine(t, heathrowSource())

	on, err := e.TogglePulse(7)
	if err != nil || on {
		t.Fatalf("TogglePulse(7) = %v, %v; want false, nil", on, err)
	}
	vs := e.Snapshot().Volcanoes
	if vs[0].Pulsing || !vs[1].Pulsing {
		t.Errorf("pulsing = %v, %v; want false, true", vs[0].Pulsing, vs[1].Pulsing)
	}

	if _, err := e.TogglePulse(999); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("TogglePulse(999) error = %v", err)
	}
}

func TestEngine_RunConsumesTicks(t *testing.T) {
	e := newTestEngine(t, heathrowSource())
	events := e.Bus().Subscribe()
	defer e.Bus().Unsubscribe(events)

	ticks := make(ManualTicks)
	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background(), ticks) }()

	for i := uint64(1); i <= 3; i++ {
		ticks <- i
	}
	close(ticks)
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := e.Snapshot().Tick; got != 3 {
		t.Errorf("tick = %d, want 3", got)
	}

	var seen int
	for len(events) > 0 {
		if ev := <-events; ev.Resource == service.ResourceTick {
			seen++
		}
	}
	if seen != 3 {
		t.Errorf("tick events = %d, want 3", seen)
	}
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	e := newTestEngine(t, heathrowSource())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx, make(ManualTicks)); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func countCategory(points []Point, cat service.Category) int {
	n := 0
	for _, p := range points {
		if p.Category == cat {
			n++
		}
	}
	return n
}

func TestEngine_TogglePulseUpdatesSelectedVolcano(t *testing.T) {
	e := newTestEngine(t, heathrowSource())

	if err := e.SelectPoint(service.CategoryVolcano, 7); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	on, err := e.TogglePulse(7)
	if err != nil {
		t.Fatal(err)
	}
	f := Project(e.Snapshot())

	var point *Point
	for i := range f.Points {
		if f.Points[i].Category == service.CategoryVolcano && f.Points[i].ID == 7 {
			point = &f.Points[i]
		}
	}
	if point == nil || point.Pulsing != on {
		t.Fatalf("point = %+v, want pulsing=%v", point, on)
	}
	if sel := f.Selection.Point.Volcano; sel.Pulsing != on || sel.Name != "Etna" {
		t.Errorf("selected volcano = %+v, want pulsing=%v with detail kept", sel, on)
	}

	if _, err := e.TogglePulse(8); err != nil {
		t.Fatal(err)
	}
	if got := e.Snapshot().Selection.Point.Volcano.Pulsing; got != on {
		t.Errorf("toggling another volcano changed the selection to %v", got)
	}
}

func TestEngine_SnapshotSearchMatchesStore(t *testing.T) {
	e := New(heathrowSource(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	e.SetQuery("a")

	done := make(chan struct{})
	mismatch := make(chan Snapshot, 1)
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			s := e.Snapshot()
			want := Filter(s.Search.Query, s.Airports, nil, nil)
			if len(want.Airports) != len(s.Search.Airports) {
				mismatch <- s
				return
			}
		}
	}()

	if err := e.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-done
	select {
	case s := <-mismatch:
		t.Errorf("search airports = %d, store airports = %d", len(s.Search.Airports), len(s.Airports))
	default:
	}
}
