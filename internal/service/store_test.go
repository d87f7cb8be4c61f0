package service

import (
	"math"
	"sync"
	"testing"
)

func TestEntityStore_EmptyCategories(t *testing.T) {
	s := NewEntityStore()

	if got := s.Airports(); len(got) != 0 {
		t.Errorf("Airports() = %v, want empty", got)
	}
	if got := s.Volcanoes(); len(got) != 0 {
		t.Errorf("Volcanoes() = %v, want empty", got)
	}
	if got := s.Airlines(); len(got) != 0 {
		t.Errorf("Airlines() = %v, want empty", got)
	}
	if got := s.Routes(); len(got) != 0 {
		t.Errorf("Routes() = %v, want empty", got)
	}
	if s.Loaded(CategoryAirport) {
		t.Error("Loaded(airport) = true before ingest")
	}
}

func TestEntityStore_LastWriteWins(t *testing.T) {
	s := NewEntityStore()
	s.IngestAirports([]Airport{{ID: 1, Name: "Heathrow"}})
	s.IngestAirports([]Airport{{ID: 2, Name: "Gatwick"}, {ID: 3, Name: "Stansted"}})

	got := s.Airports()
	if len(got) != 2 || got[0].ID != 2 {
		t.Fatalf("Airports() = %v, want the second collection", got)
	}
	if !s.Loaded(CategoryAirport) {
		t.Error("Loaded(airport) = false after ingest")
	}
	if s.Loaded(CategoryVolcano) {
		t.Error("ingesting airports marked volcanoes loaded")
	}
}

func TestEntityStore_VolcanoesStartPulsing(t *testing.T) {
	s := NewEntityStore()
	s.IngestVolcanoes([]Volcano{{ID: 1}, {ID: 2, Pulsing: false}})

	for _, v := range s.Volcanoes() {
		if !v.Pulsing {
			t.Errorf("volcano %d Pulsing = false, want true", v.ID)
		}
	}
}

func TestEntityStore_TogglePulse(t *testing.T) {
	s := NewEntityStore()
	s.IngestVolcanoes([]Volcano{{ID: 1}, {ID: 2}, {ID: 3}})

	before := s.Volcanoes()

	on, err := s.TogglePulse(2)
	if err != nil {
		t.Fatal(err)
	}
	if on {
		t.Error("TogglePulse(2) = true, want false")
	}

	for _, v := range s.Volcanoes() {
		want := v.ID != 2
		if v.Pulsing != want {
			t.Errorf("volcano %d Pulsing = %v, want %v", v.ID, v.Pulsing, want)
		}
	}

	// Slices handed out earlier are never mutated.
	if !before[1].Pulsing {
		t.Error("TogglePulse mutated a previously returned slice")
	}

	if _, err := s.TogglePulse(99); err == nil {
		t.Error("TogglePulse(99) succeeded for unknown volcano")
	}
}

func TestEntityStore_Lookup(t *testing.T) {
	s := NewEntityStore()
	s.IngestAirports([]Airport{{ID: 1, Code: "LHR"}})
	s.IngestVolcanoes([]Volcano{{ID: 7, Country: "Iceland"}})

	if a, ok := s.Airport(1); !ok || a.Code != "LHR" {
		t.Errorf("Airport(1) = %v, %v", a, ok)
	}
	if _, ok := s.Airport(2); ok {
		t.Error("Airport(2) found")
	}
	if v, ok := s.Volcano(7); !ok || v.Country != "Iceland" {
		t.Errorf("Volcano(7) = %v, %v", v, ok)
	}
}

func TestEntityStore_ConcurrentIngest(t *testing.T) {
	s := NewEntityStore()

	var wg sync.WaitGroup
	wg.Add(4)
	go func() { defer wg.Done(); s.IngestAirports([]Airport{{ID: 1}}) }()
	go func() { defer wg.Done(); s.IngestVolcanoes([]Volcano{{ID: 1}}) }()
	go func() { defer wg.Done(); s.IngestAirlines([]Airline{{ID: 1}}) }()
	go func() { defer wg.Done(); s.IngestRoutes([]Route{{ID: 1}}) }()
	wg.Wait()

	for _, c := range []Category{CategoryAirport, CategoryVolcano, CategoryAirline, CategoryRoute} {
		if !s.Loaded(c) {
			t.Errorf("Loaded(%s) = false", c)
		}
	}
}

func TestVolcano_WithDetail(t *testing.T) {
	light := Volcano{ID: 5, Country: "Italy", Lat: 37.7, Lng: 15.0, VMag: 6.6, Pulsing: false}
	detail := Volcano{Name: "Etna", Location: "Mediterranean", Elevation: 3300, Year: 2021, Type: "Stratovolcano"}

	got := light.WithDetail(detail)
	if got.ID != 5 || got.Pulsing {
		t.Errorf("identity lost: %+v", got)
	}
	if got.Name != "Etna" || got.Elevation != 3300 || got.Year != 2021 {
		t.Errorf("detail not applied: %+v", got)
	}
	if got.Country != "Italy" || got.VMag != 6.6 || got.Lat != 37.7 {
		t.Errorf("known fields overwritten by zero values: %+v", got)
	}
}

func TestFlightPath_DistanceKm(t *testing.T) {
	// London Heathrow to Paris CDG is roughly 350 km.
	fp := FlightPath{StartLat: 51.47, StartLng: -0.4543, EndLat: 49.0097, EndLng: 2.5479}
	if d := fp.DistanceKm(); math.Abs(d-347) > 10 {
		t.Errorf("DistanceKm() = %.1f, want ~347", d)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("volcano"); err != nil || c != CategoryVolcano {
		t.Errorf("ParseCategory(volcano) = %q, %v", c, err)
	}
	if _, err := ParseCategory("lake"); err == nil {
		t.Error("ParseCategory(lake) succeeded")
	}
}
