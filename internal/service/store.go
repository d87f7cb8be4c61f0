package service

import (
	"fmt"
	"slices"
	"sync"
)

// EntityStore holds the raw collections for each category as received from
// the data source. Each ingest replaces the collection for its category;
// categories are independent of each other.
//
// Slices returned by the getters are shared and must not be modified. The
// store never mutates a slice it has handed out; updates copy first.
type EntityStore struct {
	mu        sync.RWMutex
	airports  []Airport
	volcanoes []Volcano
	airlines  []Airline
	routes    []Route
	loaded    map[Category]bool
}

// NewEntityStore creates an empty store.
func NewEntityStore() *EntityStore {
	return &EntityStore{loaded: make(map[Category]bool)}
}

// IngestAirports replaces the airport collection.
func (s *EntityStore) IngestAirports(airports []Airport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.airports = slices.Clone(airports)
	s.loaded[CategoryAirport] = true
}

// IngestVolcanoes replaces the volcano collection. Every volcano starts out
// pulsing.
func (s *EntityStore) IngestVolcanoes(volcanoes []Volcano) {
	v := slices.Clone(volcanoes)
	for i := range v {
		v[i].Pulsing = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.volcanoes = v
	s.loaded[CategoryVolcano] = true
}

// IngestAirlines replaces the airline collection.
func (s *EntityStore) IngestAirlines(airlines []Airline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.airlines = slices.Clone(airlines)
	s.loaded[CategoryAirline] = true
}

// IngestRoutes replaces the route collection.
func (s *EntityStore) IngestRoutes(routes []Route) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes = slices.Clone(routes)
	s.loaded[CategoryRoute] = true
}

// Loaded reports whether a category has been ingested at least once.
func (s *EntityStore) Loaded(c Category) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[c]
}

// Airports returns the airport collection, empty if never ingested.
func (s *EntityStore) Airports() []Airport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.airports
}

// Volcanoes returns the volcano collection, empty if never ingested.
func (s *EntityStore) Volcanoes() []Volcano {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volcanoes
}

// Airlines returns the airline collection, empty if never ingested.
func (s *EntityStore) Airlines() []Airline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.airlines
}

// Routes returns the route collection, empty if never ingested.
func (s *EntityStore) Routes() []Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes
}

// Airport looks up an airport by identifier.
func (s *EntityStore) Airport(id int) (Airport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.airports {
		if a.ID == id {
			return a, true
		}
	}
	return Airport{}, false
}

// Volcano looks up a volcano by identifier.
func (s *EntityStore) Volcano(id int) (Volcano, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.volcanoes {
		if v.ID == id {
			return v, true
		}
	}
	return Volcano{}, false
}

// TogglePulse flips the pulsing flag of exactly one volcano and returns the
// new value.
func (s *EntityStore) TogglePulse(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.volcanoes, func(v Volcano) bool { return v.ID == id })
	if i < 0 {
		return false, fmt.Errorf("volcano %d not found", id)
	}

	next := slices.Clone(s.volcanoes)
	next[i].Pulsing = !next[i].Pulsing
	s.volcanoes = next
	return next[i].Pulsing, nil
}
