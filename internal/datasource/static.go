package datasource

import (
	"context"
	"fmt"
	"slices"

	"github.com/joeblew999/plat-globe/internal/service"
)

// Static serves fixed in-memory collections. A non-nil entry in Errors makes
// the named operation fail.
type Static struct {
	Airports    []service.Airport
	Volcanoes   []service.Volcano
	Airlines    []service.Airline
	Routes      []service.Route
	FlightPaths map[int][]service.FlightPath
	Details     map[int]service.Volcano
	Errors      map[string]error
}

func (s *Static) fail(op string) error {
	if err := s.Errors[op]; err != nil {
		return fetchErr(op, err)
	}
	return nil
}

func (s *Static) ListAirports(ctx context.Context) ([]service.Airport, error) {
	if err := s.fail(OpListAirports); err != nil {
		return nil, err
	}
	return slices.Clone(s.Airports), nil
}

func (s *Static) ListVolcanoes(ctx context.Context) ([]service.Volcano, error) {
	if err := s.fail(OpListVolcanoes); err != nil {
		return nil, err
	}
	return slices.Clone(s.Volcanoes), nil
}

func (s *Static) ListAirlines(ctx context.Context) ([]service.Airline, error) {
	if err := s.fail(OpListAirlines); err != nil {
		return nil, err
	}
	return slices.Clone(s.Airlines), nil
}

func (s *Static) ListRoutes(ctx context.Context) ([]service.Route, error) {
	if err := s.fail(OpListRoutes); err != nil {
		return nil, err
	}
	return slices.Clone(s.Routes), nil
}

func (s *Static) FlightPathsForAirport(ctx context.Context, airportID int) ([]service.FlightPath, error) {
	if err := s.fail(OpFlightPaths); err != nil {
		return nil, err
	}
	return slices.Clone(s.FlightPaths[airportID]), nil
}

func (s *Static) VolcanoDetail(ctx context.Context, volcanoID int) (service.Volcano, error) {
	if err := s.fail(OpVolcanoDetail); err != nil {
		return service.Volcano{}, err
	}
	d, ok := s.Details[volcanoID]
	if !ok {
		return service.Volcano{}, fetchErr(OpVolcanoDetail, fmt.Errorf("volcano %d not found", volcanoID))
	}
	d.ID = volcanoID
	return d, nil
}

// Demo returns a small built-in dataset for running without a backend.
func Demo() *Static {
	return &Static{
		Airports: []service.Airport{
			{ID: 507, Name: "London Heathrow Airport", Code: "LHR", City: "London", Lat: 51.4706, Lng: -0.461941},
			{ID: 1382, Name: "Charles de Gaulle International Airport", Code: "CDG", City: "Paris", Lat: 49.012798, Lng: 2.55},
			{ID: 3797, Name: "John F Kennedy International Airport", Code: "JFK", City: "New York", Lat: 40.63980103, Lng: -73.77890015},
			{ID: 2279, Name: "Narita International Airport", Code: "NRT", City: "Tokyo", Lat: 35.7647018433, Lng: 140.386001587},
			{ID: 18, Name: "Keflavik International Airport", Code: "KEF", City: "Keflavik", Lat: 63.985001, Lng: -22.6056},
		},
		Volcanoes: []service.Volcano{
			{ID: 1, Name: "Etna", Country: "Italy", Location: "Mediterranean Sea", Lat: 37.734, Lng: 15.004, VMag: 6.658, Elevation: 3329, Type: "Stratovolcano", Status: "Historical"},
			{ID: 2, Name: "Hekla", Country: "Iceland", Location: "Iceland-S", Lat: 63.98, Lng: -19.7, VMag: 2.982, Elevation: 1491, Type: "Stratovolcano", Status: "Historical"},
			{ID: 3, Name: "Fuji", Country: "Japan", Location: "Honshu-Japan", Lat: 35.35, Lng: 138.73, VMag: 7.552, Elevation: 3776, Type: "Stratovolcano", Status: "Historical"},
		},
		Airlines: []service.Airline{
			{ID: 1355, Name: "British Airways"},
			{ID: 137, Name: "Air France"},
			{ID: 3090, Name: "Japan Airlines"},
		},
		Routes: []service.Route{
			{ID: 1, AirlineID: 1355, SourceID: 507, DestinationID: 1382},
			{ID: 2, AirlineID: 1355, SourceID: 507, DestinationID: 3797},
			{ID: 3, AirlineID: 137, SourceID: 1382, DestinationID: 507},
			{ID: 4, AirlineID: 3090, SourceID: 2279, DestinationID: 3797},
		},
		FlightPaths: map[int][]service.FlightPath{
			507: {
				{Index: 1, AirlineCode: "BA", Airline: "British Airways", Airplane: "Airbus A320", SourceCode: "LHR", SourceCity: "London", DestCode: "CDG", DestCity: "Paris",
					StartLat: 51.4706, StartLng: -0.461941, EndLat: 49.012798, EndLng: 2.55, FlightTime: 1.2, Fuel: 3.1, Color: []string{"#ff0000", "#000000"}},
				{Index: 2, AirlineCode: "BA", Airline: "British Airways", Airplane: "Boeing 777", SourceCode: "LHR", SourceCity: "London", DestCode: "JFK", DestCity: "New York",
					StartLat: 51.4706, StartLng: -0.461941, EndLat: 40.63980103, EndLng: -73.77890015, FlightTime: 8, Fuel: 9.4, Color: []string{"#ff0000", "#000000"}},
			},
			1382: {
				{Index: 3, AirlineCode: "AF", Airline: "Air France", Airplane: "Airbus A319", SourceCode: "CDG", SourceCity: "Paris", DestCode: "LHR", DestCity: "London",
					StartLat: 49.012798, StartLng: 2.55, EndLat: 51.4706, EndLng: -0.461941, FlightTime: 1.2, Fuel: 3.0, Color: []string{"#00ff00", "#000000"}},
			},
		},
		Details: map[int]service.Volcano{
			1: {Name: "Etna", Country: "Italy", Location: "Mediterranean Sea", Lat: 37.734, Lng: 15.004, Elevation: 3329, Year: 2021, Month: 2, Day: 16, Type: "Stratovolcano", Status: "Historical"},
			2: {Name: "Hekla", Country: "Iceland", Location: "Iceland-S", Lat: 63.98, Lng: -19.7, Elevation: 1491, Year: 2000, Month: 2, Day: 26, Type: "Stratovolcano", Status: "Historical"},
			3: {Name: "Fuji", Country: "Japan", Location: "Honshu-Japan", Lat: 35.35, Lng: 138.73, Elevation: 3776, Year: 1707, Month: 12, Day: 16, Type: "Stratovolcano", Status: "Historical"},
		},
	}
}
