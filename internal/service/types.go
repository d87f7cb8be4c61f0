// Package service contains the entity model and shared state containers for plat-globe.
package service

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Category discriminates the entity kinds held by the store.
type Category string

const (
	CategoryAirport Category = "airport"
	CategoryVolcano Category = "volcano"
	CategoryAirline Category = "airline"
	CategoryRoute   Category = "route"
)

// ParseCategory parses a category name as used in URLs and signals.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryAirport, CategoryVolcano, CategoryAirline, CategoryRoute:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Airport is a renderable flight-infrastructure point. Immutable once ingested.
type Airport struct {
	ID   int     `json:"index" doc:"Airport identifier" example:"507"`
	Name string  `json:"name" doc:"Display name" example:"Heathrow"`
	Code string  `json:"code" doc:"IATA code" example:"LHR"`
	City string  `json:"city" doc:"City served" example:"London"`
	Lat  float64 `json:"lat" doc:"Latitude" example:"51.47"`
	Lng  float64 `json:"lng" doc:"Longitude" example:"-0.4543"`
}

// Point returns the airport position.
func (a Airport) Point() orb.Point {
	return orb.Point{a.Lng, a.Lat}
}

// Volcano is a hazard-class point. Pulsing is the only mutable field.
type Volcano struct {
	ID        int     `json:"index" doc:"Volcano identifier" example:"42"`
	Name      string  `json:"name,omitempty" doc:"Volcano name" example:"Etna"`
	Country   string  `json:"country" doc:"Country" example:"Italy"`
	Location  string  `json:"location,omitempty" doc:"Region description" example:"Mediterranean"`
	Lat       float64 `json:"lat" doc:"Latitude"`
	Lng       float64 `json:"lng" doc:"Longitude"`
	VMag      float64 `json:"vmag" doc:"Magnitude used for radius (elevation/500)" example:"6.65"`
	Elevation float64 `json:"elevation,omitempty" doc:"Elevation in metres"`
	Year      int     `json:"year,omitempty" doc:"Eruption year"`
	Month     int     `json:"month,omitempty" doc:"Eruption month"`
	Day       int     `json:"day,omitempty" doc:"Eruption day"`
	Status    string  `json:"status,omitempty" doc:"Activity status"`
	Type      string  `json:"type,omitempty" doc:"Volcano type" example:"Stratovolcano"`
	Pulsing   bool    `json:"pulsing" doc:"Whether the rendered radius oscillates"`
}

// Point returns the volcano position.
func (v Volcano) Point() orb.Point {
	return orb.Point{v.Lng, v.Lat}
}

// WithDetail overlays a detail record on v. Identity and the pulsing flag
// stay with v; zero-valued detail fields do not overwrite known values.
func (v Volcano) WithDetail(d Volcano) Volcano {
	out := v
	setString := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	setString(&out.Name, d.Name)
	setString(&out.Country, d.Country)
	setString(&out.Location, d.Location)
	setString(&out.Status, d.Status)
	setString(&out.Type, d.Type)
	if d.Lat != 0 || d.Lng != 0 {
		out.Lat, out.Lng = d.Lat, d.Lng
	}
	if d.VMag != 0 {
		out.VMag = d.VMag
	}
	if d.Elevation != 0 {
		out.Elevation = d.Elevation
	}
	if d.Year != 0 {
		out.Year = d.Year
	}
	if d.Month != 0 {
		out.Month = d.Month
	}
	if d.Day != 0 {
		out.Day = d.Day
	}
	return out
}

// Airline is a carrier record used for search.
type Airline struct {
	ID   int    `json:"id" doc:"Airline identifier" example:"1355"`
	Name string `json:"name" doc:"Airline name" example:"British Airways"`
}

// Route links an airline to an origin and destination airport.
type Route struct {
	ID            int `json:"id" doc:"Route identifier"`
	AirlineID     int `json:"airlineId" doc:"Owning airline identifier"`
	SourceID      int `json:"sourceId" doc:"Origin airport identifier"`
	DestinationID int `json:"destinationId" doc:"Destination airport identifier"`
}

// FlightPath is a renderable arc produced per airport click. It lives for
// exactly one airport-selected session.
type FlightPath struct {
	Index       int      `json:"index" doc:"Flight path identifier"`
	AirlineCode string   `json:"acode" doc:"Airline IATA code" example:"BA"`
	Airline     string   `json:"airline" doc:"Airline name"`
	Airplane    string   `json:"airplane" doc:"Aircraft type(s)"`
	SourceCode  string   `json:"scode" doc:"Origin airport code"`
	SourceCity  string   `json:"scity" doc:"Origin city"`
	DestCode    string   `json:"dcode" doc:"Destination airport code"`
	DestCity    string   `json:"dcity" doc:"Destination city"`
	StartLat    float64  `json:"startLat"`
	StartLng    float64  `json:"startLng"`
	EndLat      float64  `json:"endLat"`
	EndLng      float64  `json:"endLng"`
	FlightTime  float64  `json:"flighttime" doc:"Flight duration in hours"`
	Fuel        float64  `json:"fueltime" doc:"Fuel consumption in L/km"`
	Color       []string `json:"color" doc:"Arc gradient colours"`
}

// Line returns the arc as a two-point line string.
func (f FlightPath) Line() orb.LineString {
	return orb.LineString{{f.StartLng, f.StartLat}, {f.EndLng, f.EndLat}}
}

// DistanceKm is the great-circle length of the arc.
func (f FlightPath) DistanceKm() float64 {
	line := f.Line()
	return geo.Distance(line[0], line[1]) / 1000
}

// CameraCommand moves the render surface camera.
type CameraCommand struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Altitude   float64 `json:"altitude"`
	DurationMs int     `json:"durationMs"`
}
