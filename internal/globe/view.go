package globe

import (
	"fmt"
	"html"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-globe/internal/service"
)

// Rendering constants.
const (
	AirportColor       = "gold"
	VolcanoColor       = "red"
	AirportRadius      = 0.2
	CameraAltitude     = 2.0
	CameraTransitionMs = 1000
)

// Point is one renderable entry of the merged point collection.
type Point struct {
	Category service.Category `json:"type" enum:"airport,volcano" doc:"Entity kind"`
	ID       int              `json:"index" doc:"Entity identifier"`
	Lat      float64          `json:"lat"`
	Lng      float64          `json:"lng"`
	Color    string           `json:"color"`
	Radius   float64          `json:"radius"`
	Label    string           `json:"label"`
	Pulsing  bool             `json:"pulsing,omitempty"`
}

// Arc is one renderable flight path.
type Arc struct {
	service.FlightPath
	Label string `json:"label"`
}

// Frame is everything the render surface needs for one render cycle.
type Frame struct {
	Points       []Point           `json:"points" doc:"Visible airports followed by every volcano"`
	Arcs         []Arc             `json:"arcs" doc:"Current flight paths"`
	Query        string            `json:"query"`
	ShowDropdown bool              `json:"showDropdown"`
	Dropdown     []service.Airport `json:"dropdown" doc:"Airports offered in the dropdown"`
	Airline      *service.Airline  `json:"airline,omitempty" doc:"Airline matched by the query"`
	Routes       []service.Route   `json:"routes" doc:"Routes of the matched airline"`
	Selection    Selection         `json:"selection"`
	Tick         uint64            `json:"tick"`
}

// Project maps a snapshot to a frame. It has no side effects.
func Project(s Snapshot) Frame {
	visible := s.Search.Airports
	if s.Search.Query == "" {
		visible = s.Airports
	}

	points := make([]Point, 0, len(visible)+len(s.Volcanoes))
	for _, a := range visible {
		points = append(points, AirportPoint(a))
	}
	for _, v := range s.Volcanoes {
		points = append(points, VolcanoPoint(v, s.Tick))
	}

	arcs := make([]Arc, len(s.Flights))
	for i, fp := range s.Flights {
		arcs[i] = Arc{FlightPath: fp, Label: ArcLabel(fp)}
	}

	f := Frame{
		Points:       points,
		Arcs:         arcs,
		Query:        s.Search.Query,
		ShowDropdown: s.Search.ShowDropdown() && !s.DropdownDismissed,
		Dropdown:     []service.Airport{},
		Airline:      s.Search.Airline,
		Routes:       s.Search.Routes,
		Selection:    s.Selection,
		Tick:         s.Tick,
	}
	if f.Routes == nil {
		f.Routes = []service.Route{}
	}
	if f.ShowDropdown {
		f.Dropdown = s.Search.Airports
	}
	return f
}

// AirportPoint renders one airport.
func AirportPoint(a service.Airport) Point {
	return Point{
		Category: service.CategoryAirport,
		ID:       a.ID,
		Lat:      a.Lat,
		Lng:      a.Lng,
		Color:    AirportColor,
		Radius:   AirportRadius,
		Label:    AirportLabel(a),
	}
}

// VolcanoPoint renders one volcano at tick.
func VolcanoPoint(v service.Volcano, tick uint64) Point {
	return Point{
		Category: service.CategoryVolcano,
		ID:       v.ID,
		Lat:      v.Lat,
		Lng:      v.Lng,
		Color:    VolcanoColor,
		Radius:   Radius(v, tick),
		Label:    VolcanoLabel(v),
		Pulsing:  v.Pulsing,
	}
}

// Labels are shown as HTML tooltips, so dataset text is escaped.

func AirportLabel(a service.Airport) string {
	return fmt.Sprintf("Airport: %s [%s] [%s]", html.EscapeString(a.Name), html.EscapeString(a.Code), html.EscapeString(a.City))
}

func VolcanoLabel(v service.Volcano) string {
	return fmt.Sprintf("Volcano: %s - Elevation: %s", html.EscapeString(v.Country), strconv.FormatFloat(v.VMag, 'f', -1, 64))
}

func ArcLabel(fp service.FlightPath) string {
	return fmt.Sprintf("%s: %s --> %s", html.EscapeString(fp.AirlineCode), html.EscapeString(fp.SourceCode), html.EscapeString(fp.DestCode))
}

// CameraTo is the camera-follow command for a point.
func CameraTo(lat, lng float64) service.CameraCommand {
	return service.CameraCommand{Lat: lat, Lng: lng, Altitude: CameraAltitude, DurationMs: CameraTransitionMs}
}

// GeoJSON exports the frame's points and arcs as a feature collection.
func (f Frame) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range f.Points {
		feat := geojson.NewFeature(orb.Point{p.Lng, p.Lat})
		feat.ID = string(p.Category) + "/" + strconv.Itoa(p.ID)
		feat.Properties["type"] = string(p.Category)
		feat.Properties["index"] = p.ID
		feat.Properties["color"] = p.Color
		feat.Properties["radius"] = p.Radius
		feat.Properties["label"] = p.Label
		fc.Append(feat)
	}
	for _, a := range f.Arcs {
		feat := geojson.NewFeature(a.Line())
		feat.ID = "flight/" + strconv.Itoa(a.Index)
		feat.Properties["type"] = "flight"
		feat.Properties["index"] = a.Index
		feat.Properties["label"] = a.Label
		feat.Properties["color"] = a.Color
		feat.Properties["distanceKm"] = a.DistanceKm()
		fc.Append(feat)
	}
	return fc
}
