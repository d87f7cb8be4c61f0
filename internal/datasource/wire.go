package datasource

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-globe/internal/service"
)

// number decodes a JSON number, a numeric string, or null. The backend is a
// dataframe dump, so ints arrive as floats and missing values as strings.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			*n = 0
			return nil
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

func (n number) asInt() int { return int(n) }

// text decodes a JSON string or number as a string.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	*t = text(b)
	return nil
}

type airportWire struct {
	Index number `json:"index"`
	Name  text   `json:"name"`
	Code  text   `json:"code"`
	City  text   `json:"city"`
	Lat   number `json:"lat"`
	Lng   number `json:"lng"`
}

func (w airportWire) airport() service.Airport {
	return service.Airport{
		ID:   w.Index.asInt(),
		Name: string(w.Name),
		Code: string(w.Code),
		City: string(w.City),
		Lat:  float64(w.Lat),
		Lng:  float64(w.Lng),
	}
}

// volcanoWire accepts both the list shape (lat/lng/vmag) and the detail
// shape (latitude/longitude/elevation).
type volcanoWire struct {
	Index     number `json:"index"`
	ID        number `json:"id"`
	Name      text   `json:"name"`
	Country   text   `json:"country"`
	Location  text   `json:"location"`
	Lat       number `json:"lat"`
	Lng       number `json:"lng"`
	Latitude  number `json:"latitude"`
	Longitude number `json:"longitude"`
	VMag      number `json:"vmag"`
	Elevation number `json:"elevation"`
	Year      number `json:"year"`
	Month     number `json:"month"`
	Day       number `json:"day"`
	Status    text   `json:"status"`
	Type      text   `json:"type"`
}

func (w volcanoWire) volcano() service.Volcano {
	v := service.Volcano{
		ID:        w.Index.asInt(),
		Name:      string(w.Name),
		Country:   string(w.Country),
		Location:  string(w.Location),
		Lat:       float64(w.Lat),
		Lng:       float64(w.Lng),
		VMag:      float64(w.VMag),
		Elevation: float64(w.Elevation),
		Year:      w.Year.asInt(),
		Month:     w.Month.asInt(),
		Day:       w.Day.asInt(),
		Status:    string(w.Status),
		Type:      string(w.Type),
	}
	if v.ID == 0 {
		v.ID = w.ID.asInt()
	}
	if v.Lat == 0 && v.Lng == 0 {
		v.Lat, v.Lng = float64(w.Latitude), float64(w.Longitude)
	}
	return v
}

// airlineWire accepts "id" or "index" for the identifier; the backend emits
// the latter.
type airlineWire struct {
	ID    *number `json:"id"`
	Index number  `json:"index"`
	Name  text    `json:"name"`
}

func (w airlineWire) airline() service.Airline {
	id := w.Index.asInt()
	if w.ID != nil {
		id = w.ID.asInt()
	}
	return service.Airline{ID: id, Name: string(w.Name)}
}

type routeWire struct {
	ID            number `json:"id"`
	AirlineID     number `json:"airlineId"`
	SourceID      number `json:"sourceId"`
	DestinationID number `json:"destinationId"`
}

func (w routeWire) route() service.Route {
	return service.Route{
		ID:            w.ID.asInt(),
		AirlineID:     w.AirlineID.asInt(),
		SourceID:      w.SourceID.asInt(),
		DestinationID: w.DestinationID.asInt(),
	}
}

type flightPathWire struct {
	Index      number   `json:"index"`
	ACode      text     `json:"acode"`
	Airline    text     `json:"airline"`
	Airplane   text     `json:"airplane"`
	SCode      text     `json:"scode"`
	SCity      text     `json:"scity"`
	DCode      text     `json:"dcode"`
	DCity      text     `json:"dcity"`
	StartLat   number   `json:"startLat"`
	StartLng   number   `json:"startLng"`
	EndLat     number   `json:"endLat"`
	EndLng     number   `json:"endLng"`
	FlightTime number   `json:"flighttime"`
	FuelTime   number   `json:"fueltime"`
	Color      []string `json:"color"`
}

func (w flightPathWire) flightPath() service.FlightPath {
	return service.FlightPath{
		Index:       w.Index.asInt(),
		AirlineCode: string(w.ACode),
		Airline:     string(w.Airline),
		Airplane:    string(w.Airplane),
		SourceCode:  string(w.SCode),
		SourceCity:  string(w.SCity),
		DestCode:    string(w.DCode),
		DestCity:    string(w.DCity),
		StartLat:    float64(w.StartLat),
		StartLng:    float64(w.StartLng),
		EndLat:      float64(w.EndLat),
		EndLng:      float64(w.EndLng),
		FlightTime:  float64(w.FlightTime),
		Fuel:        float64(w.FuelTime),
		Color:       w.Color,
	}
}

func convert[W any, T any](in []W, fn func(W) T) []T {
	out := make([]T, len(in))
	for i, w := range in {
		out[i] = fn(w)
	}
	return out
}
