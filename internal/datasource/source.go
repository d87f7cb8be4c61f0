// Package datasource provides the entity collections consumed by the globe
// engine. Every operation is independent and fallible.
package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/joeblew999/plat-globe/internal/service"
)

// Operation names, used in errors, logs and metric labels.
const (
	OpListAirports  = "listAirports"
	OpListVolcanoes = "listVolcanoes"
	OpListAirlines  = "listAirlines"
	OpListRoutes    = "listRoutes"
	OpFlightPaths   = "flightPathsForAirport"
	OpVolcanoDetail = "volcanoDetail"
)

// Source returns entity collections by category.
type Source interface {
	ListAirports(ctx context.Context) ([]service.Airport, error)
	ListVolcanoes(ctx context.Context) ([]service.Volcano, error)
	ListAirlines(ctx context.Context) ([]service.Airline, error)
	ListRoutes(ctx context.Context) ([]service.Route, error)
	FlightPathsForAirport(ctx context.Context, airportID int) ([]service.FlightPath, error)
	VolcanoDetail(ctx context.Context, volcanoID int) (service.Volcano, error)
}

// ErrFetchFailure matches every FetchError via errors.Is.
var ErrFetchFailure = errors.New("fetch failure")

// FetchError is a network, status or decode failure of one operation.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports ErrFetchFailure as a match.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }

func fetchErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Op: op, Err: err}
}
