package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joeblew999/plat-globe/internal/logger"
	"github.com/joeblew999/plat-globe/internal/service"
)

// Dataset file names expected in the dataset directory.
const (
	AirportsFile  = "airports.csv"
	AirlinesFile  = "airlines.csv"
	AirplanesFile = "airplanes.csv"
	RoutesFile    = "routes.csv"
	VolcanoesFile = "volcanoes.csv"
)

// missing replaces absent text values in the cleaned tables.
const missing = "UNKN"

// Each view reads one CSV as text and casts what it needs. \N marks a
// missing value in the dataset.
var viewDefs = []struct {
	name, file, query string
}{
	{"airports", AirportsFile, `
		SELECT TRY_CAST("Airport ID" AS INTEGER) AS id,
		       coalesce(Name, '` + missing + `') AS name,
		       coalesce(City, '` + missing + `') AS city,
		       coalesce(IATA, '` + missing + `') AS code,
		       TRY_CAST(Latitude AS DOUBLE) AS lat,
		       TRY_CAST(Longitude AS DOUBLE) AS lng
		FROM %s`},
	{"airlines", AirlinesFile, `
		SELECT row_number() OVER () AS pos,
		       TRY_CAST("Airline ID" AS INTEGER) AS id,
		       coalesce(Name, '` + missing + `') AS name,
		       coalesce(IATA, '` + missing + `') AS code
		FROM %s`},
	{"airplanes", AirplanesFile, `
		SELECT Name AS name, "IATA code" AS code
		FROM %s`},
	{"routes", RoutesFile, `
		SELECT row_number() OVER () - 1 AS idx,
		       TRY_CAST("Airline ID" AS INTEGER) AS airline_id,
		       coalesce("Source airport", '` + missing + `') AS source_code,
		       TRY_CAST("Source airport ID" AS INTEGER) AS source_id,
		       coalesce("Destination airport", '` + missing + `') AS dest_code,
		       TRY_CAST("Destination airport ID" AS INTEGER) AS dest_id,
		       coalesce(Equipment, '` + missing + `') AS equipment,
		       TRY_CAST("Flight time (hrs)" AS DOUBLE) AS flight_time,
		       TRY_CAST("Fuel Consumption (l/km)" AS DOUBLE) AS fuel
		FROM %s`},
	{"volcanoes", VolcanoesFile, `
		SELECT TRY_CAST(id AS INTEGER) AS id,
		       Name AS name, Country AS country, Location AS location,
		       TRY_CAST(Latitude AS DOUBLE) AS lat,
		       TRY_CAST(Longitude AS DOUBLE) AS lng,
		       TRY_CAST(Elevation AS DOUBLE) AS elevation,
		       Type AS type, Status AS status,
		       TRY_CAST(Year AS INTEGER) AS year,
		       TRY_CAST(Month AS INTEGER) AS month,
		       TRY_CAST(Day AS INTEGER) AS day
		FROM %s`},
}

// VMagDivisor converts elevation in metres to the volcano magnitude.
const VMagDivisor = 500.0

// DuckDB serves the CSV dataset through DuckDB views.
type DuckDB struct {
	db     *sql.DB
	logger *slog.Logger

	mu        sync.Mutex
	airplanes map[string]string
	colors    map[string]string
}

// DuckDBOption configures a DuckDB source.
type DuckDBOption func(*DuckDB)

// WithDuckDBLogger sets the logger used for skipped-row reports.
func WithDuckDBLogger(l *slog.Logger) DuckDBOption {
	return func(d *DuckDB) {
		d.logger = l
	}
}

// NewDuckDB registers views over the dataset in dir.
func NewDuckDB(ctx context.Context, conn *sql.DB, dir string, opts ...DuckDBOption) (*DuckDB, error) {
	d := &DuckDB{db: conn}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.L()
	}

	for _, v := range viewDefs {
		src := csvTable(filepath.Join(dir, v.file))
		stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", v.name, fmt.Sprintf(v.query, src))
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating view %s: %w", v.name, err)
		}
	}
	return d, nil
}

func csvTable(path string) string {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	return fmt.Sprintf(`read_csv(%s, header=true, all_varchar=true, nullstr='\N')`, quoted)
}

func (d *DuckDB) ListAirports(ctx context.Context) ([]service.Airport, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, code, city, lat, lng FROM airports
		WHERE id IS NOT NULL AND lat IS NOT NULL AND lng IS NOT NULL`)
	if err != nil {
		return nil, fetchErr(OpListAirports, err)
	}
	defer rows.Close()

	var out []service.Airport
	for rows.Next() {
		var a service.Airport
		if err := rows.Scan(&a.ID, &a.Name, &a.Code, &a.City, &a.Lat, &a.Lng); err != nil {
			return nil, fetchErr(OpListAirports, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr(OpListAirports, err)
	}
	return out, nil
}

// ListVolcanoes returns the lightweight list: identity, country, position and
// magnitude.
func (d *DuckDB) ListVolcanoes(ctx context.Context) ([]service.Volcano, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, coalesce(country, ''), lat, lng, elevation / ? FROM volcanoes
		WHERE id IS NOT NULL AND lat IS NOT NULL AND lng IS NOT NULL AND elevation IS NOT NULL`, VMagDivisor)
	if err != nil {
		return nil, fetchErr(OpListVolcanoes, err)
	}
	defer rows.Close()

	var out []service.Volcano
	for rows.Next() {
		var v service.Volcano
		if err := rows.Scan(&v.ID, &v.Country, &v.Lat, &v.Lng, &v.VMag); err != nil {
			return nil, fetchErr(OpListVolcanoes, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr(OpListVolcanoes, err)
	}
	return out, nil
}

func (d *DuckDB) ListAirlines(ctx context.Context) ([]service.Airline, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, name FROM airlines WHERE id IS NOT NULL ORDER BY pos`)
	if err != nil {
		return nil, fetchErr(OpListAirlines, err)
	}
	defer rows.Close()

	var out []service.Airline
	for rows.Next() {
		var a service.Airline
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fetchErr(OpListAirlines, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr(OpListAirlines, err)
	}
	return out, nil
}

func (d *DuckDB) ListRoutes(ctx context.Context) ([]service.Route, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT idx, airline_id, source_id, dest_id FROM routes
		WHERE airline_id IS NOT NULL AND source_id IS NOT NULL AND dest_id IS NOT NULL
		ORDER BY idx`)
	if err != nil {
		return nil, fetchErr(OpListRoutes, err)
	}
	defer rows.Close()

	var out []service.Route
	for rows.Next() {
		var r service.Route
		if err := rows.Scan(&r.ID, &r.AirlineID, &r.SourceID, &r.DestinationID); err != nil {
			return nil, fetchErr(OpListRoutes, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr(OpListRoutes, err)
	}
	return out, nil
}

// FlightPathsForAirport joins the routes departing airportID with both
// endpoint airports and the operating airline. Rows whose airports, airline,
// timings or aircraft cannot be resolved are skipped.
func (d *DuckDB) FlightPathsForAirport(ctx context.Context, airportID int) ([]service.FlightPath, error) {
	airplanes, colors, err := d.lookups(ctx)
	if err != nil {
		return nil, fetchErr(OpFlightPaths, err)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT r.idx, r.source_code, r.dest_code, r.equipment, r.flight_time, r.fuel,
		       s.city, s.lat, s.lng, t.city, t.lat, t.lng, a.name, a.code
		FROM routes r
		LEFT JOIN airports s ON s.id = r.source_id
		LEFT JOIN airports t ON t.id = r.dest_id
		LEFT JOIN airlines a ON a.id = r.airline_id
		WHERE r.source_id = ?
		ORDER BY r.idx`, airportID)
	if err != nil {
		return nil, fetchErr(OpFlightPaths, err)
	}
	defer rows.Close()

	var (
		out     []service.FlightPath
		skipped int
	)
	for rows.Next() {
		var (
			idx                                int
			scode, dcode, equipment            string
			flightTime, fuel                   sql.NullFloat64
			scity, dcity, airline, acode       sql.NullString
			startLat, startLng, endLat, endLng sql.NullFloat64
		)
		if err := rows.Scan(&idx, &scode, &dcode, &equipment, &flightTime, &fuel,
			&scity, &startLat, &startLng, &dcity, &endLat, &endLng, &airline, &acode); err != nil {
			return nil, fetchErr(OpFlightPaths, err)
		}
		if !flightTime.Valid || !fuel.Valid || !startLat.Valid || !startLng.Valid ||
			!endLat.Valid || !endLng.Valid || !airline.Valid {
			skipped++
			continue
		}
		aircraft, ok := expandEquipment(equipment, airplanes)
		if !ok {
			skipped++
			continue
		}
		out = append(out, service.FlightPath{
			Index:       idx,
			AirlineCode: acode.String,
			Airline:     airline.String,
			Airplane:    aircraft,
			SourceCode:  scode,
			SourceCity:  scity.String,
			DestCode:    dcode,
			DestCity:    dcity.String,
			StartLat:    startLat.Float64,
			StartLng:    startLng.Float64,
			EndLat:      endLat.Float64,
			EndLng:      endLng.Float64,
			FlightTime:  flightTime.Float64,
			Fuel:        fuel.Float64,
			Color:       []string{colors[airline.String], ArcShadow},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fetchErr(OpFlightPaths, err)
	}
	if skipped > 0 {
		d.logger.Debug("skipped unresolved flight paths", "airport", airportID, "skipped", skipped)
	}
	return out, nil
}

func (d *DuckDB) VolcanoDetail(ctx context.Context, volcanoID int) (service.Volcano, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT coalesce(name, ''), coalesce(location, ''), coalesce(country, ''),
		       coalesce(lat, 0), coalesce(lng, 0), coalesce(elevation, 0),
		       coalesce(type, ''), coalesce(status, ''),
		       coalesce(year, 0), coalesce(month, 0), coalesce(day, 0)
		FROM volcanoes WHERE id = ? LIMIT 1`, volcanoID)

	v := service.Volcano{ID: volcanoID}
	err := row.Scan(&v.Name, &v.Location, &v.Country, &v.Lat, &v.Lng, &v.Elevation,
		&v.Type, &v.Status, &v.Year, &v.Month, &v.Day)
	if err == sql.ErrNoRows {
		return service.Volcano{}, fetchErr(OpVolcanoDetail, fmt.Errorf("volcano %d not found", volcanoID))
	}
	if err != nil {
		return service.Volcano{}, fetchErr(OpVolcanoDetail, err)
	}
	return v, nil
}

// lookups loads the aircraft names and airline palette once. A failed load
// is retried on the next call.
func (d *DuckDB) lookups(ctx context.Context) (map[string]string, map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.airplanes != nil {
		return d.airplanes, d.colors, nil
	}

	airplanes := make(map[string]string)
	rows, err := d.db.QueryContext(ctx, `SELECT name, code FROM airplanes WHERE name IS NOT NULL AND code IS NOT NULL`)
	if err != nil {
		return nil, nil, fmt.Errorf("loading airplanes: %w", err)
	}
	for rows.Next() {
		var name, code string
		if err := rows.Scan(&name, &code); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("loading airplanes: %w", err)
		}
		if _, dup := airplanes[code]; !dup {
			airplanes[code] = name
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("loading airplanes: %w", err)
	}

	var names []string
	rows, err = d.db.QueryContext(ctx, `SELECT name FROM airlines WHERE id IS NOT NULL ORDER BY pos`)
	if err != nil {
		return nil, nil, fmt.Errorf("loading airlines: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("loading airlines: %w", err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("loading airlines: %w", err)
	}

	d.airplanes = airplanes
	d.colors = Palette(names)
	return d.airplanes, d.colors, nil
}

// expandEquipment turns "320 319" into "Airbus A320, Airbus A319". Any
// unknown code fails the whole row.
func expandEquipment(equipment string, airplanes map[string]string) (string, bool) {
	codes := strings.Split(equipment, " ")
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		name, ok := airplanes[c]
		if !ok {
			return "", false
		}
		names = append(names, name)
	}
	return strings.Join(names, ", "), true
}
