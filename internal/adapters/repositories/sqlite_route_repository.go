package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"routelog/internal/domain"
	"routelog/internal/ports"
)

// SQLite-backed implementation of the RouteRepository port.
//
// A route is stored across three tables: the routes row, one route_stops row
// per stop keyed by (route_id, position), and one incidents row per incident.
// Save rewrites the whole aggregate in a single transaction so readers never
// observe a route with half-updated stops.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

func (s *SqliteRouteRepository) SaveRoute(ctx context.Context, r *domain.Route) (int, error) {
	if s.DB == nil {
		return 0, errors.New("sqlite route repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if r.ID > 0 {
		query := `
		UPDATE routes
		SET date = ?, vehicle_id = ?, plate = ?, driver = ?,
			departure_km = ?, departure_time = ?, arrival_km = ?, arrival_time = ?, status = ?
		WHERE id = ?;
		`
		if _, err := tx.ExecContext(ctx, query,
			r.Date, r.VehicleID, r.Plate, r.Driver,
			r.DepartureKm, r.DepartureTime, r.ArrivalKm, r.ArrivalTime, string(r.Status),
			r.ID,
		); err != nil {
			return 0, fmt.Errorf("save route: update id=%d: %w", r.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM route_stops WHERE route_id = ?;`, r.ID); err != nil {
			return 0, fmt.Errorf("save route: clear stops id=%d: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM incidents WHERE route_id = ?;`, r.ID); err != nil {
			return 0, fmt.Errorf("save route: clear incidents id=%d: %w", r.ID, err)
		}
	} else {
		query := `
		INSERT INTO routes (date, vehicle_id, plate, driver, departure_km, departure_time, arrival_km, arrival_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`
		res, err := tx.ExecContext(ctx, query,
			r.Date, r.VehicleID, r.Plate, r.Driver,
			r.DepartureKm, r.DepartureTime, r.ArrivalKm, r.ArrivalTime, string(r.Status), r.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("save route: insert: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("save route: last insert id: %w", err)
		}
		r.ID = int(id)
	}

	stopQuery := `
	INSERT INTO route_stops (route_id, position, city_id, city_name, courier_id, courier_name, dispatched, delivered, returned, completed, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	stopStmt, err := tx.PrepareContext(ctx, stopQuery)
	if err != nil {
		return 0, fmt.Errorf("save route: prepare stop insert: %w", err)
	}
	defer stopStmt.Close()

	incidentQuery := `
	INSERT INTO incidents (id, route_id, position, type, description, quantity, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	incidentStmt, err := tx.PrepareContext(ctx, incidentQuery)
	if err != nil {
		return 0, fmt.Errorf("save route: prepare incident insert: %w", err)
	}
	defer incidentStmt.Close()

	for pos, st := range r.Stops {
		if _, err := stopStmt.ExecContext(ctx,
			r.ID, pos, st.CityID, st.CityName, st.CourierID, st.CourierName,
			st.Dispatched, st.Delivered, st.Returned, boolToInt(st.Completed), st.CompletedAt,
		); err != nil {
			return 0, fmt.Errorf("save route: insert stop position=%d: %w", pos, err)
		}

		for _, in := range st.Incidents {
			if _, err := incidentStmt.ExecContext(ctx,
				in.ID, r.ID, pos, string(in.Type), in.Description, in.Quantity, in.CreatedAt,
			); err != nil {
				return 0, fmt.Errorf("save route: insert incident id=%s: %w", in.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save route: commit tx: %w", err)
	}

	return r.ID, nil
}

func (s *SqliteRouteRepository) GetRoute(ctx context.Context, id int) (*domain.Route, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT id, date, vehicle_id, plate, driver, departure_km, departure_time, arrival_km, arrival_time, status, created_at
	FROM routes
	WHERE id = ?;
	`
	r, err := scanRoute(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get route: id=%d: %w", id, err)
	}

	if err := s.loadStops(ctx, r); err != nil {
		return nil, fmt.Errorf("get route: id=%d: %w", id, err)
	}
	return r, nil
}

func (s *SqliteRouteRepository) ListRoutes(ctx context.Context, f ports.RouteFilter) ([]*domain.Route, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	var conditions []string
	var args []any
	if f.From != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, f.To)
	}
	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `
	SELECT id, date, vehicle_id, plate, driver, departure_km, departure_time, arrival_km, arrival_time, status, created_at
	FROM routes
	`
	if len(conditions) > 0 {
		query += "WHERE " + strings.Join(conditions, " AND ") + "\n"
	}
	query += "ORDER BY created_at DESC, id DESC;"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list routes: query: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 32)
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	for _, r := range routes {
		if err := s.loadStops(ctx, r); err != nil {
			return nil, fmt.Errorf("list routes: route id=%d: %w", r.ID, err)
		}
	}

	return routes, nil
}

// ActiveRoute returns the in-progress route, or nil when there is none.
// The partial unique index guarantees at most one row matches.
func (s *SqliteRouteRepository) ActiveRoute(ctx context.Context) (*domain.Route, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT id, date, vehicle_id, plate, driver, departure_km, departure_time, arrival_km, arrival_time, status, created_at
	FROM routes
	WHERE status = 'in_progress'
	LIMIT 1;
	`
	r, err := scanRoute(s.DB.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active route: %w", err)
	}

	if err := s.loadStops(ctx, r); err != nil {
		return nil, fmt.Errorf("active route: id=%d: %w", r.ID, err)
	}
	return r, nil
}

func (s *SqliteRouteRepository) DeleteRoute(ctx context.Context, id int) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM incidents WHERE route_id = ?;`,
		`DELETE FROM route_stops WHERE route_id = ?;`,
		`DELETE FROM routes WHERE id = ?;`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete route: id=%d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete route: commit tx: %w", err)
	}
	return nil
}

func scanRoute(row rowScanner) (*domain.Route, error) {
	r := &domain.Route{}
	var status string
	err := row.Scan(
		&r.ID, &r.Date, &r.VehicleID, &r.Plate, &r.Driver,
		&r.DepartureKm, &r.DepartureTime, &r.ArrivalKm, &r.ArrivalTime, &status, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = domain.RouteStatus(status)
	return r, nil
}

func (s *SqliteRouteRepository) loadStops(ctx context.Context, r *domain.Route) error {
	stopQuery := `
	SELECT position, city_id, city_name, courier_id, courier_name, dispatched, delivered, returned, completed, completed_at
	FROM route_stops
	WHERE route_id = ?
	ORDER BY position;
	`
	rows, err := s.DB.QueryContext(ctx, stopQuery, r.ID)
	if err != nil {
		return fmt.Errorf("load stops: query: %w", err)
	}
	defer rows.Close()

	r.Stops = r.Stops[:0]
	for rows.Next() {
		var st domain.RouteStop
		var position, completed int
		if err := rows.Scan(
			&position, &st.CityID, &st.CityName, &st.CourierID, &st.CourierName,
			&st.Dispatched, &st.Delivered, &st.Returned, &completed, &st.CompletedAt,
		); err != nil {
			return fmt.Errorf("load stops: scan row: %w", err)
		}
		st.Completed = completed != 0
		st.Incidents = []domain.Incident{}
		r.Stops = append(r.Stops, st)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load stops: row iteration: %w", err)
	}

	incidentQuery := `
	SELECT id, position, type, description, quantity, created_at
	FROM incidents
	WHERE route_id = ?
	ORDER BY created_at, id;
	`
	incRows, err := s.DB.QueryContext(ctx, incidentQuery, r.ID)
	if err != nil {
		return fmt.Errorf("load incidents: query: %w", err)
	}
	defer incRows.Close()

	for incRows.Next() {
		var in domain.Incident
		var position int
		var incidentType string
		if err := incRows.Scan(&in.ID, &position, &incidentType, &in.Description, &in.Quantity, &in.CreatedAt); err != nil {
			return fmt.Errorf("load incidents: scan row: %w", err)
		}
		in.Type = domain.IncidentType(incidentType)
		if position < 0 || position >= len(r.Stops) {
			return fmt.Errorf("load incidents: incident id=%s references position %d of %d stops", in.ID, position, len(r.Stops))
		}
		r.Stops[position].Incidents = append(r.Stops[position].Incidents, in)
	}
	if err := incRows.Err(); err != nil {
		return fmt.Errorf("load incidents: row iteration: %w", err)
	}

	return nil
}
