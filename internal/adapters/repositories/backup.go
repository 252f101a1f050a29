package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"routelog/internal/domain"
	"routelog/internal/ports"
)

// BackupTables lists the table names a bundle may carry, in restore order
// (referenced entities before the routes that snapshot them).
var BackupTables = []string{
	"cities",
	"couriers",
	"vehicles",
	"route_templates",
	"routes",
	"refuelings",
	"maintenances",
}

// BackupStore exports and restores table snapshots as JSON rows.
//
// Restore is additive only: a row whose primary key already exists locally
// is skipped, never overwritten. Routes travel as full aggregates (stops and
// incidents embedded) so a bundle stays readable on its own.
type BackupStore struct{ DB *sql.DB }

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{DB: db}
}

// Export returns the rows of each requested table keyed by table name.
// Unknown table names are rejected rather than silently dropped.
func (s *BackupStore) Export(ctx context.Context, tables []string) (map[string][]json.RawMessage, error) {
	if s.DB == nil {
		return nil, errors.New("backup store: DB is nil")
	}

	out := make(map[string][]json.RawMessage, len(tables))
	for _, table := range tables {
		rows, err := s.exportTable(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("backup export: table %s: %w", table, err)
		}
		out[table] = rows
	}
	return out, nil
}

func (s *BackupStore) exportTable(ctx context.Context, table string) ([]json.RawMessage, error) {
	switch table {
	case "cities":
		repo := NewSqliteCityRepository(s.DB)
		items, err := repo.ListCities(ctx)
		if err != nil {
			return nil, err
		}
		return marshalRows(items)
	case "couriers":
		repo := NewSqliteCourierRepository(s.DB)
		items, err := repo.ListCouriers(ctx)
		if err != nil {
			return nil, err
		}
		return marshalRows(items)
	case "vehicles":
		repo := NewSqliteVehicleRepository(s.DB)
		items, err := repo.ListVehicles(ctx)
		if err != nil {
			return nil, err
		}
		return marshalRows(items)
	case "route_templates":
		repo := NewSqliteTemplateRepository(s.DB)
		items, err := repo.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		return marshalRows(items)
	case "routes":
		repo := NewSqliteRouteRepository(s.DB)
		items, err := repo.ListRoutes(ctx, ports.RouteFilter{})
		if err != nil {
			return nil, err
		}
		return marshalRows(items)
	case "refuelings":
		rows, err := s.DB.QueryContext(ctx, `SELECT `+refuelingColumns+` FROM refuelings ORDER BY id;`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		items := make([]*domain.Refueling, 0, 64)
		for rows.Next() {
			r, err := scanRefueling(rows)
			if err != nil {
				return nil, err
			}
			items = append(items, r)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return marshalRows(items)
	case "maintenances":
		rows, err := s.DB.QueryContext(ctx, `SELECT `+maintenanceColumns+` FROM maintenances ORDER BY id;`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		items := make([]*domain.Maintenance, 0, 32)
		for rows.Next() {
			m, err := scanMaintenance(rows)
			if err != nil {
				return nil, err
			}
			items = append(items, m)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return marshalRows(items)
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

func marshalRows[T any](items []T) ([]json.RawMessage, error) {
	rows := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("marshal row: %w", err)
		}
		rows = append(rows, b)
	}
	return rows, nil
}

// Restore inserts rows whose primary key is absent locally and reports the
// number inserted per table. Existing rows are left untouched. All inserts
// run inside one transaction so a malformed bundle changes nothing.
func (s *BackupStore) Restore(ctx context.Context, tables map[string][]json.RawMessage) (map[string]int, error) {
	if s.DB == nil {
		return nil, errors.New("backup store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("backup restore: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := make(map[string]int, len(tables))
	for _, table := range BackupTables {
		rows, ok := tables[table]
		if !ok {
			continue
		}
		n, err := restoreTable(ctx, tx, table, rows)
		if err != nil {
			return nil, fmt.Errorf("backup restore: table %s: %w", table, err)
		}
		inserted[table] = n
	}

	for table := range tables {
		if _, ok := inserted[table]; !ok {
			return nil, fmt.Errorf("backup restore: unknown table %q", table)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("backup restore: commit tx: %w", err)
	}
	return inserted, nil
}

func restoreTable(ctx context.Context, tx *sql.Tx, table string, rows []json.RawMessage) (int, error) {
	inserted := 0
	for i, raw := range rows {
		ok, err := restoreRow(ctx, tx, table, raw)
		if err != nil {
			return 0, fmt.Errorf("row #%d: %w", i+1, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func restoreRow(ctx context.Context, tx *sql.Tx, table string, raw json.RawMessage) (bool, error) {
	switch table {
	case "cities":
		var c domain.City
		if err := json.Unmarshal(raw, &c); err != nil {
			return false, fmt.Errorf("decode city: %w", err)
		}
		exists, err := rowExists(ctx, tx, "cities", c.ID)
		if err != nil || exists {
			return false, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cities (id, name, state, distance_km, created_at) VALUES (?, ?, ?, ?, ?);`,
			c.ID, c.Name, c.State, c.DistanceKm, c.CreatedAt,
		)
		return err == nil, err
	case "couriers":
		var c domain.Courier
		if err := json.Unmarshal(raw, &c); err != nil {
			return false, fmt.Errorf("decode courier: %w", err)
		}
		exists, err := rowExists(ctx, tx, "couriers", c.ID)
		if err != nil || exists {
			return false, err
		}
		cityIDs, err := encodeCityIDs(c.CityIDs)
		if err != nil {
			return false, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO couriers (id, name, phone, city_ids, active, created_at) VALUES (?, ?, ?, ?, ?, ?);`,
			c.ID, c.Name, c.Phone, cityIDs, boolToInt(c.Active), c.CreatedAt,
		)
		return err == nil, err
	case "vehicles":
		var v domain.Vehicle
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, fmt.Errorf("decode vehicle: %w", err)
		}
		exists, err := rowExists(ctx, tx, "vehicles", v.ID)
		if err != nil || exists {
			return false, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO vehicles (id, plate, model, driver, active, odometer_km, created_at) VALUES (?, ?, ?, ?, ?, ?, ?);`,
			v.ID, v.Plate, v.Model, v.Driver, boolToInt(v.Active), v.OdometerKm, v.CreatedAt,
		)
		return err == nil, err
	case "route_templates":
		var t domain.RouteTemplate
		if err := json.Unmarshal(raw, &t); err != nil {
			return false, fmt.Errorf("decode template: %w", err)
		}
		exists, err := rowExists(ctx, tx, "route_templates", t.ID)
		if err != nil || exists {
			return false, err
		}
		stops := t.Stops
		if stops == nil {
			stops = []domain.TemplateStop{}
		}
		encoded, err := json.Marshal(stops)
		if err != nil {
			return false, fmt.Errorf("encode stops: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO route_templates (id, name, description, vehicle_id, stops, created_at) VALUES (?, ?, ?, ?, ?, ?);`,
			t.ID, t.Name, t.Description, t.VehicleID, string(encoded), t.CreatedAt,
		)
		return err == nil, err
	case "routes":
		var r domain.Route
		if err := json.Unmarshal(raw, &r); err != nil {
			return false, fmt.Errorf("decode route: %w", err)
		}
		exists, err := rowExists(ctx, tx, "routes", r.ID)
		if err != nil || exists {
			return false, err
		}
		return true, insertRouteAggregate(ctx, tx, &r)
	case "refuelings":
		var r domain.Refueling
		if err := json.Unmarshal(raw, &r); err != nil {
			return false, fmt.Errorf("decode refueling: %w", err)
		}
		exists, err := rowExists(ctx, tx, "refuelings", r.ID)
		if err != nil || exists {
			return false, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO refuelings (id, vehicle_id, date, odometer_km, liters, total_cost, fuel_type, station, note, prior_km, km_per_liter, cost_per_km, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			r.ID, r.VehicleID, r.Date, r.OdometerKm, r.Liters, r.TotalCost, string(r.FuelType),
			r.Station, r.Note, r.PriorKm, r.KmPerLiter, r.CostPerKm, r.CreatedAt,
		)
		return err == nil, err
	case "maintenances":
		var m domain.Maintenance
		if err := json.Unmarshal(raw, &m); err != nil {
			return false, fmt.Errorf("decode maintenance: %w", err)
		}
		exists, err := rowExists(ctx, tx, "maintenances", m.ID)
		if err != nil || exists {
			return false, err
		}
		items := m.ReplacedItems
		if items == nil {
			items = []domain.ReplacedItem{}
		}
		encoded, err := json.Marshal(items)
		if err != nil {
			return false, fmt.Errorf("encode replaced_items: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO maintenances (id, vehicle_id, date, odometer_km, oil_type, replaced_items, next_due_km, next_due_date, note, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			m.ID, m.VehicleID, m.Date, m.OdometerKm, m.OilType, string(encoded),
			m.NextDueKm, m.NextDueDate, m.Note, m.CreatedAt,
		)
		return err == nil, err
	default:
		return false, fmt.Errorf("unknown table %q", table)
	}
}

func insertRouteAggregate(ctx context.Context, tx *sql.Tx, r *domain.Route) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO routes (id, date, vehicle_id, plate, driver, departure_km, departure_time, arrival_km, arrival_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.ID, r.Date, r.VehicleID, r.Plate, r.Driver,
		r.DepartureKm, r.DepartureTime, r.ArrivalKm, r.ArrivalTime, string(r.Status), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert route id=%d: %w", r.ID, err)
	}

	for pos, st := range r.Stops {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO route_stops (route_id, position, city_id, city_name, courier_id, courier_name, dispatched, delivered, returned, completed, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			r.ID, pos, st.CityID, st.CityName, st.CourierID, st.CourierName,
			st.Dispatched, st.Delivered, st.Returned, boolToInt(st.Completed), st.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("insert stop route_id=%d position=%d: %w", r.ID, pos, err)
		}
		for _, in := range st.Incidents {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO incidents (id, route_id, position, type, description, quantity, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?);`,
				in.ID, r.ID, pos, string(in.Type), in.Description, in.Quantity, in.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert incident id=%s: %w", in.ID, err)
			}
		}
	}
	return nil
}

func rowExists(ctx context.Context, tx *sql.Tx, table string, id int) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?;`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check existing id=%d: %w", id, err)
	}
	return true, nil
}
