package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the database schema. The DDL sticks to the portable subset so
// the same statements run against embedded SQLite and the dbtool's Postgres
// target.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCitiesQuery := `
	CREATE TABLE IF NOT EXISTS cities (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		state TEXT NOT NULL,
		distance_km REAL,
		created_at TEXT NOT NULL
	);
	`

	createCouriersQuery := `
	CREATE TABLE IF NOT EXISTS couriers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		city_ids TEXT NOT NULL DEFAULT '[]',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id INTEGER PRIMARY KEY,
		plate TEXT NOT NULL,
		model TEXT NOT NULL,
		driver TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		odometer_km INTEGER,
		created_at TEXT NOT NULL
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY,
		date TEXT NOT NULL,
		vehicle_id INTEGER NOT NULL,
		plate TEXT NOT NULL,
		driver TEXT NOT NULL,
		departure_km INTEGER NOT NULL,
		departure_time TEXT NOT NULL,
		arrival_km INTEGER,
		arrival_time TEXT,
		status TEXT NOT NULL DEFAULT 'in_progress',
		created_at TEXT NOT NULL
	);
	`

	createRouteStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_stops (
		route_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		city_id INTEGER NOT NULL,
		city_name TEXT NOT NULL,
		courier_id INTEGER NOT NULL,
		courier_name TEXT NOT NULL,
		dispatched INTEGER NOT NULL,
		delivered INTEGER,
		returned INTEGER,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT,
		PRIMARY KEY (route_id, position)
	);
	`

	createIncidentsQuery := `
	CREATE TABLE IF NOT EXISTS incidents (
		id TEXT PRIMARY KEY,
		route_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	`

	createRefuelingsQuery := `
	CREATE TABLE IF NOT EXISTS refuelings (
		id INTEGER PRIMARY KEY,
		vehicle_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		odometer_km INTEGER NOT NULL,
		liters REAL NOT NULL,
		total_cost REAL NOT NULL,
		fuel_type TEXT NOT NULL,
		station TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		prior_km INTEGER,
		km_per_liter REAL,
		cost_per_km REAL,
		created_at TEXT NOT NULL
	);
	`

	createMaintenancesQuery := `
	CREATE TABLE IF NOT EXISTS maintenances (
		id INTEGER PRIMARY KEY,
		vehicle_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		odometer_km INTEGER NOT NULL,
		oil_type TEXT NOT NULL DEFAULT '',
		replaced_items TEXT NOT NULL DEFAULT '[]',
		next_due_km INTEGER,
		next_due_date TEXT,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	`

	createTemplatesQuery := `
	CREATE TABLE IF NOT EXISTS route_templates (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		vehicle_id INTEGER NOT NULL,
		stops TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);
	`

	createSettingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	// Rapid double submission of a new route loses here, not just in the
	// lifecycle engine.
	createActiveRouteIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS uniq_routes_in_progress
	ON routes(status) WHERE status = 'in_progress';
	`

	createRouteStopsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_incidents_route_position
	ON incidents(route_id, position);
	`

	createRefuelingsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_refuelings_vehicle_odometer
	ON refuelings(vehicle_id, odometer_km);
	`

	createMaintenancesIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_maintenances_vehicle_odometer
	ON maintenances(vehicle_id, odometer_km);
	`

	statements := []string{
		createCitiesQuery,
		createCouriersQuery,
		createVehiclesQuery,
		createRoutesQuery,
		createRouteStopsQuery,
		createIncidentsQuery,
		createRefuelingsQuery,
		createMaintenancesQuery,
		createTemplatesQuery,
		createSettingsQuery,
		createActiveRouteIndexQuery,
		createRouteStopsIndexQuery,
		createRefuelingsIndexQuery,
		createMaintenancesIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
