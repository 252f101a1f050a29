package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"routelog/internal/domain"
)

// SQLite-backed implementation of the RefuelingRepository port.
type SqliteRefuelingRepository struct{ DB *sql.DB }

func NewSqliteRefuelingRepository(db *sql.DB) *SqliteRefuelingRepository {
	return &SqliteRefuelingRepository{DB: db}
}

const refuelingColumns = `id, vehicle_id, date, odometer_km, liters, total_cost, fuel_type, station, note, prior_km, km_per_liter, cost_per_km, created_at`

func (s *SqliteRefuelingRepository) SaveRefueling(ctx context.Context, r *domain.Refueling) (int, error) {
	if s.DB == nil {
		return 0, errors.New("sqlite refueling repository: DB is nil")
	}

	query := `
	INSERT INTO refuelings (vehicle_id, date, odometer_km, liters, total_cost, fuel_type, station, note, prior_km, km_per_liter, cost_per_km, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	res, err := s.DB.ExecContext(ctx, query,
		r.VehicleID, r.Date, r.OdometerKm, r.Liters, r.TotalCost, string(r.FuelType),
		r.Station, r.Note, r.PriorKm, r.KmPerLiter, r.CostPerKm, r.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("save refueling: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save refueling: last insert id: %w", err)
	}
	r.ID = int(id)
	return r.ID, nil
}

func (s *SqliteRefuelingRepository) ListRefuelings(ctx context.Context, vehicleID int) ([]*domain.Refueling, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite refueling repository: DB is nil")
	}

	query := `
	SELECT ` + refuelingColumns + `
	FROM refuelings
	WHERE vehicle_id = ?
	ORDER BY odometer_km DESC;
	`
	return s.queryRefuelings(ctx, query, vehicleID)
}

func (s *SqliteRefuelingRepository) ListRefuelingsPeriod(ctx context.Context, from, to string, vehicleID int) ([]*domain.Refueling, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite refueling repository: DB is nil")
	}

	query := `
	SELECT ` + refuelingColumns + `
	FROM refuelings
	WHERE date >= ? AND date <= ?
	`
	args := []any{from, to}
	if vehicleID > 0 {
		query += "AND vehicle_id = ?\n"
		args = append(args, vehicleID)
	}
	query += "ORDER BY date DESC, odometer_km DESC;"

	return s.queryRefuelings(ctx, query, args...)
}

func (s *SqliteRefuelingRepository) LatestRefueling(ctx context.Context, vehicleID int) (*domain.Refueling, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite refueling repository: DB is nil")
	}

	query := `
	SELECT ` + refuelingColumns + `
	FROM refuelings
	WHERE vehicle_id = ?
	ORDER BY odometer_km DESC
	LIMIT 1;
	`
	r, err := scanRefueling(s.DB.QueryRowContext(ctx, query, vehicleID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest refueling: vehicle_id=%d: %w", vehicleID, err)
	}
	return r, nil
}

// RefuelingBelow finds the prior fill for efficiency derivation: the highest
// odometer reading strictly below km for the same vehicle.
func (s *SqliteRefuelingRepository) RefuelingBelow(ctx context.Context, vehicleID int, km int) (*domain.Refueling, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite refueling repository: DB is nil")
	}

	query := `
	SELECT ` + refuelingColumns + `
	FROM refuelings
	WHERE vehicle_id = ? AND odometer_km < ?
	ORDER BY odometer_km DESC
	LIMIT 1;
	`
	r, err := scanRefueling(s.DB.QueryRowContext(ctx, query, vehicleID, km))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refueling below: vehicle_id=%d km=%d: %w", vehicleID, km, err)
	}
	return r, nil
}

func (s *SqliteRefuelingRepository) DeleteRefueling(ctx context.Context, id int) error {
	if s.DB == nil {
		return errors.New("sqlite refueling repository: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM refuelings WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete refueling: id=%d: %w", id, err)
	}
	return nil
}

func (s *SqliteRefuelingRepository) queryRefuelings(ctx context.Context, query string, args ...any) ([]*domain.Refueling, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list refuelings: query: %w", err)
	}
	defer rows.Close()

	refuelings := make([]*domain.Refueling, 0, 32)
	for rows.Next() {
		r, err := scanRefueling(rows)
		if err != nil {
			return nil, fmt.Errorf("list refuelings: scan row: %w", err)
		}
		refuelings = append(refuelings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list refuelings: row iteration: %w", err)
	}
	return refuelings, nil
}

func scanRefueling(row rowScanner) (*domain.Refueling, error) {
	r := &domain.Refueling{}
	var fuelType string
	err := row.Scan(
		&r.ID, &r.VehicleID, &r.Date, &r.OdometerKm, &r.Liters, &r.TotalCost, &fuelType,
		&r.Station, &r.Note, &r.PriorKm, &r.KmPerLiter, &r.CostPerKm, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.FuelType = domain.FuelType(fuelType)
	return r, nil
}
