package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"routelog/internal/domain"
)

// SQLite-backed implementation of the VehicleRepository port.
type SqliteVehicleRepository struct{ DB *sql.DB }

func NewSqliteVehicleRepository(db *sql.DB) *SqliteVehicleRepository {
	return &SqliteVehicleRepository{DB: db}
}

func (s *SqliteVehicleRepository) SaveVehicle(ctx context.Context, v *domain.Vehicle) (int, error) {
	if s.DB == nil {
		return 0, errors.New("sqlite vehicle repository: DB is nil")
	}

	if v.ID > 0 {
		query := `
		UPDATE vehicles
		SET plate = ?, model = ?, driver = ?, active = ?, odometer_km = ?
		WHERE id = ?;
		`
		if _, err := s.DB.ExecContext(ctx, query, v.Plate, v.Model, v.Driver, boolToInt(v.Active), v.OdometerKm, v.ID); err != nil {
			return 0, fmt.Errorf("save vehicle: update id=%d: %w", v.ID, err)
		}
		return v.ID, nil
	}

	query := `
	INSERT INTO vehicles (plate, model, driver, active, odometer_km, created_at)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	res, err := s.DB.ExecContext(ctx, query, v.Plate, v.Model, v.Driver, boolToInt(v.Active), v.OdometerKm, v.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("save vehicle: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save vehicle: last insert id: %w", err)
	}
	v.ID = int(id)
	return v.ID, nil
}

func (s *SqliteVehicleRepository) GetVehicle(ctx context.Context, id int) (*domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite vehicle repository: DB is nil")
	}

	query := `
	SELECT id, plate, model, driver, active, odometer_km, created_at
	FROM vehicles
	WHERE id = ?;
	`
	v := &domain.Vehicle{}
	var active int
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Plate, &v.Model, &v.Driver, &active, &v.OdometerKm, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle: id=%d: %w", id, err)
	}
	v.Active = active != 0
	return v, nil
}

func (s *SqliteVehicleRepository) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite vehicle repository: DB is nil")
	}

	query := `
	SELECT id, plate, model, driver, active, odometer_km, created_at
	FROM vehicles
	ORDER BY plate;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*domain.Vehicle, 0, 16)
	for rows.Next() {
		v := &domain.Vehicle{}
		var active int
		if err := rows.Scan(&v.ID, &v.Plate, &v.Model, &v.Driver, &active, &v.OdometerKm, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		v.Active = active != 0
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}

func (s *SqliteVehicleRepository) DeleteVehicle(ctx context.Context, id int) error {
	if s.DB == nil {
		return errors.New("sqlite vehicle repository: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete vehicle: id=%d: %w", id, err)
	}
	return nil
}

// AdvanceOdometer raises the cached reading to km. The guard lives in the
// statement so a stale in-memory vehicle can never lower the stored value.
func (s *SqliteVehicleRepository) AdvanceOdometer(ctx context.Context, id int, km int) error {
	if s.DB == nil {
		return errors.New("sqlite vehicle repository: DB is nil")
	}

	query := `
	UPDATE vehicles
	SET odometer_km = ?
	WHERE id = ? AND (odometer_km IS NULL OR odometer_km < ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, km, id, km); err != nil {
		return fmt.Errorf("advance odometer: vehicle_id=%d km=%d: %w", id, km, err)
	}
	return nil
}
