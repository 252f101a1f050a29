package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"routelog/internal/domain"
)

// SQLite-backed implementation of the MaintenanceRepository port.
// The replaced-item set is kept as a JSON column and decoded at this boundary.
type SqliteMaintenanceRepository struct{ DB *sql.DB }

func NewSqliteMaintenanceRepository(db *sql.DB) *SqliteMaintenanceRepository {
	return &SqliteMaintenanceRepository{DB: db}
}

const maintenanceColumns = `id, vehicle_id, date, odometer_km, oil_type, replaced_items, next_due_km, next_due_date, note, created_at`

func (s *SqliteMaintenanceRepository) SaveMaintenance(ctx context.Context, m *domain.Maintenance) (int, error) {
	if s.DB == nil {
		return 0, errors.New("sqlite maintenance repository: DB is nil")
	}

	items := m.ReplacedItems
	if items == nil {
		items = []domain.ReplacedItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("save maintenance: encode replaced_items: %w", err)
	}

	query := `
	INSERT INTO maintenances (vehicle_id, date, odometer_km, oil_type, replaced_items, next_due_km, next_due_date, note, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	res, err := s.DB.ExecContext(ctx, query,
		m.VehicleID, m.Date, m.OdometerKm, m.OilType, string(encoded),
		m.NextDueKm, m.NextDueDate, m.Note, m.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("save maintenance: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save maintenance: last insert id: %w", err)
	}
	m.ID = int(id)
	return m.ID, nil
}

func (s *SqliteMaintenanceRepository) ListMaintenances(ctx context.Context, vehicleID int) ([]*domain.Maintenance, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite maintenance repository: DB is nil")
	}

	query := `
	SELECT ` + maintenanceColumns + `
	FROM maintenances
	WHERE vehicle_id = ?
	ORDER BY odometer_km DESC;
	`
	return s.queryMaintenances(ctx, query, vehicleID)
}

func (s *SqliteMaintenanceRepository) ListMaintenancesPeriod(ctx context.Context, from, to string, vehicleID int) ([]*domain.Maintenance, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite maintenance repository: DB is nil")
	}

	query := `
	SELECT ` + maintenanceColumns + `
	FROM maintenances
	WHERE date >= ? AND date <= ?
	`
	args := []any{from, to}
	if vehicleID > 0 {
		query += "AND vehicle_id = ?\n"
		args = append(args, vehicleID)
	}
	query += "ORDER BY date DESC, odometer_km DESC;"

	return s.queryMaintenances(ctx, query, args...)
}

func (s *SqliteMaintenanceRepository) LatestMaintenance(ctx context.Context, vehicleID int) (*domain.Maintenance, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite maintenance repository: DB is nil")
	}

	query := `
	SELECT ` + maintenanceColumns + `
	FROM maintenances
	WHERE vehicle_id = ?
	ORDER BY odometer_km DESC
	LIMIT 1;
	`
	m, err := scanMaintenance(s.DB.QueryRowContext(ctx, query, vehicleID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest maintenance: vehicle_id=%d: %w", vehicleID, err)
	}
	return m, nil
}

func (s *SqliteMaintenanceRepository) DeleteMaintenance(ctx context.Context, id int) error {
	if s.DB == nil {
		return errors.New("sqlite maintenance repository: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM maintenances WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete maintenance: id=%d: %w", id, err)
	}
	return nil
}

func (s *SqliteMaintenanceRepository) queryMaintenances(ctx context.Context, query string, args ...any) ([]*domain.Maintenance, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list maintenances: query: %w", err)
	}
	defer rows.Close()

	maintenances := make([]*domain.Maintenance, 0, 16)
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("list maintenances: scan row: %w", err)
		}
		maintenances = append(maintenances, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list maintenances: row iteration: %w", err)
	}
	return maintenances, nil
}

func scanMaintenance(row rowScanner) (*domain.Maintenance, error) {
	m := &domain.Maintenance{}
	var items string
	err := row.Scan(
		&m.ID, &m.VehicleID, &m.Date, &m.OdometerKm, &m.OilType, &items,
		&m.NextDueKm, &m.NextDueDate, &m.Note, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &m.ReplacedItems); err != nil {
		return nil, fmt.Errorf("decode replaced_items: %w", err)
	}
	return m, nil
}
