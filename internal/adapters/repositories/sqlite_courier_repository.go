package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"routelog/internal/domain"
)

// SQLite-backed implementation of the CourierRepository port.
// The served-city set is kept as a JSON column and decoded at this boundary.
type SqliteCourierRepository struct{ DB *sql.DB }

func NewSqliteCourierRepository(db *sql.DB) *SqliteCourierRepository {
	return &SqliteCourierRepository{DB: db}
}

func (s *SqliteCourierRepository) SaveCourier(ctx context.Context, c *domain.Courier) (int, error) {
	if s.DB == nil {
		return 0, errors.New("sqlite courier repository: DB is nil")
	}

	cityIDs, err := encodeCityIDs(c.CityIDs)
	if err != nil {
		return 0, fmt.Errorf("save courier: %w", err)
	}

	if c.ID > 0 {
		query := `
		UPDATE couriers
		SET name = ?, phone = ?, city_ids = ?, active = ?
		WHERE id = ?;
		`
		if _, err := s.DB.ExecContext(ctx, query, c.Name, c.Phone, cityIDs, boolToInt(c.Active), c.ID); err != nil {
			return 0, fmt.Errorf("save courier: update id=%d: %w", c.ID, err)
		}
		return c.ID, nil
	}

	query := `
	INSERT INTO couriers (name, phone, city_ids, active, created_at)
	VALUES (?, ?, ?, ?, ?);
	`
	res, err := s.DB.ExecContext(ctx, query, c.Name, c.Phone, cityIDs, boolToInt(c.Active), c.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("save courier: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save courier: last insert id: %w", err)
	}
	c.ID = int(id)
	return c.ID, nil
}

func (s *SqliteCourierRepository) GetCourier(ctx context.Context, id int) (*domain.Courier, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite courier repository: DB is nil")
	}

	query := `
	SELECT id, name, phone, city_ids, active, created_at
	FROM couriers
	WHERE id = ?;
	`
	c, err := scanCourier(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get courier: id=%d: %w", id, err)
	}
	return c, nil
}

func (s *SqliteCourierRepository) ListCouriers(ctx context.Context) ([]*domain.Courier, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite courier repository: DB is nil")
	}

	query := `
	SELECT id, name, phone, city_ids, active, created_at
	FROM couriers
	ORDER BY name;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list couriers: query: %w", err)
	}
	defer rows.Close()

	couriers := make([]*domain.Courier, 0, 32)
	for rows.Next() {
		c, err := scanCourier(rows)
		if err != nil {
			return nil, fmt.Errorf("list couriers: scan row: %w", err)
		}
		couriers = append(couriers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list couriers: row iteration: %w", err)
	}

	return couriers, nil
}

func (s *SqliteCourierRepository) DeleteCourier(ctx context.Context, id int) error {
	if s.DB == nil {
		return errors.New("sqlite courier repository: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM couriers WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete courier: id=%d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourier(row rowScanner) (*domain.Courier, error) {
	c := &domain.Courier{}
	var cityIDs string
	var active int

	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &cityIDs, &active, &c.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(cityIDs), &c.CityIDs); err != nil {
		return nil, fmt.Errorf("decode city_ids: %w", err)
	}
	c.Active = active != 0
	return c, nil
}

func encodeCityIDs(ids []int) (string, error) {
	if ids == nil {
		ids = []int{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode city_ids: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
