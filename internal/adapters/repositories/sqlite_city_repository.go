package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"routelog/internal/domain"
)

// SQLite-backed implementation of the CityRepository port.
type SqliteCityRepository struct{ DB *sql.DB }

func NewSqliteCityRepository(db *sql.DB) *SqliteCityRepository {
	return &SqliteCityRepository{DB: db}
}

func (s *SqliteCityRepository) SaveCity(ctx context.Context, c *domain.City) (int, error) {
	if s.DB == nil {
		return 0, errors.New("sqlite city repository: DB is nil")
	}

	if c.ID > 0 {
		query := `
		UPDATE cities
		SET name = ?, state = ?, distance_km = ?
		WHERE id = ?;
		`
		if _, err := s.DB.ExecContext(ctx, query, c.Name, c.State, c.DistanceKm, c.ID); err != nil {
			return 0, fmt.Errorf("save city: update id=%d: %w", c.ID, err)
		}
		return c.ID, nil
	}

	query := `
	INSERT INTO cities (name, state, distance_km, created_at)
	VALUES (?, ?, ?, ?);
	`
	res, err := s.DB.ExecContext(ctx, query, c.Name, c.State, c.DistanceKm, c.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("save city: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save city: last insert id: %w", err)
	}
	c.ID = int(id)
	return c.ID, nil
}

func (s *SqliteCityRepository) GetCity(ctx context.Context, id int) (*domain.City, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite city repository: DB is nil")
	}

	query := `
	SELECT id, name, state, distance_km, created_at
	FROM cities
	WHERE id = ?;
	`
	c := &domain.City{}
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.State, &c.DistanceKm, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get city: id=%d: %w", id, err)
	}
	return c, nil
}

func (s *SqliteCityRepository) ListCities(ctx context.Context) ([]*domain.City, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite city repository: DB is nil")
	}

	query := `
	SELECT id, name, state, distance_km, created_at
	FROM cities
	ORDER BY name;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cities: query: %w", err)
	}
	defer rows.Close()

	cities := make([]*domain.City, 0, 32)
	for rows.Next() {
		c := &domain.City{}
		if err := rows.Scan(&c.ID, &c.Name, &c.State, &c.DistanceKm, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("list cities: scan row: %w", err)
		}
		cities = append(cities, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cities: row iteration: %w", err)
	}

	return cities, nil
}

func (s *SqliteCityRepository) DeleteCity(ctx context.Context, id int) error {
	if s.DB == nil {
		return errors.New("sqlite city repository: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM cities WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete city: id=%d: %w", id, err)
	}
	return nil
}
