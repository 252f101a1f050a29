package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"routelog/internal/domain"
)

// SQLite-backed implementation of the TemplateRepository port.
// Template stops are references only, so the ordered list stays a JSON
// column rather than a child table.
type SqliteTemplateRepository struct{ DB *sql.DB }

func NewSqliteTemplateRepository(db *sql.DB) *SqliteTemplateRepository {
	return &SqliteTemplateRepository{DB: db}
}

func (s *SqliteTemplateRepository) SaveTemplate(ctx context.Context, t *domain.RouteTemplate) (int, error) {
	if s.DB == nil {
		return 0, errors.New("sqlite template repository: DB is nil")
	}

	stops := t.Stops
	if stops == nil {
		stops = []domain.TemplateStop{}
	}
	encoded, err := json.Marshal(stops)
	if err != nil {
		return 0, fmt.Errorf("save template: encode stops: %w", err)
	}

	if t.ID > 0 {
		query := `
		UPDATE route_templates
		SET name = ?, description = ?, vehicle_id = ?, stops = ?
		WHERE id = ?;
		`
		if _, err := s.DB.ExecContext(ctx, query, t.Name, t.Description, t.VehicleID, string(encoded), t.ID); err != nil {
			return 0, fmt.Errorf("save template: update id=%d: %w", t.ID, err)
		}
		return t.ID, nil
	}

	query := `
	INSERT INTO route_templates (name, description, vehicle_id, stops, created_at)
	VALUES (?, ?, ?, ?, ?);
	`
	res, err := s.DB.ExecContext(ctx, query, t.Name, t.Description, t.VehicleID, string(encoded), t.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("save template: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save template: last insert id: %w", err)
	}
	t.ID = int(id)
	return t.ID, nil
}

func (s *SqliteTemplateRepository) GetTemplate(ctx context.Context, id int) (*domain.RouteTemplate, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite template repository: DB is nil")
	}

	query := `
	SELECT id, name, description, vehicle_id, stops, created_at
	FROM route_templates
	WHERE id = ?;
	`
	t, err := scanTemplate(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: id=%d: %w", id, err)
	}
	return t, nil
}

func (s *SqliteTemplateRepository) ListTemplates(ctx context.Context) ([]*domain.RouteTemplate, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite template repository: DB is nil")
	}

	query := `
	SELECT id, name, description, vehicle_id, stops, created_at
	FROM route_templates
	ORDER BY name;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: query: %w", err)
	}
	defer rows.Close()

	templates := make([]*domain.RouteTemplate, 0, 16)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("list templates: scan row: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: row iteration: %w", err)
	}
	return templates, nil
}

func (s *SqliteTemplateRepository) DeleteTemplate(ctx context.Context, id int) error {
	if s.DB == nil {
		return errors.New("sqlite template repository: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM route_templates WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete template: id=%d: %w", id, err)
	}
	return nil
}

func scanTemplate(row rowScanner) (*domain.RouteTemplate, error) {
	t := &domain.RouteTemplate{}
	var stops string
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.VehicleID, &stops, &t.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stops), &t.Stops); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}
	return t, nil
}
