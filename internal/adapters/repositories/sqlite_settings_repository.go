package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the SettingsRepository port.
type SqliteSettingsRepository struct{ DB *sql.DB }

func NewSqliteSettingsRepository(db *sql.DB) *SqliteSettingsRepository {
	return &SqliteSettingsRepository{DB: db}
}

// GetSetting returns the stored value, or the empty string for unknown keys.
func (s *SqliteSettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	if s.DB == nil {
		return "", errors.New("sqlite settings repository: DB is nil")
	}

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: key=%s: %w", key, err)
	}
	return value, nil
}

func (s *SqliteSettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	if s.DB == nil {
		return errors.New("sqlite settings repository: DB is nil")
	}

	query := `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value;
	`
	if _, err := s.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set setting: key=%s: %w", key, err)
	}
	return nil
}
