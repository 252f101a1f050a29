package ports

import "context"

// Port: a boundary for runtime key/value settings (sync server URL, API key).
// Get returns the empty string for keys that were never set.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
