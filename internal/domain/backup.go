package domain

import "encoding/json"

// BackupVersion identifies the bundle layout produced by this build.
const BackupVersion = 1

// ServerConfig is the runtime sync configuration carried in a backup bundle.
type ServerConfig struct {
	ServerURL string `json:"server_url"`
	APIKey    string `json:"api_key"`
}

// BackupBundle is a portable JSON snapshot: a format version, a mapping from
// table name to that table's rows, and an optional server configuration
// block. Rows stay raw so the bundle round-trips fields this build does not
// know about.
type BackupBundle struct {
	Version     int                          `json:"version"`
	GeneratedAt string                       `json:"generated_at"`
	Tables      map[string][]json.RawMessage `json:"tables"`
	Config      *ServerConfig                `json:"config,omitempty"`
}
