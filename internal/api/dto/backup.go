package dto

import (
	"encoding/json"

	"routelog/internal/domain"
)

// ExportRequest selects which tables go into the bundle. Empty means all.
type ExportRequest struct {
	Tables        []string `json:"tables"`
	IncludeConfig bool     `json:"include_config"`
}

// RestoreRequest is a bundle as produced by export, optionally asking for
// the embedded server config to be applied to local settings.
type RestoreRequest struct {
	Version     int                          `json:"version"`
	GeneratedAt string                       `json:"generated_at"`
	Tables      map[string][]json.RawMessage `json:"tables"`
	Config      *domain.ServerConfig         `json:"config,omitempty"`
	ApplyConfig bool                         `json:"apply_config,omitempty"`
}

type RestoreResponse struct {
	Inserted      map[string]int `json:"inserted"`
	ConfigApplied bool           `json:"config_applied"`
}
