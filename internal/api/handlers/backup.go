package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"routelog/internal/adapters/httpsync"
	"routelog/internal/adapters/repositories"
	"routelog/internal/api/dto"
	"routelog/internal/domain"
	"routelog/internal/ports"
)

// BackupStore is what the handler needs from the persistence side: dump
// tables out, load tables in.
type BackupStore interface {
	Export(ctx context.Context, tables []string) (map[string][]json.RawMessage, error)
	Restore(ctx context.Context, tables map[string][]json.RawMessage) (map[string]int, error)
}

// BackupHandler builds and restores portable JSON bundles.
type BackupHandler struct {
	Store    BackupStore
	Settings ports.SettingsRepository
	Now      func() time.Time
}

func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	// The body is optional; without one every table is exported.
	var req dto.ExportRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	tables := req.Tables
	if len(tables) == 0 {
		tables = repositories.BackupTables
	}

	exported, err := h.Store.Export(r.Context(), tables)
	if err != nil {
		handleError(w, r, err)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	bundle := &domain.BackupBundle{
		Version:     domain.BackupVersion,
		GeneratedAt: now().UTC().Format(time.RFC3339),
		Tables:      exported,
	}

	if req.IncludeConfig {
		config, err := h.serverConfig(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		bundle.Config = config
	}

	writeJSON(w, r, http.StatusOK, bundle)
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req dto.RestoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Version != domain.BackupVersion {
		writeError(w, r, http.StatusBadRequest, "unsupported backup version")
		return
	}
	if len(req.Tables) == 0 {
		writeError(w, r, http.StatusBadRequest, "bundle has no tables")
		return
	}

	inserted, err := h.Store.Restore(r.Context(), req.Tables)
	if err != nil {
		handleError(w, r, err)
		return
	}

	res := dto.RestoreResponse{Inserted: inserted}
	if req.ApplyConfig && req.Config != nil {
		if err := h.applyServerConfig(r.Context(), req.Config); err != nil {
			handleError(w, r, err)
			return
		}
		res.ConfigApplied = true
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *BackupHandler) serverConfig(ctx context.Context) (*domain.ServerConfig, error) {
	url, err := h.Settings.GetSetting(ctx, httpsync.SettingServerURL)
	if err != nil {
		return nil, err
	}
	key, err := h.Settings.GetSetting(ctx, httpsync.SettingAPIKey)
	if err != nil {
		return nil, err
	}
	if url == "" && key == "" {
		return nil, nil
	}
	return &domain.ServerConfig{ServerURL: url, APIKey: key}, nil
}

func (h *BackupHandler) applyServerConfig(ctx context.Context, config *domain.ServerConfig) error {
	if err := h.Settings.SetSetting(ctx, httpsync.SettingServerURL, config.ServerURL); err != nil {
		return err
	}
	return h.Settings.SetSetting(ctx, httpsync.SettingAPIKey, config.APIKey)
}
