package handlers

import (
	"net/http"

	"routelog/internal/adapters/httpsync"
	"routelog/internal/api/dto"
	"routelog/internal/ports"
)

// SettingsHandler manages the sync server credentials and their
// connectivity test.
type SettingsHandler struct {
	Settings ports.SettingsRepository
	Client   *httpsync.Client
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	url, err := h.Settings.GetSetting(r.Context(), httpsync.SettingServerURL)
	if err != nil {
		handleError(w, r, err)
		return
	}
	key, err := h.Settings.GetSetting(r.Context(), httpsync.SettingAPIKey)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ServerSettingsResponse{ServerURL: url, APIKey: key})
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req dto.ServerSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Settings.SetSetting(r.Context(), httpsync.SettingServerURL, req.ServerURL); err != nil {
		handleError(w, r, err)
		return
	}
	if err := h.Settings.SetSetting(r.Context(), httpsync.SettingAPIKey, req.APIKey); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ServerSettingsResponse{ServerURL: req.ServerURL, APIKey: req.APIKey})
}

// Test probes the configured server and reports a user-facing verdict.
// The result is always 200; failure lives in the payload.
func (h *SettingsHandler) Test(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Client.TestConnection(r.Context()))
}
