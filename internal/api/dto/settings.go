package dto

type ServerSettingsRequest struct {
	ServerURL string `json:"server_url"`
	APIKey    string `json:"api_key"`
}

type ServerSettingsResponse struct {
	ServerURL string `json:"server_url"`
	APIKey    string `json:"api_key"`
}
