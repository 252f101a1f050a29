package httpsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"routelog/internal/ports"
)

// Settings keys for the runtime sync configuration.
const (
	SettingServerURL = "server_url"
	SettingAPIKey    = "api_key"
)

// ErrNotConfigured marks sync calls skipped because no usable server
// configuration is stored.
var ErrNotConfigured = errors.New("sync not configured")

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Client pushes local mutations to the sync server. The base URL and API key
// are read from settings on every call, so configuration changes take effect
// without a restart.
type Client struct {
	settings ports.SettingsRepository
	session  *http.Client
}

func NewClient(settings ports.SettingsRepository) *Client {
	return &Client{
		settings: settings,
		session:  &http.Client{},
	}
}

// config loads the stored server URL and API key. A URL shorter than a
// plausible "http://x.y" or a key shorter than eight characters counts as
// not configured.
func (c *Client) config(ctx context.Context) (baseURL, apiKey string, err error) {
	baseURL, err = c.settings.GetSetting(ctx, SettingServerURL)
	if err != nil {
		return "", "", fmt.Errorf("sync config: %w", err)
	}
	apiKey, err = c.settings.GetSetting(ctx, SettingAPIKey)
	if err != nil {
		return "", "", fmt.Errorf("sync config: %w", err)
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if len(baseURL) <= 10 || len(strings.TrimSpace(apiKey)) < 8 {
		return "", "", ErrNotConfigured
	}
	return baseURL, apiKey, nil
}

// Upsert POSTs the payload to /api/sync/{resource} on the configured server.
func (c *Client) Upsert(ctx context.Context, resource string, payload any) error {
	baseURL, apiKey, err := c.config(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sync upsert %s: encode payload: %w", resource, err)
	}

	url := fmt.Sprintf("%s/api/sync/%s", baseURL, resource)
	req, err := c.newRequest(ctx, http.MethodPost, url, apiKey, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sync upsert %s: %w", resource, err)
	}

	if err := c.do(req); err != nil {
		return fmt.Errorf("sync upsert %s: %w", resource, err)
	}
	return nil
}

// Remove DELETEs /api/sync/{resource}/{id} on the configured server.
func (c *Client) Remove(ctx context.Context, resource string, id int) error {
	baseURL, apiKey, err := c.config(ctx)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/sync/%s/%d", baseURL, resource, id)
	req, err := c.newRequest(ctx, http.MethodDelete, url, apiKey, nil)
	if err != nil {
		return fmt.Errorf("sync remove %s id=%d: %w", resource, id, err)
	}

	if err := c.do(req); err != nil {
		return fmt.Errorf("sync remove %s id=%d: %w", resource, id, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, url, apiKey string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// TestResult is the outcome of a connectivity check, phrased for direct
// display to the operator.
type TestResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// TestTimeout caps how long a connectivity check may take.
const TestTimeout = 8 * time.Second

// TestConnection probes the configured server and classifies the outcome.
// A 400 still proves the server and key are reachable (the probe carries no
// body), so it counts as connected.
func (c *Client) TestConnection(ctx context.Context) TestResult {
	baseURL, apiKey, err := c.config(ctx)
	if errors.Is(err, ErrNotConfigured) {
		return TestResult{OK: false, Message: "server URL and API key are not configured"}
	}
	if err != nil {
		return TestResult{OK: false, Message: "could not read sync settings"}
	}

	ctx, cancel := context.WithTimeout(ctx, TestTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, baseURL+"/api/sync/ping", apiKey, nil)
	if err != nil {
		return TestResult{OK: false, Message: "invalid server URL"}
	}

	err = c.do(req)
	if err == nil {
		return TestResult{OK: true, Message: "connected"}
	}

	var he *httpStatusError
	if errors.As(err, &he) {
		switch {
		case he.Code == http.StatusBadRequest:
			return TestResult{OK: true, Message: "connected"}
		case he.Code == http.StatusUnauthorized:
			return TestResult{OK: false, Message: "API key incorrect"}
		default:
			return TestResult{OK: false, Message: fmt.Sprintf("server returned status %d", he.Code)}
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return TestResult{OK: false, Message: "connection timed out"}
	}
	return TestResult{OK: false, Message: "server unreachable"}
}
