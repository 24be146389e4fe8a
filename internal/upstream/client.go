package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"facility-buddy-backend/config"
	"facility-buddy-backend/internal/metrics"
)

const (
	pathFacilityInfo   = "/api/templeInfo"
	pathSetFacility    = "/api/templeInfo/setTemple"
	pathFacilityImage  = "/api/templeInfo/getTempleTitanImage/"
	pathSchedulingList = "/api/templeConfig/findAllOnlineSchedulingStatuses"
	pathSessionInfo    = "/api/templeSchedule/getSessionInfo"
)

// Client talks to the scheduling site's API using an ambient authenticated
// session. It covers both the facility-info endpoints and the availability
// endpoint; all calls ride the same cookie and headers.
type Client struct {
	baseURL string
	headers map[string]string
	cookie  string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewClient creates an upstream client from configuration.
func NewClient(cfg *config.UpstreamConfig, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		headers: cfg.Headers,
		cookie:  cfg.SessionCookie,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: m,
	}
}

// doJSON issues one request and decodes the JSON response into out. A non-OK
// status or transport error is reported as ErrRequestFailed.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveUpstreamRequest(path, "transport_error")
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveUpstreamRequest(path, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Path: path}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to unmarshal response from %s: %w", path, err)
		}
	}
	return nil
}
