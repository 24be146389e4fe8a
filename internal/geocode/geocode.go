package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"facility-buddy-backend/config"
	"facility-buddy-backend/internal/metrics"
)

// Resolver turns street addresses into coordinates via an external
// geocoding service. It holds no state beyond its HTTP client.
type Resolver struct {
	endpoint string
	apiKey   string
	client   *http.Client
	metrics  *metrics.Metrics
}

// NewResolver creates a resolver from configuration.
func NewResolver(cfg *config.GeocodeConfig, m *metrics.Metrics) *Resolver {
	return &Resolver{
		endpoint: cfg.URL,
		apiKey:   cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: m,
	}
}

// geocodeResponse models the service's body. Only the first result is used.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve geocodes an address. A non-OK geocode status or an empty result
// set yields (nil, nil, nil): the address is unrankable, which is a valid
// outcome, not an error. Transport or parse failures return an error.
func (r *Resolver) Resolve(ctx context.Context, address string) (lat, lng *float64, err error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", r.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.metrics.ObserveUpstreamRequest("geocode", "transport_error")
		return nil, nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	r.metrics.ObserveUpstreamRequest("geocode", strconv.Itoa(resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("geocode request failed: status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("failed to parse geocode response: %w", err)
	}

	if body.Status != "OK" || len(body.Results) == 0 {
		return nil, nil, nil
	}

	loc := body.Results[0].Geometry.Location
	return &loc.Lat, &loc.Lng, nil
}
