package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"airwatch/internal/types"
)

// GeocodeClient resolves free-text addresses to coordinates via the
// Nominatim search API. Nominatim requires an identifying User-Agent, which
// the BaseClient injects on every request.
type GeocodeClient struct {
	base    *BaseClient
	baseURL string
}

// NewGeocodeClient creates a Nominatim geocoding client.
func NewGeocodeClient(base *BaseClient, baseURL string) *GeocodeClient {
	return &GeocodeClient{
		base:    base,
		baseURL: baseURL,
	}
}

// nominatimResult carries coordinates as strings, which is how Nominatim
// serializes them.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address to a coordinate pair. Returns
// not_found_address when the search has no results.
func (c *GeocodeClient) Geocode(ctx context.Context, address string) (lat, lon float64, err error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("building geocode request: %w", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, types.NewAppError(types.ErrCodeUpstreamGeocoding,
			fmt.Sprintf("geocoder returned status %d", resp.StatusCode), nil)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("decoding geocode response: %w", err)
	}

	if len(results) == 0 {
		return 0, 0, types.NewAppError(types.ErrCodeNotFoundAddress,
			"address not found", nil)
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, types.NewAppError(types.ErrCodeUpstreamGeocoding,
			"geocoder returned unparsable coordinates", nil)
	}

	return lat, lon, nil
}
