package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"airwatch/internal/aqi"
	"airwatch/internal/types"
)

// WAQIClient talks to the World Air Quality Index feed API. It serves two
// callers: the gateway (Fetch, index only) and the read-only air-quality
// endpoints (Observe, full station snapshot).
type WAQIClient struct {
	base    *BaseClient
	baseURL string
	token   types.SecretString
}

// NewWAQIClient creates a WAQI client. token is the account token passed as
// a query parameter on every request.
func NewWAQIClient(base *BaseClient, baseURL string, token types.SecretString) *WAQIClient {
	return &WAQIClient{
		base:    base,
		baseURL: baseURL,
		token:   token,
	}
}

// Name identifies this provider in gateway logs.
func (c *WAQIClient) Name() string { return "waqi" }

// waqiEnvelope is the WAQI feed response. AQI is kept raw because the API
// returns a number, a "-" string, or null depending on station state.
type waqiEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		AQI  json.RawMessage `json:"aqi"`
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		DominentPol string `json:"dominentpol"`
		IAQI        map[string]struct {
			V float64 `json:"v"`
		} `json:"iaqi"`
	} `json:"data"`
}

// Fetch returns the current index for a coordinate. A non-ok status or a
// non-numeric index yields ErrNoData so the gateway falls through to the
// secondary provider.
func (c *WAQIClient) Fetch(ctx context.Context, lat, lon float64) (float64, error) {
	env, err := c.feed(ctx, lat, lon)
	if err != nil {
		return 0, err
	}
	if env.Status != "ok" {
		return 0, fmt.Errorf("waqi status %q: %w", env.Status, aqi.ErrNoData)
	}
	return parseIndex(env.Data.AQI)
}

// Observe returns the full station snapshot for the read-only endpoints.
// A non-ok status maps to not_found_air_quality_data (the station has no
// data, the request itself succeeded). An unparsable index leaves AQI nil.
func (c *WAQIClient) Observe(ctx context.Context, lat, lon float64) (*types.AirObservation, error) {
	env, err := c.feed(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if env.Status != "ok" {
		return nil, types.NewAppError(types.ErrCodeNotFoundAQIData,
			"air quality data not available for this location", nil)
	}

	obs := &types.AirObservation{
		Location:          env.Data.City.Name,
		DominantPollutant: env.Data.DominentPol,
		Lat:               lat,
		Lon:               lon,
	}
	if index, err := parseIndex(env.Data.AQI); err == nil {
		rounded := int(index)
		obs.AQI = &rounded
	}
	for param, value := range env.Data.IAQI {
		obs.Measurements = append(obs.Measurements, types.AirMeasurement{
			Parameter: param,
			Value:     value.V,
			Unit:      "N/A",
		})
	}
	return obs, nil
}

func (c *WAQIClient) feed(ctx context.Context, lat, lon float64) (*waqiEnvelope, error) {
	endpoint := fmt.Sprintf("%s/feed/geo:%s;%s/?token=%s",
		c.baseURL,
		formatCoord(lat),
		formatCoord(lon),
		url.QueryEscape(c.token.Unmask()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building waqi request: %w", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, fmt.Errorf("waqi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(types.ErrCodeUpstreamAirQuality,
			fmt.Sprintf("waqi returned status %d", resp.StatusCode), nil)
	}

	var env waqiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding waqi response: %w", err)
	}
	return &env, nil
}

// parseIndex coerces the raw AQI value to a number. Null, "-", and anything
// else non-numeric yield ErrNoData -- never zero.
func parseIndex(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, aqi.ErrNoData
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}

	// WAQI sometimes reports the index as a quoted numeric string.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			return num, nil
		}
	}

	return 0, fmt.Errorf("non-numeric index %s: %w", raw, aqi.ErrNoData)
}

// formatCoord renders a coordinate without trailing zeros, matching the
// geo:lat;lon path format WAQI expects.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
