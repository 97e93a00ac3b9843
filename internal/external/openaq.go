package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"airwatch/internal/aqi"
	"airwatch/internal/types"
)

// OpenAQClient is the secondary air-quality source. It has no credential;
// the latest measurement value near the coordinate stands in for the index
// when the primary provider yields nothing.
type OpenAQClient struct {
	base    *BaseClient
	baseURL string
}

// NewOpenAQClient creates an OpenAQ client.
func NewOpenAQClient(base *BaseClient, baseURL string) *OpenAQClient {
	return &OpenAQClient{
		base:    base,
		baseURL: baseURL,
	}
}

// Name identifies this provider in gateway logs.
func (c *OpenAQClient) Name() string { return "openaq" }

type openAQEnvelope struct {
	Results []struct {
		Measurements []struct {
			Value *float64 `json:"value"`
		} `json:"measurements"`
	} `json:"results"`
}

// Fetch returns the first measurement value reported near the coordinate,
// or ErrNoData when the API has no results there.
func (c *OpenAQClient) Fetch(ctx context.Context, lat, lon float64) (float64, error) {
	endpoint := fmt.Sprintf("%s/v2/latest?coordinates=%s",
		c.baseURL,
		url.QueryEscape(fmt.Sprintf("%s,%s", formatCoord(lat), formatCoord(lon))),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("building openaq request: %w", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return 0, fmt.Errorf("openaq request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, types.NewAppError(types.ErrCodeUpstreamAirQuality,
			fmt.Sprintf("openaq returned status %d", resp.StatusCode), nil)
	}

	var env openAQEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return 0, fmt.Errorf("decoding openaq response: %w", err)
	}

	if len(env.Results) == 0 || len(env.Results[0].Measurements) == 0 {
		return 0, aqi.ErrNoData
	}
	value := env.Results[0].Measurements[0].Value
	if value == nil {
		return 0, aqi.ErrNoData
	}
	return *value, nil
}
