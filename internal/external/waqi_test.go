package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airwatch/internal/aqi"
	"airwatch/internal/types"
)

func newTestBaseClient() *BaseClient {
	return NewBaseClient(
		&http.Client{},
		"test",
		RetryPolicy{MaxRetries: 0, MinWait: 0, MaxWait: 0},
		"test-agent/1.0",
		WithSleepFunc(func(time.Duration) {}),
	)
}

func TestWAQIClient_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "geo:-23.55;-46.63")
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":87,"city":{"name":"São Paulo"}}}`))
	}))
	defer server.Close()

	client := NewWAQIClient(newTestBaseClient(), server.URL, types.SecretString("secret"))

	index, err := client.Fetch(context.Background(), -23.55, -46.63)
	require.NoError(t, err)
	assert.Equal(t, 87.0, index)
}

func TestWAQIClient_Fetch_ErrorStatusYieldsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","data":null}`))
	}))
	defer server.Close()

	client := NewWAQIClient(newTestBaseClient(), server.URL, "secret")

	_, err := client.Fetch(context.Background(), 1, 2)
	assert.ErrorIs(t, err, aqi.ErrNoData)
}

func TestWAQIClient_Fetch_DashIndexYieldsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":"-"}}`))
	}))
	defer server.Close()

	client := NewWAQIClient(newTestBaseClient(), server.URL, "secret")

	_, err := client.Fetch(context.Background(), 1, 2)
	assert.ErrorIs(t, err, aqi.ErrNoData)
}

func TestWAQIClient_Fetch_QuotedNumericString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":"42"}}`))
	}))
	defer server.Close()

	client := NewWAQIClient(newTestBaseClient(), server.URL, "secret")

	index, err := client.Fetch(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 42.0, index)
}

func TestWAQIClient_Observe_FullSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"data": {
				"aqi": 120,
				"city": {"name": "Curitiba"},
				"dominentpol": "pm25",
				"iaqi": {"pm25": {"v": 120.0}, "o3": {"v": 14.2}}
			}
		}`))
	}))
	defer server.Close()

	client := NewWAQIClient(newTestBaseClient(), server.URL, "secret")

	obs, err := client.Observe(context.Background(), -25.43, -49.27)
	require.NoError(t, err)

	assert.Equal(t, "Curitiba", obs.Location)
	require.NotNil(t, obs.AQI)
	assert.Equal(t, 120, *obs.AQI)
	assert.Equal(t, "pm25", obs.DominantPollutant)
	assert.Len(t, obs.Measurements, 2)
	assert.Equal(t, -25.43, obs.Lat)
}

func TestWAQIClient_Observe_UnparsableIndexLeavesAQINil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","data":{"aqi":"-","city":{"name":"X"}}}`))
	}))
	defer server.Close()

	client := NewWAQIClient(newTestBaseClient(), server.URL, "secret")

	obs, err := client.Observe(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Nil(t, obs.AQI)
}

func TestWAQIClient_Observe_ErrorStatusIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}))
	defer server.Close()

	client := NewWAQIClient(newTestBaseClient(), server.URL, "secret")

	_, err := client.Observe(context.Background(), 1, 2)
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundAQIData, appErr.Code)
}

func TestParseIndex(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"number", `87`, 87, false},
		{"float", `87.5`, 87.5, false},
		{"quoted number", `"42"`, 42, false},
		{"dash", `"-"`, 0, true},
		{"null", `null`, 0, true},
		{"empty", ``, 0, true},
		{"word", `"unknown"`, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseIndex(json.RawMessage(tc.raw))
			if tc.wantErr {
				assert.ErrorIs(t, err, aqi.ErrNoData)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatCoord(t *testing.T) {
	assert.Equal(t, "-23.55", formatCoord(-23.55))
	assert.Equal(t, "0", formatCoord(0))
	assert.Equal(t, "10", formatCoord(10.0))
}
