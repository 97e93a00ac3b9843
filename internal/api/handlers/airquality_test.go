package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airwatch/internal/types"
)

// --- Fakes ---

type fakeGeocoder struct {
	lat, lon float64
	err      error
	queries  []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (float64, float64, error) {
	f.queries = append(f.queries, address)
	return f.lat, f.lon, f.err
}

type fakeObserver struct {
	obs  *types.AirObservation
	err  error
	lats []float64
}

func (f *fakeObserver) Observe(_ context.Context, lat, _ float64) (*types.AirObservation, error) {
	f.lats = append(f.lats, lat)
	return f.obs, f.err
}

func intPtr(v int) *int { return &v }

func newAirQualityRouter(geocoder *fakeGeocoder, observer *fakeObserver) *chi.Mux {
	r := chi.NewRouter()
	NewAirQualityHandler(geocoder, observer).Routes(r)
	return r
}

// --- Tests ---

func TestAirQuality_ByCoordinates(t *testing.T) {
	observer := &fakeObserver{obs: &types.AirObservation{
		Location: "São Paulo",
		AQI:      intPtr(180),
	}}
	router := newAirQualityRouter(&fakeGeocoder{}, observer)

	req := httptest.NewRequest(http.MethodGet, "/air-quality?lat=-23.55&lon=-46.63", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp airQualityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Observation.AQI)
	assert.Equal(t, 180, *resp.Observation.AQI)
	assert.Equal(t, "unhealthy", resp.Category)
	assert.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, []float64{-23.55}, observer.lats)
}

func TestAirQuality_ByAddress(t *testing.T) {
	geocoder := &fakeGeocoder{lat: -23.55, lon: -46.63}
	observer := &fakeObserver{obs: &types.AirObservation{AQI: intPtr(42)}}
	router := newAirQualityRouter(geocoder, observer)

	req := httptest.NewRequest(http.MethodGet, "/air-quality?address=Avenida+Paulista", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Avenida Paulista"}, geocoder.queries)
	assert.Equal(t, []float64{-23.55}, observer.lats)
}

func TestAirQuality_NilAQIFallsIntoGoodTier(t *testing.T) {
	observer := &fakeObserver{obs: &types.AirObservation{AQI: nil}}
	router := newAirQualityRouter(&fakeGeocoder{}, observer)

	req := httptest.NewRequest(http.MethodGet, "/air-quality?lat=1&lon=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp airQualityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "good", resp.Category)
}

func TestAirQuality_MissingParameters(t *testing.T) {
	router := newAirQualityRouter(&fakeGeocoder{}, &fakeObserver{})

	req := httptest.NewRequest(http.MethodGet, "/air-quality", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAirQuality_InvalidLatitude(t *testing.T) {
	router := newAirQualityRouter(&fakeGeocoder{}, &fakeObserver{})

	req := httptest.NewRequest(http.MethodGet, "/air-quality?lat=91&lon=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, string(types.ErrCodeValidationInvalidLat), body.Error.Code)
}

func TestAirQuality_AddressNotFound(t *testing.T) {
	geocoder := &fakeGeocoder{err: types.NewAppError(types.ErrCodeNotFoundAddress, "address not found", nil)}
	router := newAirQualityRouter(geocoder, &fakeObserver{})

	req := httptest.NewRequest(http.MethodGet, "/air-quality?address=nowhere", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, string(types.ErrCodeNotFoundAddress), body.Error.Code)
}

func TestAirQuality_UpstreamFailure(t *testing.T) {
	observer := &fakeObserver{err: types.NewAppError(types.ErrCodeUpstreamAirQuality, "provider down", nil)}
	router := newAirQualityRouter(&fakeGeocoder{}, observer)

	req := httptest.NewRequest(http.MethodGet, "/air-quality?lat=1&lon=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
