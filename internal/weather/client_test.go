package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"darshan/internal/shared/apperrors"
	"darshan/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20.8880", r.URL.Query().Get("latitude"))
		assert.Equal(t, "70.4015", r.URL.Query().Get("longitude"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,precipitation_probability_max", r.URL.Query().Get("daily"))
		assert.Equal(t, "1", r.URL.Query().Get("forecast_days"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"current":{"temperature_2m":31.5,"relative_humidity_2m":68,"precipitation_probability":20,"weather_code":2,"wind_speed_10m":12.5},
			"daily":{"temperature_2m_max":[34.1],"temperature_2m_min":[26.3],"precipitation_probability_max":[55]}
		}`))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.URL, 5*time.Second)
	report, err := client.Fetch(context.Background(), CoordinatesFor("somnath"))
	require.NoError(t, err)

	assert.Equal(t, 31.5, report.Current.Temperature)
	assert.Equal(t, 68.0, report.Current.Humidity)
	assert.Equal(t, 2, report.Current.WeatherCode)
	assert.Equal(t, 34.1, report.Forecast.MaxTemperature)
	assert.Equal(t, 26.3, report.Forecast.MinTemperature)
	assert.Equal(t, 55.0, report.Forecast.PrecipitationProbabilityMax)
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.URL, 5*time.Second)
	_, err := client.Fetch(context.Background(), CoordinatesFor("dwarka"))
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

func TestFetchMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.URL, 5*time.Second)
	_, err := client.Fetch(context.Background(), CoordinatesFor("dwarka"))
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

func TestFetchMissingCurrentBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily":{"temperature_2m_max":[34.1],"temperature_2m_min":[26.3],"precipitation_probability_max":[55]}}`))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.URL, 5*time.Second)
	_, err := client.Fetch(context.Background(), CoordinatesFor("ambaji"))
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

func TestFetchMissingDailyBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{"temperature_2m":31.5,"relative_humidity_2m":68,"precipitation_probability":20,"weather_code":2,"wind_speed_10m":12.5}}`))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.URL, 5*time.Second)
	_, err := client.Fetch(context.Background(), CoordinatesFor("pavagadh"))
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

type fakeClient struct {
	report *Report
	err    error
}

func (f *fakeClient) Fetch(ctx context.Context, coords Coordinates) (*Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func TestServiceGetImpact(t *testing.T) {
	client := &fakeClient{report: &Report{
		Current: CurrentConditions{
			Temperature:              25,
			Humidity:                 60,
			PrecipitationProbability: 10,
			WeatherCode:              0,
			WindSpeed:                8,
		},
		Forecast: DailyForecast{
			MaxTemperature:              32,
			MinTemperature:              24,
			PrecipitationProbabilityMax: 10,
		},
	}}
	svc := NewService(client, nil, logger.New(), time.Minute)

	resp, err := svc.GetImpact(context.Background(), "somnath")
	require.NoError(t, err)

	assert.Equal(t, "Clear", resp.Weather.Condition)
	assert.Equal(t, ImpactLow, resp.Impact.Level)
}

func TestServiceImpactUsesDailyPrecipMax(t *testing.T) {
	// Dry right now, but the day's forecast carries a high rain chance:
	// the estimate must follow the daily maximum, not the current instant.
	client := &fakeClient{report: &Report{
		Current: CurrentConditions{
			Temperature:              38,
			Humidity:                 55,
			PrecipitationProbability: 0,
			WeatherCode:              1,
			WindSpeed:                10,
		},
		Forecast: DailyForecast{
			MaxTemperature:              41,
			MinTemperature:              30,
			PrecipitationProbabilityMax: 70,
		},
	}}
	svc := NewService(client, nil, logger.New(), time.Minute)

	resp, err := svc.GetImpact(context.Background(), "dwarka")
	require.NoError(t, err)

	// +1 heat, +2 rain probability
	assert.Equal(t, 3, resp.Impact.Score)
	assert.Equal(t, ImpactHigh, resp.Impact.Level)
	assert.Equal(t, 70.0, resp.Weather.PrecipitationProbabilityMax)
}

func TestServiceUpstreamFailurePropagates(t *testing.T) {
	client := &fakeClient{err: apperrors.Upstream(errors.New("provider down"))}
	svc := NewService(client, nil, logger.New(), time.Minute)

	_, err := svc.GetWeather(context.Background(), "somnath")
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}
