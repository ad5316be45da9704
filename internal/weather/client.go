package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"darshan/internal/shared/apperrors"
)

// Client fetches current conditions and the same-day forecast from the
// provider.
type Client interface {
	Fetch(ctx context.Context, coords Coordinates) (*Report, error)
}

// CurrentConditions is the provider's current weather block
type CurrentConditions struct {
	Temperature              float64 `json:"temperature_2m"`
	Humidity                 float64 `json:"relative_humidity_2m"`
	PrecipitationProbability float64 `json:"precipitation_probability"`
	WeatherCode              int     `json:"weather_code"`
	WindSpeed                float64 `json:"wind_speed_10m"`
}

// DailyForecast is the same-day daily block: forecast temperature range and
// the day's maximum precipitation probability, which drives the crowd
// impact estimate.
type DailyForecast struct {
	MaxTemperature              float64 `json:"max_temperature"`
	MinTemperature              float64 `json:"min_temperature"`
	PrecipitationProbabilityMax float64 `json:"precipitation_probability_max"`
}

// Report pairs the current conditions with the same-day forecast
type Report struct {
	Current  CurrentConditions
	Forecast DailyForecast
}

type openMeteoDaily struct {
	TemperatureMax              []float64 `json:"temperature_2m_max"`
	TemperatureMin              []float64 `json:"temperature_2m_min"`
	PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
}

type openMeteoResponse struct {
	Current *CurrentConditions `json:"current"`
	Daily   *openMeteoDaily    `json:"daily"`
}

type openMeteoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenMeteoClient builds a client for the Open-Meteo forecast API
func NewOpenMeteoClient(baseURL string, timeout time.Duration) Client {
	return &openMeteoClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch calls the provider. Any failure is a hard upstream error: no
// defaults are substituted for missing weather, and a payload without the
// current or daily block is treated as malformed.
func (c *openMeteoClient) Fetch(ctx context.Context, coords Coordinates) (*Report, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", coords.Latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", coords.Longitude))
	params.Set("current", "temperature_2m,relative_humidity_2m,precipitation_probability,weather_code,wind_speed_10m")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	params.Set("forecast_days", "1")
	params.Set("timezone", "Asia/Kolkata")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Upstream(fmt.Errorf("weather provider returned status %d", resp.StatusCode))
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Upstream(fmt.Errorf("malformed weather payload: %w", err))
	}
	if payload.Current == nil {
		return nil, apperrors.Upstream(fmt.Errorf("weather payload missing current block"))
	}
	if payload.Daily == nil ||
		len(payload.Daily.TemperatureMax) == 0 ||
		len(payload.Daily.TemperatureMin) == 0 ||
		len(payload.Daily.PrecipitationProbabilityMax) == 0 {
		return nil, apperrors.Upstream(fmt.Errorf("weather payload missing daily block"))
	}

	return &Report{
		Current: *payload.Current,
		Forecast: DailyForecast{
			MaxTemperature:              payload.Daily.TemperatureMax[0],
			MinTemperature:              payload.Daily.TemperatureMin[0],
			PrecipitationProbabilityMax: payload.Daily.PrecipitationProbabilityMax[0],
		},
	}, nil
}
