package weather

import (
	"context"
	"fmt"
	"time"

	"darshan/pkg/cache"
	"darshan/pkg/logger"
)

// Service serves current temple weather and the derived crowd impact
type Service interface {
	GetWeather(ctx context.Context, templeID string) (*WeatherData, error)
	GetImpact(ctx context.Context, templeID string) (*ImpactResponse, error)
}

type service struct {
	client   Client
	cache    cache.Service
	logger   *logger.Logger
	cacheTTL time.Duration
}

func NewService(client Client, cacheService cache.Service, log *logger.Logger, cacheTTL time.Duration) Service {
	return &service{
		client:   client,
		cache:    cacheService,
		logger:   log,
		cacheTTL: cacheTTL,
	}
}

// GetWeather fetches current conditions for a temple. Provider failures
// surface as upstream errors; stale cached weather is never served past
// its TTL and no synthetic defaults are returned.
func (s *service) GetWeather(ctx context.Context, templeID string) (*WeatherData, error) {
	fetch := func() (*WeatherData, error) {
		report, err := s.client.Fetch(ctx, CoordinatesFor(templeID))
		if err != nil {
			return nil, err
		}
		return &WeatherData{
			TempleID:                    templeID,
			Temperature:                 report.Current.Temperature,
			Humidity:                    report.Current.Humidity,
			WindSpeed:                   report.Current.WindSpeed,
			PrecipitationProbability:    report.Current.PrecipitationProbability,
			MaxTemperature:              report.Forecast.MaxTemperature,
			MinTemperature:              report.Forecast.MinTemperature,
			PrecipitationProbabilityMax: report.Forecast.PrecipitationProbabilityMax,
			Condition:                   ConditionForCode(report.Current.WeatherCode),
			FetchedAt:                   time.Now().UTC(),
		}, nil
	}

	if s.cache == nil {
		return fetch()
	}

	var data WeatherData
	key := fmt.Sprintf("weather:current:%s", templeID)
	err := s.cache.GetOrSet(ctx, key, &data, s.cacheTTL, func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// GetImpact derives the crowd impact estimate from current weather
func (s *service) GetImpact(ctx context.Context, templeID string) (*ImpactResponse, error) {
	data, err := s.GetWeather(ctx, templeID)
	if err != nil {
		return nil, err
	}

	return &ImpactResponse{
		TempleID: templeID,
		Weather:  data,
		Impact:   EstimateImpact(data.Temperature, data.PrecipitationProbabilityMax, data.WindSpeed),
	}, nil
}
