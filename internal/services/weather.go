package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
	"github.com/bobby-s-dev/weather-assistant/pkg/client"
)

type WeatherClient interface {
	GetCurrentWeather(ctx context.Context, city string) (*models.CurrentWeather, error)
	Configured() bool
	BreakerStats() client.BreakerStats
}

// WeatherService fronts the weather provider with a cache and keeps simple
// fetch counters for the metrics endpoint.
type WeatherService struct {
	client        WeatherClient
	cache         *ProxyCache
	logger        *zap.Logger
	mu            sync.RWMutex
	lastFetchTime time.Time
	successCount  int
	failureCount  int
}

func NewWeatherService(weatherClient WeatherClient, cache *ProxyCache, logger *zap.Logger) *WeatherService {
	return &WeatherService{
		client: weatherClient,
		cache:  cache,
		logger: logger,
	}
}

func (s *WeatherService) Configured() bool {
	return s.client.Configured()
}

// GetCurrentWeather returns the cached reading for city or fetches a fresh
// one. Failures are never cached.
func (s *WeatherService) GetCurrentWeather(ctx context.Context, city string) (*models.CurrentWeather, error) {
	if !s.client.Configured() {
		return nil, &apperr.ConfigError{Service: "Weather API", EnvVar: "WEATHER_API_KEY"}
	}

	if cached, ok := s.cache.GetCurrentWeather(city); ok {
		s.logger.Debug("Cache hit for current weather", zap.String("city", city))
		return cached, nil
	}

	s.logger.Debug("Cache miss for current weather, fetching fresh data", zap.String("city", city))

	weather, err := s.client.GetCurrentWeather(ctx, city)
	s.record(err)
	if err != nil {
		return nil, err
	}

	s.cache.SetCurrentWeather(city, weather)
	return weather, nil
}

// CurrentReading is GetCurrentWeather without the raw provider body.
func (s *WeatherService) CurrentReading(ctx context.Context, city string) (*models.WeatherReading, error) {
	weather, err := s.GetCurrentWeather(ctx, city)
	if err != nil {
		return nil, err
	}
	return weather.Reading, nil
}

// FetchWeatherData refreshes the cache for every city concurrently.
func (s *WeatherService) FetchWeatherData(ctx context.Context, cities []string) error {
	if !s.client.Configured() {
		return &apperr.ConfigError{Service: "Weather API", EnvVar: "WEATHER_API_KEY"}
	}

	s.mu.Lock()
	s.lastFetchTime = time.Now()
	s.mu.Unlock()

	var wg sync.WaitGroup
	errCh := make(chan error, len(cities))

	startTime := time.Now()

	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()

			weather, err := s.client.GetCurrentWeather(ctx, city)
			s.record(err)
			if err != nil {
				s.logger.Error("Failed to fetch weather for city",
					zap.String("city", city),
					zap.Error(err))
				errCh <- fmt.Errorf("%s: %w", city, err)
				return
			}
			s.cache.SetCurrentWeather(city, weather)
		}(city)
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}

	s.logger.Info("Weather fetch completed",
		zap.Int("cities", len(cities)),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("failed", len(errs)))

	if len(errs) > 0 {
		return fmt.Errorf("some cities failed to fetch weather data: %w", errors.Join(errs...))
	}
	return nil
}

func (s *WeatherService) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failureCount++
	} else {
		s.successCount++
	}
}

func (s *WeatherService) GetLastFetchTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetchTime
}

func (s *WeatherService) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"configured":      s.client.Configured(),
		"last_fetch_time": s.lastFetchTime,
		"success_count":   s.successCount,
		"failure_count":   s.failureCount,
		"circuit_breaker": s.client.BreakerStats(),
		"cache_stats":     s.cache.GetStats(),
	}
}
