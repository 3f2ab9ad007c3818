package services

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
	"github.com/bobby-s-dev/weather-assistant/internal/season"
	"github.com/bobby-s-dev/weather-assistant/pkg/client"
)

type CountryClient interface {
	GetCountry(ctx context.Context, name string) (*models.CountryLookup, error)
	BreakerStats() client.BreakerStats
}

type ReadingSource interface {
	CurrentReading(ctx context.Context, city string) (*models.WeatherReading, error)
}

// ConditionsClient reads current conditions by coordinates.
type ConditionsClient interface {
	GetCurrentConditions(ctx context.Context, lat, lon float64) (*models.WeatherReading, error)
}

type CountryService struct {
	countries  CountryClient
	weather    ReadingSource
	conditions ConditionsClient
	cache      *ProxyCache
	logger     *zap.Logger
	now        func() time.Time
}

// NewCountryService wires the country lookup. conditions may be nil, in
// which case profiles have no coordinate based weather fallback.
func NewCountryService(countries CountryClient, weather ReadingSource, conditions ConditionsClient, cache *ProxyCache, logger *zap.Logger) *CountryService {
	return &CountryService{
		countries:  countries,
		weather:    weather,
		conditions: conditions,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *CountryService) GetCountry(ctx context.Context, name string) (*models.CountryLookup, error) {
	if cached, ok := s.cache.GetCountry(name); ok {
		s.logger.Debug("Cache hit for country", zap.String("name", name))
		return cached, nil
	}

	lookup, err := s.countries.GetCountry(ctx, name)
	if err != nil {
		return nil, err
	}

	s.cache.SetCountry(name, lookup)
	return lookup, nil
}

// GetProfile combines the first matching country with its capital's
// current weather and a season estimate. A weather failure is reported in
// the profile instead of failing the whole lookup.
func (s *CountryService) GetProfile(ctx context.Context, name string) (*models.CountryProfile, error) {
	lookup, err := s.GetCountry(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(lookup.Countries) == 0 {
		return nil, &apperr.UpstreamError{Service: "Country API", Status: http.StatusNotFound, Message: "country not found"}
	}

	country := lookup.Countries[0]
	profile := &models.CountryProfile{
		Country: country,
		Capital: country.Name.Common,
		Seasons: season.All(),
	}
	if len(country.Capital) > 0 && country.Capital[0] != "" {
		profile.Capital = country.Capital[0]
	}

	var countryLat float64
	if len(country.LatLng) == 2 {
		countryLat = country.LatLng[0]
		profile.Latitude, profile.Longitude = country.LatLng[0], country.LatLng[1]
	}
	if len(country.CapitalInfo.LatLng) == 2 {
		profile.Latitude, profile.Longitude = country.CapitalInfo.LatLng[0], country.CapitalInfo.LatLng[1]
	}

	profile.CurrentSeason = season.Info(season.Predict(countryLat, s.now().Month()))

	reading, source, err := s.capitalWeather(ctx, profile)
	if err != nil {
		s.logger.Warn("Capital weather unavailable",
			zap.String("country", country.Name.Common),
			zap.String("capital", profile.Capital),
			zap.Error(err))
		profile.WeatherError = apperr.Details(err)
		return profile, nil
	}

	profile.Weather = reading
	profile.WeatherIcon = WeatherIcon(reading.ConditionMain)
	profile.WeatherSource = source
	return profile, nil
}

func (s *CountryService) capitalWeather(ctx context.Context, profile *models.CountryProfile) (*models.WeatherReading, string, error) {
	reading, err := s.weather.CurrentReading(ctx, profile.Capital)
	if err == nil {
		return reading, "openweathermap", nil
	}
	if s.conditions == nil || (profile.Latitude == 0 && profile.Longitude == 0) {
		return nil, "", err
	}

	s.logger.Debug("Falling back to coordinate weather",
		zap.String("capital", profile.Capital),
		zap.Error(err))

	fallback, fallbackErr := s.conditions.GetCurrentConditions(ctx, profile.Latitude, profile.Longitude)
	if fallbackErr != nil {
		return nil, "", err
	}
	fallback.CityName = profile.Capital
	return fallback, "open-meteo", nil
}

func (s *CountryService) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"circuit_breaker": s.countries.BreakerStats(),
	}
}

// WeatherIcon maps an OpenWeatherMap condition group to an emoji.
func WeatherIcon(main string) string {
	switch main {
	case "Clear":
		return "☀️"
	case "Clouds":
		return "☁️"
	case "Rain":
		return "🌧️"
	case "Drizzle":
		return "🌦️"
	case "Thunderstorm":
		return "⛈️"
	case "Snow":
		return "❄️"
	case "Mist", "Haze", "Fog":
		return "🌫️"
	case "Smoke", "Dust", "Sand", "Ash", "Squall":
		return "💨"
	case "Tornado":
		return "🌪️"
	default:
		return "🌤️"
	}
}
