package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

const weatherService = "Weather API"

type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
	Units   string
	Lang    string
}

type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
	units   string
	lang    string
}

func NewOpenWeatherClient(cfg OpenWeatherConfig, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	return newOpenWeatherClient(cfg, NewBaseClient(weatherService, config, logger))
}

func newOpenWeatherClient(cfg OpenWeatherConfig, base *BaseClient) *OpenWeatherClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	units := cfg.Units
	if units == "" {
		units = "metric"
	}
	return &OpenWeatherClient{
		BaseClient: base,
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		units:      units,
		lang:       cfg.Lang,
	}
}

func (c *OpenWeatherClient) Configured() bool {
	return c.apiKey != ""
}

// GetCurrentWeather returns the provider's body verbatim together with the
// parsed reading. Provider errors keep their status and message.
func (c *OpenWeatherClient) GetCurrentWeather(ctx context.Context, city string) (*models.CurrentWeather, error) {
	if !c.Configured() {
		return nil, &apperr.ConfigError{Service: weatherService, EnvVar: "WEATHER_API_KEY"}
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)
	if c.lang != "" {
		query.Set("lang", c.lang)
	}

	data, err := c.GetWithRetry(ctx, fmt.Sprintf("%s/weather?%s", c.baseURL, query.Encode()))
	if err != nil {
		return nil, withOpenWeatherMessage(err)
	}

	reading, err := models.ParseWeatherReading(data)
	if err != nil {
		return nil, err
	}

	return &models.CurrentWeather{Raw: json.RawMessage(data), Reading: reading}, nil
}

// withOpenWeatherMessage replaces the generic status text with the message
// OpenWeatherMap put in the error body, e.g. "city not found".
func withOpenWeatherMessage(err error) error {
	var upstream *apperr.UpstreamError
	if !errors.As(err, &upstream) || len(upstream.Body) == 0 {
		return err
	}

	var body models.OpenWeatherError
	if json.Unmarshal(upstream.Body, &body) == nil && body.Message != "" {
		upstream.Message = body.Message
	}
	return err
}
