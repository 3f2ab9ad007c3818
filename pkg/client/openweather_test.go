package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
)

const jakartaBody = `{
	"weather": [{"id": 803, "main": "Clouds", "description": "awan pecah", "icon": "04d"}],
	"main": {"temp": 30.2, "feels_like": 35.1, "temp_min": 29, "temp_max": 31, "pressure": 1009, "humidity": 66},
	"visibility": 7000,
	"wind": {"speed": 4.1, "deg": 250},
	"clouds": {"all": 75},
	"sys": {"country": "ID"},
	"name": "Jakarta",
	"cod": 200
}`

func TestOpenWeatherGetCurrentWeather(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		query = map[string]string{
			"q":     r.URL.Query().Get("q"),
			"appid": r.URL.Query().Get("appid"),
			"units": r.URL.Query().Get("units"),
			"lang":  r.URL.Query().Get("lang"),
		}
		_, _ = w.Write([]byte(jakartaBody))
	}))
	defer srv.Close()

	c := NewOpenWeatherClient(OpenWeatherConfig{APIKey: "key", BaseURL: srv.URL, Lang: "id"}, testClientConfig(), zap.NewNop())

	weather, err := c.GetCurrentWeather(context.Background(), "Kuala Lumpur")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"q": "Kuala Lumpur", "appid": "key", "units": "metric", "lang": "id"}, query)
	assert.JSONEq(t, jakartaBody, string(weather.Raw))
	assert.Equal(t, "ID", weather.Reading.CountryCode)
	assert.Equal(t, 7000.0, weather.Reading.VisibilityM)
	assert.Equal(t, "awan pecah", weather.Reading.ConditionDescription)
}

func TestOpenWeatherNotConfigured(t *testing.T) {
	c := NewOpenWeatherClient(OpenWeatherConfig{}, testClientConfig(), zap.NewNop())

	_, err := c.GetCurrentWeather(context.Background(), "Jakarta")

	assert.True(t, apperr.IsConfig(err))
	assert.False(t, c.Configured())
	assert.Equal(t, "Weather API key not configured", err.Error())
}

func TestOpenWeatherCityNotFound(t *testing.T) {
	srv, _ := statusServer(t, http.StatusNotFound, `{"cod":"404","message":"city not found"}`)
	c := NewOpenWeatherClient(OpenWeatherConfig{APIKey: "key", BaseURL: srv.URL}, testClientConfig(), zap.NewNop())

	_, err := c.GetCurrentWeather(context.Background(), "Atlantis")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "city not found", apperr.Details(err))
}

func TestOpenWeatherInvalidKey(t *testing.T) {
	srv, _ := statusServer(t, http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key."}`)
	c := NewOpenWeatherClient(OpenWeatherConfig{APIKey: "bad", BaseURL: srv.URL}, testClientConfig(), zap.NewNop())

	_, err := c.GetCurrentWeather(context.Background(), "Jakarta")

	assert.Equal(t, http.StatusUnauthorized, apperr.HTTPStatus(err))
	assert.Equal(t, "Invalid API key.", apperr.Details(err))
}

func TestOpenWeatherMalformedBody(t *testing.T) {
	srv, _ := statusServer(t, http.StatusOK, `{"name":"Jakarta"}`)
	c := NewOpenWeatherClient(OpenWeatherConfig{APIKey: "key", BaseURL: srv.URL}, testClientConfig(), zap.NewNop())

	_, err := c.GetCurrentWeather(context.Background(), "Jakarta")

	var parseErr *apperr.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
