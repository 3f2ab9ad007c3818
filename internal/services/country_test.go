package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
	"github.com/bobby-s-dev/weather-assistant/internal/season"
	"github.com/bobby-s-dev/weather-assistant/pkg/client"
)

const australiaBody = `[{"name":{"common":"Australia","official":"Commonwealth of Australia"},"capital":["Canberra"],"capitalInfo":{"latlng":[-35.27,149.13]},"latlng":[-27,133]}]`

type fakeCountryClient struct {
	body  string
	err   error
	calls int
}

func (f *fakeCountryClient) GetCountry(context.Context, string) (*models.CountryLookup, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var countries []models.Country
	if err := json.Unmarshal([]byte(f.body), &countries); err != nil {
		return nil, err
	}
	return &models.CountryLookup{Raw: json.RawMessage(f.body), Countries: countries}, nil
}

func (f *fakeCountryClient) BreakerStats() client.BreakerStats {
	return client.BreakerStats{State: "closed"}
}

type fakeReadings struct {
	reading *models.WeatherReading
	err     error
	cities  []string
}

func (f *fakeReadings) CurrentReading(_ context.Context, city string) (*models.WeatherReading, error) {
	f.cities = append(f.cities, city)
	return f.reading, f.err
}

type fakeConditions struct {
	reading *models.WeatherReading
	err     error
	coords  [][2]float64
}

func (f *fakeConditions) GetCurrentConditions(_ context.Context, lat, lon float64) (*models.WeatherReading, error) {
	f.coords = append(f.coords, [2]float64{lat, lon})
	return f.reading, f.err
}

func newTestCountryService(t *testing.T, countries CountryClient, weather ReadingSource, conditions ConditionsClient) *CountryService {
	cache := NewProxyCache(time.Minute, 100, zap.NewNop())
	t.Cleanup(cache.Stop)
	svc := NewCountryService(countries, weather, conditions, cache, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.July, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestGetCountryIsCached(t *testing.T) {
	countries := &fakeCountryClient{body: australiaBody}
	svc := newTestCountryService(t, countries, &fakeReadings{}, nil)

	for i := 0; i < 2; i++ {
		lookup, err := svc.GetCountry(context.Background(), "Australia")
		require.NoError(t, err)
		assert.JSONEq(t, australiaBody, string(lookup.Raw))
	}
	assert.Equal(t, 1, countries.calls)
}

func TestGetProfile(t *testing.T) {
	readings := &fakeReadings{reading: &models.WeatherReading{CityName: "Canberra", ConditionMain: "Clouds"}}
	svc := newTestCountryService(t, &fakeCountryClient{body: australiaBody}, readings, nil)

	profile, err := svc.GetProfile(context.Background(), "australia")
	require.NoError(t, err)

	assert.Equal(t, "Canberra", profile.Capital)
	assert.Equal(t, -35.27, profile.Latitude)
	assert.Equal(t, 149.13, profile.Longitude)
	assert.Equal(t, []string{"Canberra"}, readings.cities)
	assert.Equal(t, "☁️", profile.WeatherIcon)
	assert.Equal(t, "openweathermap", profile.WeatherSource)
	assert.Equal(t, season.Winter, profile.CurrentSeason.ID)
	assert.Len(t, profile.Seasons, 4)
	assert.Empty(t, profile.WeatherError)
}

func TestGetProfileFallsBackToCoordinates(t *testing.T) {
	readings := &fakeReadings{err: &apperr.ConfigError{Service: "Weather API", EnvVar: "WEATHER_API_KEY"}}
	conditions := &fakeConditions{reading: &models.WeatherReading{ConditionMain: "Rain"}}
	svc := newTestCountryService(t, &fakeCountryClient{body: australiaBody}, readings, conditions)

	profile, err := svc.GetProfile(context.Background(), "australia")
	require.NoError(t, err)

	assert.Equal(t, [][2]float64{{-35.27, 149.13}}, conditions.coords)
	assert.Equal(t, "open-meteo", profile.WeatherSource)
	assert.Equal(t, "🌧️", profile.WeatherIcon)
	assert.Equal(t, "Canberra", profile.Weather.CityName)
}

func TestGetProfileRecordsWeatherFailure(t *testing.T) {
	readings := &fakeReadings{err: &apperr.UpstreamError{Service: "Weather API", Status: http.StatusNotFound, Message: "city not found"}}
	conditions := &fakeConditions{err: errors.New("offline")}
	svc := newTestCountryService(t, &fakeCountryClient{body: australiaBody}, readings, conditions)

	profile, err := svc.GetProfile(context.Background(), "australia")
	require.NoError(t, err)

	assert.Nil(t, profile.Weather)
	assert.Equal(t, "city not found", profile.WeatherError)
}

func TestGetProfileWithoutCapital(t *testing.T) {
	body := `[{"name":{"common":"Antarctica"},"latlng":[-90,0]}]`
	readings := &fakeReadings{reading: &models.WeatherReading{ConditionMain: "Snow"}}
	svc := newTestCountryService(t, &fakeCountryClient{body: body}, readings, nil)

	profile, err := svc.GetProfile(context.Background(), "antarctica")
	require.NoError(t, err)

	assert.Equal(t, "Antarctica", profile.Capital)
	assert.Equal(t, []string{"Antarctica"}, readings.cities)
}

func TestGetProfileNoMatches(t *testing.T) {
	svc := newTestCountryService(t, &fakeCountryClient{body: `[]`}, &fakeReadings{}, nil)

	_, err := svc.GetProfile(context.Background(), "nowhere")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWeatherIcon(t *testing.T) {
	assert.Equal(t, "☀️", WeatherIcon("Clear"))
	assert.Equal(t, "🌫️", WeatherIcon("Haze"))
	assert.Equal(t, "💨", WeatherIcon("Squall"))
	assert.Equal(t, "🌤️", WeatherIcon("Unknown"))
}
