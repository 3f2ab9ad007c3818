package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
	"github.com/bobby-s-dev/weather-assistant/pkg/client"
)

type fakeWeatherClient struct {
	mu         sync.Mutex
	configured bool
	calls      map[string]int
	failures   map[string]error
}

func newFakeWeatherClient() *fakeWeatherClient {
	return &fakeWeatherClient{configured: true, calls: map[string]int{}, failures: map[string]error{}}
}

func (f *fakeWeatherClient) GetCurrentWeather(_ context.Context, city string) (*models.CurrentWeather, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[city]++
	if err, ok := f.failures[city]; ok {
		return nil, err
	}
	return &models.CurrentWeather{
		Raw:     []byte(`{"name":"` + city + `"}`),
		Reading: &models.WeatherReading{CityName: city, ConditionMain: "Clear"},
	}, nil
}

func (f *fakeWeatherClient) Configured() bool { return f.configured }

func (f *fakeWeatherClient) BreakerStats() client.BreakerStats {
	return client.BreakerStats{State: "closed"}
}

func newTestWeatherService(t *testing.T, c WeatherClient) *WeatherService {
	cache := NewProxyCache(time.Minute, 100, zap.NewNop())
	t.Cleanup(cache.Stop)
	return NewWeatherService(c, cache, zap.NewNop())
}

func TestWeatherServiceCachesReadings(t *testing.T) {
	fake := newFakeWeatherClient()
	svc := newTestWeatherService(t, fake)
	ctx := context.Background()

	first, err := svc.GetCurrentWeather(ctx, "Jakarta")
	require.NoError(t, err)
	second, err := svc.GetCurrentWeather(ctx, "jakarta")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fake.calls["Jakarta"])

	reading, err := svc.CurrentReading(ctx, "Jakarta")
	require.NoError(t, err)
	assert.Equal(t, "Jakarta", reading.CityName)
}

func TestWeatherServiceDoesNotCacheFailures(t *testing.T) {
	fake := newFakeWeatherClient()
	fake.failures["Atlantis"] = &apperr.UpstreamError{Service: "Weather API", Status: http.StatusNotFound}
	svc := newTestWeatherService(t, fake)

	for i := 0; i < 2; i++ {
		_, err := svc.GetCurrentWeather(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	}
	assert.Equal(t, 2, fake.calls["Atlantis"])
	assert.Equal(t, 2, svc.GetStats()["failure_count"])
}

func TestWeatherServiceNotConfigured(t *testing.T) {
	fake := newFakeWeatherClient()
	fake.configured = false
	svc := newTestWeatherService(t, fake)

	_, err := svc.GetCurrentWeather(context.Background(), "Jakarta")
	assert.True(t, apperr.IsConfig(err))

	err = svc.FetchWeatherData(context.Background(), []string{"Jakarta"})
	assert.True(t, apperr.IsConfig(err))
	assert.Empty(t, fake.calls)
}

func TestFetchWeatherDataWarmsCache(t *testing.T) {
	fake := newFakeWeatherClient()
	fake.failures["Atlantis"] = &apperr.UpstreamError{Service: "Weather API", Status: http.StatusNotFound}
	svc := newTestWeatherService(t, fake)
	ctx := context.Background()

	err := svc.FetchWeatherData(ctx, []string{"Jakarta", "Tokyo", "Atlantis"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, svc.GetLastFetchTime().IsZero())

	_, err = svc.GetCurrentWeather(ctx, "Tokyo")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls["Tokyo"])

	stats := svc.GetStats()
	assert.Equal(t, 2, stats["success_count"])
	assert.Equal(t, 1, stats["failure_count"])
}
