package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"upstream status passes through", &UpstreamError{Service: "Weather API", Status: 401}, 401},
		{"wrapped upstream", fmt.Errorf("fetch: %w", &UpstreamError{Status: 404}), 404},
		{"upstream without status", &UpstreamError{Err: errors.New("dial tcp")}, 500},
		{"config error", &ConfigError{Service: "Gemini API", EnvVar: "GEMINI_API_KEY"}, 500},
		{"parse error", &ParseError{Service: "Gemini", Field: "text"}, 500},
		{"unknown error", errors.New("boom"), 500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HTTPStatus(tc.err))
		})
	}
}

func TestUpstreamErrorIsNotFound(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &UpstreamError{Service: "Weather API", Status: http.StatusNotFound, Message: "city not found"})
	assert.True(t, errors.Is(err, ErrNotFound))

	other := &UpstreamError{Service: "Weather API", Status: http.StatusUnauthorized}
	assert.False(t, errors.Is(other, ErrNotFound))
}

func TestDetails(t *testing.T) {
	cfgErr := &ConfigError{Service: "Weather API", EnvVar: "WEATHER_API_KEY"}
	assert.Equal(t, "Weather API key not configured", cfgErr.Error())
	assert.Equal(t, "Please set WEATHER_API_KEY in your environment variables", Details(cfgErr))

	upstream := &UpstreamError{Service: "Weather API", Status: 404, Message: "city not found"}
	assert.Equal(t, "city not found", Details(upstream))
	assert.True(t, IsConfig(fmt.Errorf("wrap: %w", cfgErr)))
	assert.False(t, IsConfig(upstream))
}
