package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWeatherQuery(t *testing.T) {
	tests := []struct {
		message  string
		expected bool
	}{
		{"Bagaimana cuaca di Jakarta?", true},
		{"What's the WEATHER like in Tokyo", true},
		{"apakah besok hujan", true},
		{"kelembaban di Bandung berapa?", true},
		{"anginkan saja", true},
		{"Siapa presiden Indonesia?", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsWeatherQuery(tc.message))
		})
	}
}
