package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCityName(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
		ok       bool
	}{
		{"indonesian preposition", "cuaca di Jakarta", "Jakarta", true},
		{"english preposition", "Is it raining in London today", "London", true},
		{"preposition stops at comma", "cuaca di Paris, Prancis", "Paris", true},
		{"leading city before keyword", "Tokyo weather", "Tokyo", true},
		{"capitalized run", "Apakah Tokyo sedang hujan", "Tokyo", true},
		{"stoplist matches substrings", "Japan dan Korea hujan?", "Korea", true},
		{"last capitalized word", "mau tau kondisi SURABAYA dong", "SURABAYA", true},
		{"nothing city like", "xyz 123", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			city, ok := ExtractCityName(tc.message)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, city)
		})
	}
}

func TestContainsStopword(t *testing.T) {
	assert.True(t, containsStopword("japan"))
	assert.True(t, containsStopword("jakarta selatan"))
	assert.False(t, containsStopword("tokyo"))
}
