// Package chat implements the weather-aware assistant pipeline: intent
// detection, city extraction, weather context, the assistant call with its
// fallback, and reply formatting.
package chat

import "strings"

var weatherKeywords = []string{
	"cuaca",
	"weather",
	"suhu",
	"hujan",
	"panas",
	"dingin",
	"angin",
	"awan",
	"berawan",
	"salju",
	"kondisi langit",
	"cerah",
	"mendung",
	"badai",
	"kelembaban",
	"tekanan udara",
}

// IsWeatherQuery reports whether message mentions any weather keyword.
// Matching is plain substring containment, so "anginkan" counts.
func IsWeatherQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range weatherKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
