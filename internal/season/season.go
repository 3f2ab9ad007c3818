// Package season gives a naive meteorological season from latitude and month.
package season

import (
	"time"

	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

const (
	Spring = "spring"
	Summer = "summer"
	Autumn = "autumn"
	Winter = "winter"
)

var seasons = []models.SeasonInfo{
	{ID: Spring, Name: "Musim Semi", Emoji: "🌸", Description: "Suhu sedang, bunga bermekaran"},
	{ID: Summer, Name: "Musim Panas", Emoji: "☀️", Description: "Suhu panas, hari panjang"},
	{ID: Autumn, Name: "Musim Gugur", Emoji: "🍂", Description: "Suhu sejuk, daun berguguran"},
	{ID: Winter, Name: "Musim Dingin", Emoji: "⛄", Description: "Suhu dingin, salju mungkin"},
}

// Predict returns the season id for a latitude and calendar month. The
// southern hemisphere is shifted by six months; the equator counts as north.
func Predict(lat float64, month time.Month) string {
	m := int(month) - 1
	if lat < 0 {
		m = (m + 6) % 12
	}

	switch {
	case m >= 2 && m <= 4:
		return Spring
	case m >= 5 && m <= 7:
		return Summer
	case m >= 8 && m <= 10:
		return Autumn
	default:
		return Winter
	}
}

// Info returns the descriptor for a season id.
func Info(id string) models.SeasonInfo {
	for _, s := range seasons {
		if s.ID == id {
			return s
		}
	}
	return seasons[3]
}

// All returns the four descriptors in calendar order starting with spring.
func All() []models.SeasonInfo {
	out := make([]models.SeasonInfo, len(seasons))
	copy(out, seasons)
	return out
}
