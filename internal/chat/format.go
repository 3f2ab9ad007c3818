package chat

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

// FormatWeatherForChat renders a reading as the fixed text block that is
// both shown to the user and handed to the assistant as grounding.
func FormatWeatherForChat(reading *models.WeatherReading, city string) string {
	if reading == nil {
		return fmt.Sprintf("Tidak dapat menemukan data cuaca untuk %s.", city)
	}

	return fmt.Sprintf(`Data Cuaca untuk %s, %s:
- Suhu: %d°C (terasa seperti %d°C)
- Kondisi: %s
- Kelembaban: %s%%
- Tekanan: %s hPa
- Kecepatan angin: %s m/s
- Visibilitas: %s km`,
		city, reading.CountryCode,
		roundHalfUp(reading.TemperatureC), roundHalfUp(reading.FeelsLikeC),
		reading.ConditionDescription,
		formatNumber(reading.HumidityPct),
		formatNumber(reading.PressureHPa),
		formatNumber(reading.WindSpeedMs),
		visibilityKm(reading.VisibilityM))
}

// roundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// visibilityKm converts meters to kilometers with one decimal place using
// exact decimal arithmetic, so 2050 m renders as 2.1.
func visibilityKm(meters float64) string {
	return decimal.NewFromFloat(meters).Shift(-3).StringFixed(1)
}
