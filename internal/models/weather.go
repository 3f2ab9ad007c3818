package models

import (
	"encoding/json"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
)

// OpenWeatherResponse is the /weather payload of OpenWeatherMap. Nested
// objects are pointers so that absent fields can be told apart from zeroes.
type OpenWeatherResponse struct {
	Coord *struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility *float64 `json:"visibility"`
	Wind       *struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds *struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Dt  int64 `json:"dt"`
	Sys *struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	ID       int    `json:"id"`
	Name     string `json:"name"`
}

// WeatherReading is the flattened view of one provider reading.
type WeatherReading struct {
	CityName             string  `json:"city_name"`
	CountryCode          string  `json:"country_code"`
	TemperatureC         float64 `json:"temperature_c"`
	FeelsLikeC           float64 `json:"feels_like_c"`
	MinC                 float64 `json:"min_c"`
	MaxC                 float64 `json:"max_c"`
	ConditionMain        string  `json:"condition_main"`
	ConditionDescription string  `json:"condition_description"`
	HumidityPct          float64 `json:"humidity_pct"`
	PressureHPa          float64 `json:"pressure_hpa"`
	WindSpeedMs          float64 `json:"wind_speed_ms"`
	VisibilityM          float64 `json:"visibility_m"`
	CloudPct             float64 `json:"cloud_pct"`
}

// CurrentWeather pairs the raw provider body, which the proxy returns
// verbatim, with its parsed reading.
type CurrentWeather struct {
	Raw     json.RawMessage
	Reading *WeatherReading
}

// ParseWeatherReading decodes an OpenWeatherMap body and checks that every
// field the chat formatter relies on is present.
func ParseWeatherReading(body []byte) (*WeatherReading, error) {
	var resp OpenWeatherResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &apperr.ParseError{Service: "Weather API", Field: "body", Err: err}
	}

	switch {
	case resp.Main == nil:
		return nil, &apperr.ParseError{Service: "Weather API", Field: "main"}
	case len(resp.Weather) == 0:
		return nil, &apperr.ParseError{Service: "Weather API", Field: "weather[0]"}
	case resp.Wind == nil:
		return nil, &apperr.ParseError{Service: "Weather API", Field: "wind"}
	case resp.Sys == nil:
		return nil, &apperr.ParseError{Service: "Weather API", Field: "sys"}
	}

	reading := &WeatherReading{
		CityName:             resp.Name,
		CountryCode:          resp.Sys.Country,
		TemperatureC:         resp.Main.Temp,
		FeelsLikeC:           resp.Main.FeelsLike,
		MinC:                 resp.Main.TempMin,
		MaxC:                 resp.Main.TempMax,
		ConditionMain:        resp.Weather[0].Main,
		ConditionDescription: resp.Weather[0].Description,
		HumidityPct:          resp.Main.Humidity,
		PressureHPa:          resp.Main.Pressure,
		WindSpeedMs:          resp.Wind.Speed,
	}
	if resp.Visibility != nil {
		reading.VisibilityM = *resp.Visibility
	}
	if resp.Clouds != nil {
		reading.CloudPct = resp.Clouds.All
	}

	return reading, nil
}

// OpenWeatherError is the error body shape of OpenWeatherMap. Cod is a
// string on some endpoints and a number on others.
type OpenWeatherError struct {
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

// WeatherRefreshRequest is the optional body of POST /api/weather/refresh.
type WeatherRefreshRequest struct {
	Cities []string `json:"cities"`
}
