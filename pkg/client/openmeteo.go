package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

const openMeteoService = "Open-Meteo"

// OpenMeteoClient reads current conditions by coordinates. It needs no API
// key and backs country profiles when OpenWeatherMap is unavailable.
type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

type OpenMeteoCurrentResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   *struct {
		Time                string  `json:"time"`
		Temperature2M       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity2M  float64 `json:"relative_humidity_2m"`
		PressureMSL         float64 `json:"pressure_msl"`
		WindSpeed10M        float64 `json:"wind_speed_10m"`
		CloudCover          float64 `json:"cloud_cover"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1"
	}
	return &OpenMeteoClient{
		BaseClient: NewBaseClient(openMeteoService, config, logger),
		baseURL:    baseURL,
	}
}

func (c *OpenMeteoClient) GetCurrentConditions(ctx context.Context, lat, lon float64) (*models.WeatherReading, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	query.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,pressure_msl,wind_speed_10m,cloud_cover,weather_code")
	query.Set("wind_speed_unit", "ms")

	data, err := c.GetWithRetry(ctx, fmt.Sprintf("%s/forecast?%s", c.baseURL, query.Encode()))
	if err != nil {
		return nil, err
	}

	var response OpenMeteoCurrentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, &apperr.ParseError{Service: openMeteoService, Field: "body", Err: err}
	}
	if response.Current == nil {
		return nil, &apperr.ParseError{Service: openMeteoService, Field: "current"}
	}

	current := response.Current
	main, description := describeWeatherCode(current.WeatherCode)
	return &models.WeatherReading{
		TemperatureC:         current.Temperature2M,
		FeelsLikeC:           current.ApparentTemperature,
		MinC:                 current.Temperature2M,
		MaxC:                 current.Temperature2M,
		ConditionMain:        main,
		ConditionDescription: description,
		HumidityPct:          current.RelativeHumidity2M,
		PressureHPa:          current.PressureMSL,
		WindSpeedMs:          current.WindSpeed10M,
		CloudPct:             current.CloudCover,
	}, nil
}

// describeWeatherCode maps a WMO weather code onto the OpenWeatherMap
// condition group and an Indonesian description.
func describeWeatherCode(code int) (main, description string) {
	switch {
	case code == 0:
		return "Clear", "cerah"
	case code == 1:
		return "Clouds", "sebagian besar cerah"
	case code == 2:
		return "Clouds", "berawan sebagian"
	case code == 3:
		return "Clouds", "mendung"
	case code == 45 || code == 48:
		return "Fog", "kabut"
	case code >= 51 && code <= 57:
		return "Drizzle", "gerimis"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return "Rain", "hujan"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snow", "salju"
	case code >= 95 && code <= 99:
		return "Thunderstorm", "badai petir"
	default:
		return "", "tidak diketahui"
	}
}
