package models

import "encoding/json"

// Country is the subset of the REST Countries v3.1 entry the profile uses.
type Country struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Capital     []string `json:"capital"`
	CapitalInfo struct {
		LatLng []float64 `json:"latlng"`
	} `json:"capitalInfo"`
	LatLng     []float64 `json:"latlng"`
	Population int64     `json:"population"`
	Region     string    `json:"region"`
	Subregion  string    `json:"subregion"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Languages map[string]string `json:"languages"`
	Timezones []string          `json:"timezones"`
	Flag      string            `json:"flag"`
	Car       struct {
		Side string `json:"side"`
	} `json:"car"`
}

// CountryLookup pairs the raw REST Countries body with its parsed entries.
type CountryLookup struct {
	Raw       json.RawMessage
	Countries []Country
}

// SeasonInfo describes one of the four seasons shown in a profile.
type SeasonInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// CountryProfile is the combined country, capital weather and season view.
type CountryProfile struct {
	Country       Country         `json:"country"`
	Capital       string          `json:"capital"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	Weather       *WeatherReading `json:"weather,omitempty"`
	WeatherIcon   string          `json:"weather_icon,omitempty"`
	WeatherSource string          `json:"weather_source,omitempty"`
	WeatherError  string          `json:"weather_error,omitempty"`
	CurrentSeason SeasonInfo      `json:"current_season"`
	Seasons       []SeasonInfo    `json:"seasons"`
}
