package openmeteo

import "encoding/json"

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Name        string      `json:"name"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Country     string      `json:"country"`
	CountryCode string      `json:"country_code"`
	FeatureCode string      `json:"feature_code"`
	Population  json.Number `json:"population"`
	Admin1      string      `json:"admin1"`
	Timezone    string      `json:"timezone"`
}

type forecastResponse struct {
	CurrentWeather *currentWeather `json:"current_weather"`
}

type currentWeather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	WeatherCode   int     `json:"weathercode"`
	IsDay         int     `json:"is_day"`
	Time          string  `json:"time"`
}
