package openweather

import "github.com/couchcryptid/weather-sync-service/internal/domain"

// currentWeather is the subset of the /weather response the service keeps.
type currentWeather struct {
	Name    string `json:"name"`
	Dt      int64  `json:"dt"`
	Weather []struct {
		Main string `json:"main"`
		Icon string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64  `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
}

func (p currentWeather) snapshot() domain.WeatherSnapshot {
	conditions := make([]domain.Condition, 0, len(p.Weather))
	for _, w := range p.Weather {
		conditions = append(conditions, domain.Condition{Summary: w.Main, Icon: w.Icon})
	}
	return domain.WeatherSnapshot{
		Name:        p.Name,
		Conditions:  conditions,
		Temperature: p.Main.Temp,
		Wind: domain.Wind{
			Speed:   p.Wind.Speed,
			Degrees: p.Wind.Deg,
		},
		Timestamp: p.Dt,
	}
}
