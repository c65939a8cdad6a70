package domain

import (
	"context"
	"time"
)

// Temperature is a daily range in degrees Celsius.
type Temperature struct {
	Max int `json:"max"`
	Min int `json:"min"`
	Avg int `json:"avg"`
}

// DayForecast is one day of a mocked forecast.
type DayForecast struct {
	Date        string      `json:"date"`
	Day         string      `json:"day"`
	Temperature Temperature `json:"temperature"`
	Humidity    int         `json:"humidity"`
	Rainfall    float64     `json:"rainfall"`
	WindSpeed   float64     `json:"windSpeed"`
	Description string      `json:"description"`
}

// Forecast is a 5-day outlook for a location.
type Forecast struct {
	Location string        `json:"location"`
	Current  DayForecast   `json:"current"`
	Days     []DayForecast `json:"forecast"`
	Alerts   []string      `json:"alerts"`
}

// Advisory is one farming recommendation derived from a forecast.
type Advisory struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// ForecastCache stores rendered forecasts keyed by location and day.
type ForecastCache interface {
	GetForecast(ctx context.Context, key string) (*Forecast, bool, error)
	SetForecast(ctx context.Context, key string, f *Forecast, ttl time.Duration) error
}
