package models

import (
	"encoding/json"
	"time"
)

// CloudLayer is one reported cloud layer
type CloudLayer struct {
	Cover  string `json:"cover"` // FEW, SCT, BKN, OVC
	Height int    `json:"height_ft"`
}

// Metar is a decoded surface observation
type Metar struct {
	Raw           string       `json:"raw"`
	Station       string       `json:"station"`
	Time          time.Time    `json:"time"`
	WindDirection *int         `json:"wind_direction,omitempty"` // degrees true, nil when variable
	WindSpeed     int          `json:"wind_speed_kt"`
	WindGust      *int         `json:"wind_gust_kt,omitempty"`
	Visibility    int          `json:"visibility_m"`
	Temperature   int          `json:"temperature_c"`
	Dewpoint      int          `json:"dewpoint_c"`
	QNH           int          `json:"qnh_hpa"`
	Clouds        []CloudLayer `json:"clouds"`
}

// Taf is a terminal aerodrome forecast. Forecast periods are passed through
// undecoded.
type Taf struct {
	Raw       string            `json:"raw"`
	Station   string            `json:"station"`
	Issued    time.Time         `json:"issued"`
	ValidFrom time.Time         `json:"valid_from"`
	ValidTo   time.Time         `json:"valid_to"`
	Forecasts []json.RawMessage `json:"forecasts"`
}

// RunwayWind is the wind resolved onto a runway heading. WindComponent
// follows the performance sign convention: negative is a headwind.
type RunwayWind struct {
	Station            string   `json:"station"`
	RunwayHeading      int      `json:"runway_heading"`
	WindDirection      *int     `json:"wind_direction,omitempty"`
	WindSpeed          int      `json:"wind_speed_kt"`
	WindComponent      float64  `json:"wind_component_kt"`
	CrosswindComponent float64  `json:"crosswind_component_kt"` // positive from the right
	PressureAltitude   *float64 `json:"pressure_altitude_ft,omitempty"`
}
