package weather

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"flight_wb/internal/models"
)

const (
	metersPerStatuteMile = 1609.34
	hPaPerInHg           = 33.8639
	standardQNH          = 1013
	unlimitedVisibility  = 9999
)

type avwxNumber struct {
	Value *float64 `json:"value"`
}

func (n avwxNumber) intOr(fallback int) int {
	if n.Value == nil {
		return fallback
	}
	return int(math.Round(*n.Value))
}

func (n avwxNumber) intPtr() *int {
	if n.Value == nil {
		return nil
	}
	v := int(math.Round(*n.Value))
	return &v
}

type avwxTime struct {
	DT string `json:"dt"`
}

func (t avwxTime) parse() (time.Time, bool) {
	if t.DT == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, t.DT)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

type avwxVisibility struct {
	avwxNumber
	Units string `json:"units"`
}

type avwxUnits struct {
	Visibility string `json:"visibility"`
	Altimeter  string `json:"altimeter"`
}

type avwxCloud struct {
	Type     string   `json:"type"`
	Altitude *float64 `json:"altitude"` // hundreds of feet
}

type avwxMetar struct {
	Raw           string         `json:"raw"`
	Station       string         `json:"station"`
	Time          avwxTime       `json:"time"`
	WindDirection avwxNumber     `json:"wind_direction"`
	WindSpeed     avwxNumber     `json:"wind_speed"`
	WindGust      avwxNumber     `json:"wind_gust"`
	Visibility    avwxVisibility `json:"visibility"`
	Temperature   avwxNumber     `json:"temperature"`
	Dewpoint      avwxNumber     `json:"dewpoint"`
	Altimeter     avwxNumber     `json:"altimeter"`
	Clouds        []avwxCloud    `json:"clouds"`
	Units         avwxUnits      `json:"units"`
}

func (a avwxMetar) decode(now time.Time) *models.Metar {
	observed, ok := a.Time.parse()
	if !ok {
		observed = now.UTC()
	}

	clouds := make([]models.CloudLayer, 0, len(a.Clouds))
	for _, c := range a.Clouds {
		if c.Type == "" {
			continue
		}
		height := 0
		if c.Altitude != nil {
			height = int(math.Round(*c.Altitude * 100))
		}
		clouds = append(clouds, models.CloudLayer{Cover: c.Type, Height: height})
	}

	return &models.Metar{
		Raw:           a.Raw,
		Station:       a.Station,
		Time:          observed,
		WindDirection: a.WindDirection.intPtr(),
		WindSpeed:     a.WindSpeed.intOr(0),
		WindGust:      a.WindGust.intPtr(),
		Visibility:    a.visibilityMeters(),
		Temperature:   a.Temperature.intOr(0),
		Dewpoint:      a.Dewpoint.intOr(0),
		QNH:           a.qnh(),
		Clouds:        clouds,
	}
}

func (a avwxMetar) visibilityMeters() int {
	if a.Visibility.Value == nil {
		return unlimitedVisibility
	}
	units := a.Visibility.Units
	if units == "" {
		units = a.Units.Visibility
	}
	v := *a.Visibility.Value
	if strings.EqualFold(units, "sm") {
		return int(v * metersPerStatuteMile)
	}
	return int(v)
}

func (a avwxMetar) qnh() int {
	if a.Altimeter.Value == nil {
		return standardQNH
	}
	v := *a.Altimeter.Value
	if strings.EqualFold(a.Units.Altimeter, "inhg") {
		v *= hPaPerInHg
	}
	return int(math.Round(v))
}

type avwxTaf struct {
	Raw       string            `json:"raw"`
	Station   string            `json:"station"`
	Time      avwxTime          `json:"time"`
	StartTime avwxTime          `json:"start_time"`
	EndTime   avwxTime          `json:"end_time"`
	Forecast  []json.RawMessage `json:"forecast"`
}

func (a avwxTaf) decode(now time.Time) *models.Taf {
	issued, ok := a.Time.parse()
	if !ok {
		issued = now.UTC()
	}
	from, okFrom := a.StartTime.parse()
	to, okTo := a.EndTime.parse()
	if !okFrom || !okTo {
		from, to = issued, issued
	}

	forecasts := a.Forecast
	if forecasts == nil {
		forecasts = []json.RawMessage{}
	}

	return &models.Taf{
		Raw:       a.Raw,
		Station:   a.Station,
		Issued:    issued,
		ValidFrom: from,
		ValidTo:   to,
		Forecasts: forecasts,
	}
}

func mockMetar(icao string, now time.Time) *models.Metar {
	dir := 270
	return &models.Metar{
		Raw:           fmt.Sprintf("%s 201350Z 27008KT 9999 FEW040 12/04 Q1023", icao),
		Station:       icao,
		Time:          now.UTC(),
		WindDirection: &dir,
		WindSpeed:     8,
		Visibility:    unlimitedVisibility,
		Temperature:   12,
		Dewpoint:      4,
		QNH:           1023,
		Clouds:        []models.CloudLayer{{Cover: "FEW", Height: 4000}},
	}
}

func mockTaf(icao string, now time.Time) *models.Taf {
	now = now.UTC()
	return &models.Taf{
		Raw:       fmt.Sprintf("%s 201100Z 2012/2112 27010KT 9999 FEW040", icao),
		Station:   icao,
		Issued:    now,
		ValidFrom: now,
		ValidTo:   now,
		Forecasts: []json.RawMessage{},
	}
}
