package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flight_wb/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metarBody = `{
	"raw": "KJFK 201351Z 31012G20KT 10SM FEW250 18/02 A3012",
	"station": "KJFK",
	"time": {"dt": "2026-03-20T13:51:00Z"},
	"wind_direction": {"value": 310},
	"wind_speed": {"value": 12},
	"wind_gust": {"value": 20},
	"visibility": {"value": 10},
	"temperature": {"value": 18},
	"dewpoint": {"value": 2},
	"altimeter": {"value": 30.12},
	"clouds": [{"type": "FEW", "altitude": 250}, {"type": "", "altitude": 10}],
	"units": {"visibility": "sm", "altimeter": "inHg"}
}`

const tafBody = `{
	"raw": "EDDF 201100Z 2012/2118 27010KT 9999 FEW040",
	"station": "EDDF",
	"time": {"dt": "2026-03-20T11:00:00Z"},
	"start_time": {"dt": "2026-03-20T12:00:00Z"},
	"end_time": {"dt": "2026-03-21T18:00:00Z"},
	"forecast": [{"raw": "2012/2118 27010KT 9999 FEW040"}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:       "secret",
		BaseURL:      srv.URL,
		CacheTTL:     time.Minute,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	})
}

func TestGetMETAR_Decodes(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/metar/KJFK", r.URL.Path)
		assert.Equal(t, "BEARER secret", r.Header.Get("Authorization"))
		w.Write([]byte(metarBody))
	})

	m, err := c.GetMETAR(context.Background(), " kjfk ")
	require.NoError(t, err)

	assert.Equal(t, "KJFK", m.Station)
	assert.Equal(t, time.Date(2026, 3, 20, 13, 51, 0, 0, time.UTC), m.Time)
	require.NotNil(t, m.WindDirection)
	assert.Equal(t, 310, *m.WindDirection)
	assert.Equal(t, 12, m.WindSpeed)
	require.NotNil(t, m.WindGust)
	assert.Equal(t, 20, *m.WindGust)
	assert.Equal(t, 16093, m.Visibility)
	assert.Equal(t, 18, m.Temperature)
	assert.Equal(t, 2, m.Dewpoint)
	assert.Equal(t, 1020, m.QNH)
	assert.Equal(t, []models.CloudLayer{{Cover: "FEW", Height: 25000}}, m.Clouds)

	// second lookup is served from the cache
	_, err = c.GetMETAR(context.Background(), "KJFK")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetMETAR_Defaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"raw": "EDDF VRB", "station": "EDDF", "wind_direction": {"value": null}}`))
	})
	c.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	m, err := c.GetMETAR(context.Background(), "EDDF")
	require.NoError(t, err)
	assert.Nil(t, m.WindDirection)
	assert.Equal(t, 0, m.WindSpeed)
	assert.Equal(t, 9999, m.Visibility)
	assert.Equal(t, 1013, m.QNH)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), m.Time)
	assert.Empty(t, m.Clouds)
}

func TestGetMETAR_NotFound(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	})

	_, err := c.GetMETAR(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrStationNotFound)
	assert.Contains(t, err.Error(), "ZZZZ")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetMETAR_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(metarBody))
	})

	m, err := c.GetMETAR(context.Background(), "KJFK")
	require.NoError(t, err)
	assert.Equal(t, "KJFK", m.Station)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetMETAR_Unavailable(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.GetMETAR(context.Background(), "KJFK")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())

	bad := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, err = bad.GetMETAR(context.Background(), "KJFK")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetMETAR_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetMETAR(context.Background(), "KJFK")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetTAF(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/taf/EDDF", r.URL.Path)
		w.Write([]byte(tafBody))
	})

	taf, err := c.GetTAF(context.Background(), "eddf")
	require.NoError(t, err)
	assert.Equal(t, "EDDF", taf.Station)
	assert.Equal(t, time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC), taf.ValidFrom)
	assert.Equal(t, time.Date(2026, 3, 21, 18, 0, 0, 0, time.UTC), taf.ValidTo)
	assert.Len(t, taf.Forecasts, 1)
}

func TestMockData(t *testing.T) {
	c := NewClient(Config{})
	require.True(t, c.Mock())

	m, err := c.GetMETAR(context.Background(), "edny")
	require.NoError(t, err)
	assert.Equal(t, "EDNY 201350Z 27008KT 9999 FEW040 12/04 Q1023", m.Raw)
	require.NotNil(t, m.WindDirection)
	assert.Equal(t, 270, *m.WindDirection)
	assert.Equal(t, 8, m.WindSpeed)
	assert.Equal(t, 9999, m.Visibility)
	assert.Equal(t, 12, m.Temperature)
	assert.Equal(t, 4, m.Dewpoint)
	assert.Equal(t, 1023, m.QNH)
	assert.Equal(t, []models.CloudLayer{{Cover: "FEW", Height: 4000}}, m.Clouds)

	taf, err := c.GetTAF(context.Background(), "EDNY")
	require.NoError(t, err)
	assert.Equal(t, "EDNY 201100Z 2012/2112 27010KT 9999 FEW040", taf.Raw)
	assert.Empty(t, taf.Forecasts)
}

func TestWindComponents(t *testing.T) {
	tests := []struct {
		name          string
		runway, dir   float64
		speed         float64
		along, across float64
	}{
		{name: "straight headwind", runway: 270, dir: 270, speed: 10, along: -10, across: 0},
		{name: "straight tailwind", runway: 90, dir: 270, speed: 10, along: 10, across: 0},
		{name: "right crosswind", runway: 270, dir: 360, speed: 10, along: 0, across: 10},
		{name: "left crosswind", runway: 270, dir: 180, speed: 10, along: 0, across: -10},
		{name: "thirty degrees", runway: 250, dir: 280, speed: 12, along: -10.4, across: 6},
		{name: "wraps north", runway: 10, dir: 350, speed: 10, along: -9.4, across: -3.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			along, across := WindComponents(tt.runway, tt.dir, tt.speed)
			assert.InDelta(t, tt.along, along, 1e-9)
			assert.InDelta(t, tt.across, across, 1e-9)
		})
	}
}

func TestRunwayWind(t *testing.T) {
	dir := 270
	m := &models.Metar{Station: "EDDF", WindDirection: &dir, WindSpeed: 8, QNH: 1003}
	elev := 364.0

	rw := RunwayWind(m, 250, &elev)
	assert.Equal(t, "EDDF", rw.Station)
	assert.InDelta(t, -7.5, rw.WindComponent, 1e-9)
	assert.InDelta(t, 2.7, rw.CrosswindComponent, 1e-9)
	require.NotNil(t, rw.PressureAltitude)
	assert.InDelta(t, 672, *rw.PressureAltitude, 1e-9)

	variable := &models.Metar{Station: "EDDF", WindSpeed: 4, QNH: 1013}
	rw = RunwayWind(variable, 70, nil)
	assert.Equal(t, 4.0, rw.WindComponent)
	assert.Nil(t, rw.PressureAltitude)

	// half-foot results are reported unrounded
	elev = 500
	m.QNH = 1023
	rw = RunwayWind(m, 250, &elev)
	require.NotNil(t, rw.PressureAltitude)
	assert.InDelta(t, 207.5, *rw.PressureAltitude, 1e-9)
}

func TestPressureAltitude(t *testing.T) {
	assert.InDelta(t, 0, PressureAltitude(0, 1013.25), 1e-9)
	assert.InDelta(t, 1300, PressureAltitude(1000, 1003.25), 1e-9)
	assert.InDelta(t, 700, PressureAltitude(1000, 1023.25), 1e-9)
}
