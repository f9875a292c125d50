package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"flight_wb/internal/config"
	"flight_wb/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		HTTPAddr:    "127.0.0.1:0",
		DBPath:      filepath.Join(t.TempDir(), "daemon_test.db"),
		DatasetsDir: "../database/datasets",
		Chart:       config.ChartConfig{Enabled: false},
		Weather: config.WeatherConfig{
			CacheTTLSeconds: 60,
		},
		Performance: config.PerformanceConfig{
			TakeoffBase:        300,
			TakeoffExponent:    2,
			TakeoffTotalFactor: 1.5,
			LandingBase:        250,
			LandingExponent:    1.5,
			LandingTotalFactor: 1.6,
		},
	}
}

func TestDaemon_StartStop(t *testing.T) {
	d, err := New(testConfig(t))
	require.NoError(t, err)

	require.NoError(t, d.Start())
	require.NotNil(t, d.Addr())

	base := fmt.Sprintf("http://%s", d.Addr().String())

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/v1/aircraft")
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	assert.Len(t, list, 2)

	resp, err = http.Get(base + "/api/v1/weather/metar/EDDF")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NoError(t, d.Stop())

	select {
	case <-d.Done():
	default:
		t.Fatal("daemon context not cancelled after Stop")
	}
}

func TestDaemon_SeedsOnce(t *testing.T) {
	cfg := testConfig(t)

	d, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Stop())

	d, err = New(cfg)
	require.NoError(t, err)
	defer d.Stop()

	n, err := d.database.AircraftRepository().Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSeedAircraft_EmptyDir(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, seedAircraft(db.AircraftRepository(), t.TempDir()))

	populated, err := db.AircraftRepository().IsTablePopulated()
	require.NoError(t, err)
	assert.False(t, populated)
}

func TestDaemon_ListenError(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPAddr = "256.0.0.1:bad"

	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Stop()

	assert.Error(t, d.Start())
}

func TestDaemon_PrefetchIntervalRequired(t *testing.T) {
	cfg := testConfig(t)
	cfg.Weather.PrefetchStations = []string{"EDDF"}

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
}
