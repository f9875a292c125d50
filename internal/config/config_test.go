package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("FLIGHT_WB_CONFIG_PATH", path)
}

func TestLoad_Defaults(t *testing.T) {
	writeConfig(t, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "flight_wb.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Log.File)
	assert.True(t, cfg.Chart.Enabled)
	assert.Equal(t, 600, cfg.Weather.CacheTTLSeconds)
	assert.Empty(t, cfg.Weather.PrefetchStations)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 300.0, cfg.Performance.TakeoffBase)
	assert.Equal(t, 1.5, cfg.Performance.LandingExponent)
}

func TestLoad_FileAndEnv(t *testing.T) {
	writeConfig(t, `
http_addr: ":9000"
log:
  level: debug
  format: json
weather:
  api_key: from-file
  prefetch_stations: [EDDF, EDNY]
performance:
  takeoff_base_m: 320
`)
	t.Setenv("FLIGHT_WB_WEATHER_API_KEY", "from-env")
	t.Setenv("FLIGHT_WB_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "from-env", cfg.Weather.APIKey)
	assert.Equal(t, []string{"EDDF", "EDNY"}, cfg.Weather.PrefetchStations)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 320.0, cfg.Performance.TakeoffBase)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "log level", body: "log:\n  level: verbose\n", wantErr: "invalid log level"},
		{name: "log format", body: "log:\n  format: xml\n", wantErr: "invalid log format"},
		{name: "empty addr", body: "http_addr: \"\"\n", wantErr: "http_addr"},
		{name: "mode b", body: "performance:\n  landing_exponent: 0\n", wantErr: "performance.landing_exponent"},
		{name: "cache ttl", body: "weather:\n  cache_ttl_seconds: -1\n", wantErr: "cache_ttl_seconds"},
		{name: "rotation", body: "log:\n  file: /tmp/x.log\n  max_size_mb: 0\n", wantErr: "log rotation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.body)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	writeConfig(t, "http_addr: [unterminated\n")
	_, err := Load()
	assert.Error(t, err)
}
