package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the daemon
type Config struct {
	HTTPAddr    string
	DBPath      string
	DatasetsDir string
	CORSOrigins []string
	Log         LogConfig
	Chart       ChartConfig
	Weather     WeatherConfig
	Performance PerformanceConfig
}

// LogConfig holds logging configuration. An empty File logs to stdout.
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ChartConfig toggles CG chart rendering
type ChartConfig struct {
	Enabled bool
}

// WeatherConfig holds METAR/TAF client settings
type WeatherConfig struct {
	APIKey                  string
	BaseURL                 string
	CacheTTLSeconds         int
	PrefetchStations        []string
	PrefetchIntervalSeconds int
	HistoryRetentionHours   int
}

// PerformanceConfig holds the Mode B reference values
type PerformanceConfig struct {
	TakeoffBase        float64
	TakeoffExponent    float64
	TakeoffTotalFactor float64
	LandingBase        float64
	LandingExponent    float64
	LandingTotalFactor float64
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/flight_wb")
	v.AddConfigPath(".")

	// The -config flag is forwarded through this variable by main
	if configPath := os.Getenv("FLIGHT_WB_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK - defaults + env vars apply
	}

	v.SetEnvPrefix("FLIGHT_WB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		HTTPAddr:    v.GetString("http_addr"),
		DBPath:      v.GetString("db_path"),
		DatasetsDir: v.GetString("datasets_dir"),
		CORSOrigins: splitList(v.GetStringSlice("cors_origins")),
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		Chart: ChartConfig{
			Enabled: v.GetBool("chart.enabled"),
		},
		Weather: WeatherConfig{
			APIKey:                  v.GetString("weather.api_key"),
			BaseURL:                 v.GetString("weather.base_url"),
			CacheTTLSeconds:         v.GetInt("weather.cache_ttl_seconds"),
			PrefetchStations:        splitList(v.GetStringSlice("weather.prefetch_stations")),
			PrefetchIntervalSeconds: v.GetInt("weather.prefetch_interval_seconds"),
			HistoryRetentionHours:   v.GetInt("weather.history_retention_hours"),
		},
		Performance: PerformanceConfig{
			TakeoffBase:        v.GetFloat64("performance.takeoff_base_m"),
			TakeoffExponent:    v.GetFloat64("performance.takeoff_exponent"),
			TakeoffTotalFactor: v.GetFloat64("performance.takeoff_total_factor"),
			LandingBase:        v.GetFloat64("performance.landing_base_m"),
			LandingExponent:    v.GetFloat64("performance.landing_exponent"),
			LandingTotalFactor: v.GetFloat64("performance.landing_total_factor"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("db_path", "flight_wb.db")
	v.SetDefault("datasets_dir", "internal/database/datasets")
	v.SetDefault("cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("chart.enabled", true)

	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "https://avwx.rest/api")
	v.SetDefault("weather.cache_ttl_seconds", 600)
	v.SetDefault("weather.prefetch_stations", []string{})
	v.SetDefault("weather.prefetch_interval_seconds", 900)
	v.SetDefault("weather.history_retention_hours", 72)

	v.SetDefault("performance.takeoff_base_m", 300.0)
	v.SetDefault("performance.takeoff_exponent", 2.0)
	v.SetDefault("performance.takeoff_total_factor", 1.5)
	v.SetDefault("performance.landing_base_m", 250.0)
	v.SetDefault("performance.landing_exponent", 1.5)
	v.SetDefault("performance.landing_total_factor", 1.6)
}

// splitList accepts both YAML lists and comma separated env values
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("http_addr is required")
	}

	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	if cfg.Log.File != "" && (cfg.Log.MaxSizeMB <= 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0) {
		return fmt.Errorf("log rotation settings must be positive")
	}

	if cfg.Weather.CacheTTLSeconds <= 0 {
		return fmt.Errorf("weather.cache_ttl_seconds must be greater than 0")
	}

	if len(cfg.Weather.PrefetchStations) > 0 && cfg.Weather.PrefetchIntervalSeconds <= 0 {
		return fmt.Errorf("weather.prefetch_interval_seconds must be greater than 0")
	}

	p := cfg.Performance
	modeB := map[string]float64{
		"performance.takeoff_base_m":       p.TakeoffBase,
		"performance.takeoff_exponent":     p.TakeoffExponent,
		"performance.takeoff_total_factor": p.TakeoffTotalFactor,
		"performance.landing_base_m":       p.LandingBase,
		"performance.landing_exponent":     p.LandingExponent,
		"performance.landing_total_factor": p.LandingTotalFactor,
	}
	for key, value := range modeB {
		if value <= 0 {
			return fmt.Errorf("%s must be greater than 0", key)
		}
	}

	return nil
}
