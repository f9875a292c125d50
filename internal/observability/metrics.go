// Package observability exposes Prometheus metrics for the calculation API.
package observability

import (
	"fmt"
	"net/http"
	"strconv"

	"flight_wb/internal/models"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the service metrics and helpers to record them. A nil
// *Collector records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Calculations        *prometheus.CounterVec
	CalculationWarnings *prometheus.CounterVec
	WeatherFetches      *prometheus.CounterVec
	AircraftProfiles    prometheus.Gauge
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method and status code.",
	}, []string{"route", "method", "code"}), "http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route", "method"}), "http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	calculations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calculations_total",
		Help: "Completed calculations, labeled by kind and outcome.",
	}, []string{"kind", "outcome"}), "calculations_total")
	if err != nil {
		return nil, err
	}

	warnings, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calculation_warnings_total",
		Help: "Warnings returned to pilots, labeled by calculation kind.",
	}, []string{"kind"}), "calculation_warnings_total")
	if err != nil {
		return nil, err
	}

	weather, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_fetches_total",
		Help: "Weather report lookups, labeled by report kind and result.",
	}, []string{"kind", "result"}), "weather_fetches_total")
	if err != nil {
		return nil, err
	}

	profiles, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aircraft_profiles",
		Help: "Number of aircraft profiles stored.",
	}), "aircraft_profiles")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:            gatherer,
		HTTPRequests:        requests,
		HTTPDurations:       durations,
		Calculations:        calculations,
		CalculationWarnings: warnings,
		WeatherFetches:      weather,
		AircraftProfiles:    profiles,
	}, nil
}

// Middleware records request counts and latency per chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		m := httpsnoop.CaptureMetrics(next, w, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(m.Code)).Inc()
		c.HTTPDurations.WithLabelValues(route, r.Method).Observe(m.Duration.Seconds())
	})
}

// RecordMassBalance counts a mass & balance result by limit outcome
func (c *Collector) RecordMassBalance(resp models.MassBalanceResponse) {
	if c == nil {
		return
	}
	outcome := "within_limits"
	if !resp.WithinWeightLimits || !resp.WithinCGLimits {
		outcome = "out_of_limits"
	}
	c.Calculations.WithLabelValues("mass_balance", outcome).Inc()
	c.CalculationWarnings.WithLabelValues("mass_balance").Add(float64(len(resp.Warnings)))
}

// RecordPerformance counts a performance result by calculation source
func (c *Collector) RecordPerformance(resp models.PerformanceResponse) {
	if c == nil {
		return
	}
	c.Calculations.WithLabelValues("performance", string(resp.CalculationSource)).Inc()
	c.CalculationWarnings.WithLabelValues("performance").Add(float64(len(resp.Warnings)))
}

// RecordWeather counts a weather lookup by report kind and result
// (ok, not_found, error)
func (c *Collector) RecordWeather(kind, result string) {
	if c == nil {
		return
	}
	c.WeatherFetches.WithLabelValues(kind, result).Inc()
}

// SetAircraftProfiles sets the stored profile gauge
func (c *Collector) SetAircraftProfiles(n int) {
	if c == nil {
		return
	}
	c.AircraftProfiles.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
