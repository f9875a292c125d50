// Package weather fetches METAR and TAF reports from the AVWX API and derives
// runway wind components and pressure altitude from them.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"flight_wb/internal/models"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultBaseURL is the public AVWX endpoint
const DefaultBaseURL = "https://avwx.rest/api"

var (
	// ErrStationNotFound is returned when the upstream does not know the station
	ErrStationNotFound = errors.New("station not found")
	// ErrUnavailable wraps upstream failures after retries are exhausted
	ErrUnavailable = errors.New("weather service unavailable")
)

// Config holds client settings. An empty APIKey switches the client to mock
// data.
type Config struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	CacheSize    int
	CacheTTL     time.Duration
	MaxRetries   uint
	RetryBackoff time.Duration
}

// Client retrieves decoded weather reports. Successful lookups are cached
// per station until the TTL expires.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	maxRetries   uint
	retryBackoff time.Duration
	metars       *expirable.LRU[string, *models.Metar]
	tafs         *expirable.LRU[string, *models.Taf]
	now          func() time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		metars:       expirable.NewLRU[string, *models.Metar](cfg.CacheSize, nil, cfg.CacheTTL),
		tafs:         expirable.NewLRU[string, *models.Taf](cfg.CacheSize, nil, cfg.CacheTTL),
		now:          time.Now,
	}
}

// Mock reports whether the client serves development data instead of
// calling the upstream
func (c *Client) Mock() bool {
	return c.apiKey == ""
}

// GetMETAR returns the current observation for an ICAO station
func (c *Client) GetMETAR(ctx context.Context, icao string) (*models.Metar, error) {
	icao = normalizeICAO(icao)
	if m, ok := c.metars.Get(icao); ok {
		return m, nil
	}
	if c.Mock() {
		return mockMetar(icao, c.now()), nil
	}

	var raw avwxMetar
	if err := c.fetch(ctx, "metar", icao, &raw); err != nil {
		return nil, err
	}
	m := raw.decode(c.now())
	c.metars.Add(icao, m)
	return m, nil
}

// GetTAF returns the current forecast for an ICAO station
func (c *Client) GetTAF(ctx context.Context, icao string) (*models.Taf, error) {
	icao = normalizeICAO(icao)
	if t, ok := c.tafs.Get(icao); ok {
		return t, nil
	}
	if c.Mock() {
		return mockTaf(icao, c.now()), nil
	}

	var raw avwxTaf
	if err := c.fetch(ctx, "taf", icao, &raw); err != nil {
		return nil, err
	}
	t := raw.decode(c.now())
	c.tafs.Add(icao, t)
	return t, nil
}

// fetch GETs {baseURL}/{kind}/{icao} and decodes the body into out. Server
// errors and transport failures are retried with exponential backoff; a 404
// or other client error is final.
func (c *Client) fetch(ctx context.Context, kind, icao string, out any) error {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, kind, icao)

	attempt := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		body, err := c.get(ctx, url)
		if err != nil && !errors.Is(err, ErrStationNotFound) {
			slog.Warn("Weather request failed", "kind", kind, "station", icao, "attempt", attempt, "error", err)
		}
		return body, err
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxRetries),
	)
	if err != nil {
		if errors.Is(err, ErrStationNotFound) {
			return fmt.Errorf("%s: %w", icao, err)
		}
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s for %s: %v", ErrUnavailable, kind, icao, err)
	}
	return nil
}

func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryBackoff
	b.MaxInterval = 30 * time.Second
	return b
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Authorization", "BEARER "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(ErrStationNotFound)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(fmt.Errorf("upstream status %d", resp.StatusCode))
	}
	return body, nil
}

func normalizeICAO(icao string) string {
	return strings.ToUpper(strings.TrimSpace(icao))
}
