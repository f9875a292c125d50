package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"flight_wb/internal/api"
	"flight_wb/internal/chart"
	"flight_wb/internal/config"
	"flight_wb/internal/database"
	"flight_wb/internal/massbalance"
	"flight_wb/internal/observability"
	"flight_wb/internal/performance"
	"flight_wb/internal/scheduler"
	"flight_wb/internal/tasks"
	"flight_wb/internal/weather"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Daemon represents the main daemon structure
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	scheduler *scheduler.Scheduler
	database  database.Repository
	server    *http.Server
	group     *errgroup.Group
	addr      net.Addr
}

// New opens the database, seeds aircraft profiles when the table is empty and
// wires the HTTP API and background tasks.
func New(cfg *config.Config) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	db, err := database.New(cfg.DBPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := seedAircraft(db.AircraftRepository(), cfg.DatasetsDir); err != nil {
		cancel()
		db.Close()
		return nil, err
	}

	collector, err := observability.NewCollector(nil)
	if err != nil {
		cancel()
		db.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	if n, err := db.AircraftRepository().Count(); err == nil {
		collector.SetAircraftProfiles(n)
	}

	wx := weather.NewClient(weather.Config{
		APIKey:   cfg.Weather.APIKey,
		BaseURL:  cfg.Weather.BaseURL,
		CacheTTL: time.Duration(cfg.Weather.CacheTTLSeconds) * time.Second,
	})
	if wx.Mock() {
		slog.Warn("No weather API key configured, serving mock METAR/TAF data")
	}

	var renderer massbalance.ChartRenderer
	if cfg.Chart.Enabled {
		renderer = chart.NewRenderer()
	}

	handler := api.New(api.Options{
		Aircraft:    db.AircraftRepository(),
		Weather:     wx,
		Metrics:     collector,
		Chart:       renderer,
		Baseline:    baseline(cfg.Performance),
		CORSOrigins: cfg.CORSOrigins,
	})

	sched := scheduler.New(ctx)
	if len(cfg.Weather.PrefetchStations) > 0 {
		err := sched.AddTask(tasks.NewMetarPrefetch(
			wx,
			db.MetarRepository(),
			cfg.Weather.PrefetchStations,
			time.Duration(cfg.Weather.PrefetchIntervalSeconds)*time.Second,
			time.Duration(cfg.Weather.HistoryRetentionHours)*time.Hour,
		))
		if err != nil {
			cancel()
			db.Close()
			return nil, fmt.Errorf("failed to schedule METAR prefetch: %w", err)
		}
	}

	return &Daemon{
		ctx:       ctx,
		cancel:    cancel,
		scheduler: sched,
		database:  db,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// seedAircraft loads the bundled JSON profiles into an empty aircraft table
func seedAircraft(repo database.AircraftRepository, dir string) error {
	populated, err := repo.IsTablePopulated()
	if err != nil {
		return fmt.Errorf("failed to check aircraft table: %w", err)
	}
	if populated {
		slog.Info("Aircraft table is already populated")
		return nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}
	if len(paths) == 0 {
		slog.Warn("Aircraft table is empty and no datasets were found", "datasets_dir", dir)
		return nil
	}

	slog.Info("Aircraft table is empty, loading profiles", "paths", paths)
	n, err := repo.LoadFromJSON(paths)
	if err != nil {
		return fmt.Errorf("failed to load aircraft profiles: %w", err)
	}
	slog.Info("Successfully loaded aircraft profiles", "count", n)
	return nil
}

func baseline(p config.PerformanceConfig) performance.Baseline {
	return performance.Baseline{
		TakeoffBase:        p.TakeoffBase,
		TakeoffExponent:    p.TakeoffExponent,
		TakeoffTotalFactor: p.TakeoffTotalFactor,
		LandingBase:        p.LandingBase,
		LandingExponent:    p.LandingExponent,
		LandingTotalFactor: p.LandingTotalFactor,
	}
}

// Start binds the listener, then serves HTTP and runs the scheduler in the
// background. A serve failure cancels the daemon context.
func (d *Daemon) Start() error {
	slog.Info("Starting daemon")

	ln, err := net.Listen("tcp", d.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.server.Addr, err)
	}
	d.addr = ln.Addr()

	d.scheduler.Start()

	d.group = new(errgroup.Group)
	d.group.Go(func() error {
		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "error", err)
			d.cancel()
			return err
		}
		return nil
	})

	slog.Info("Daemon started successfully", "addr", d.addr.String())
	return nil
}

// Addr returns the bound listener address once started
func (d *Daemon) Addr() net.Addr {
	return d.addr
}

// Done is closed when the daemon is stopping
func (d *Daemon) Done() <-chan struct{} {
	return d.ctx.Done()
}

// Stop gracefully stops the daemon
func (d *Daemon) Stop() error {
	slog.Info("Stopping daemon")
	d.cancel()

	var serveErr error
	if d.group != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := d.server.Shutdown(ctx); err != nil {
			slog.Error("Error shutting down HTTP server", "error", err)
		}
		serveErr = d.group.Wait()
	}

	d.scheduler.Stop()

	if err := d.database.Close(); err != nil {
		slog.Error("Error closing database", "error", err)
	}

	slog.Info("Daemon stopped")
	return serveErr
}
