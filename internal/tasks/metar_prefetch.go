package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flight_wb/internal/database"
	"flight_wb/internal/models"

	"golang.org/x/sync/errgroup"
)

// MetarFetcher fetches the current observation for a station
type MetarFetcher interface {
	GetMETAR(ctx context.Context, icao string) (*models.Metar, error)
}

// MetarPrefetch periodically fetches METARs for a fixed station list, warms
// the weather cache and stores the reports in the history table.
type MetarPrefetch struct {
	fetcher   MetarFetcher
	repo      database.MetarRepository
	stations  []string
	interval  time.Duration
	retention time.Duration
	parallel  int
	now       func() time.Time
}

// NewMetarPrefetch creates the task. A zero retention keeps history forever.
func NewMetarPrefetch(fetcher MetarFetcher, repo database.MetarRepository, stations []string, interval, retention time.Duration) *MetarPrefetch {
	return &MetarPrefetch{
		fetcher:   fetcher,
		repo:      repo,
		stations:  stations,
		interval:  interval,
		retention: retention,
		parallel:  4,
		now:       time.Now,
	}
}

func (t *MetarPrefetch) Name() string {
	return "metar_prefetch"
}

func (t *MetarPrefetch) Interval() time.Duration {
	return t.interval
}

// Run fetches every station concurrently. A failing station is logged and
// skipped; Run only errors when nothing could be fetched or storage fails.
func (t *MetarPrefetch) Run(ctx context.Context) error {
	if len(t.stations) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		reports = make([]*models.Metar, 0, len(t.stations))
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.parallel)
	for _, station := range t.stations {
		g.Go(func() error {
			m, err := t.fetcher.GetMETAR(gctx, station)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				slog.Warn("METAR prefetch failed", "station", station, "error", err)
				return nil
			}
			reports = append(reports, m)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	if len(reports) > 0 {
		if err := t.repo.InsertBatch(reports); err != nil {
			return fmt.Errorf("failed to store METARs: %w", err)
		}
	}

	slog.Info("Prefetched METARs",
		"stations", len(t.stations),
		"stored", len(reports),
		"failed", failed,
	)

	if t.retention > 0 {
		purged, err := t.repo.PurgeBefore(t.now().Add(-t.retention))
		if err != nil {
			return fmt.Errorf("failed to purge METAR history: %w", err)
		}
		if purged > 0 {
			slog.Debug("Purged METAR history", "rows", purged)
		}
	}

	if failed == len(t.stations) {
		return fmt.Errorf("all %d stations failed", failed)
	}
	return nil
}
