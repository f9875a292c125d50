package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"flight_wb/internal/models"
)

type MetarRepository interface {
	InsertBatch(reports []*models.Metar) error
	Latest(station string) (*models.Metar, error)
	PurgeBefore(cutoff time.Time) (int64, error)
}

type metarRepository struct {
	db *sql.DB
}

func NewMetarRepository(db *sql.DB) MetarRepository {
	return &metarRepository{db: db}
}

// InsertBatch stores observations in a single transaction. A report already
// stored for the same station and time is ignored.
func (r *metarRepository) InsertBatch(reports []*models.Metar) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO metar_reports (
		station, observed_at, raw, wind_direction, wind_speed_kt, temperature_c, qnh_hpa
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range reports {
		var dir sql.NullInt64
		if m.WindDirection != nil {
			dir = sql.NullInt64{Int64: int64(*m.WindDirection), Valid: true}
		}
		if _, err := stmt.Exec(
			strings.ToUpper(m.Station),
			m.Time.UTC(),
			m.Raw,
			dir,
			m.WindSpeed,
			m.Temperature,
			m.QNH,
		); err != nil {
			return fmt.Errorf("failed to insert metar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Latest returns the most recent stored observation for a station
func (r *metarRepository) Latest(station string) (*models.Metar, error) {
	var (
		m   models.Metar
		dir sql.NullInt64
	)
	err := r.db.QueryRow(`SELECT station, observed_at, raw, wind_direction, wind_speed_kt, temperature_c, qnh_hpa
		FROM metar_reports WHERE station = ? ORDER BY observed_at DESC LIMIT 1`, strings.ToUpper(station)).
		Scan(&m.Station, &m.Time, &m.Raw, &dir, &m.WindSpeed, &m.Temperature, &m.QNH)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("metar %s: %w", station, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load metar %s: %w", station, err)
	}
	if dir.Valid {
		d := int(dir.Int64)
		m.WindDirection = &d
	}
	m.Clouds = []models.CloudLayer{}
	return &m, nil
}

// PurgeBefore deletes observations older than cutoff
func (r *metarRepository) PurgeBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM metar_reports WHERE observed_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge metar history: %w", err)
	}
	return res.RowsAffected()
}
