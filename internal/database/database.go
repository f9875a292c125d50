package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRegistration is returned when an aircraft registration is taken
	ErrDuplicateRegistration = errors.New("registration already exists")
	// ErrInvalidAircraft wraps configuration validation failures
	ErrInvalidAircraft = errors.New("invalid aircraft")
)

// Repository groups the storage used by the service
type Repository interface {
	AircraftRepository() AircraftRepository
	MetarRepository() MetarRepository
	Close() error
}

// DB implements the Repository interface using SQLite
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

func optimizeSQLite(db *sql.DB) error {
	// WAL allows concurrent readers while a calculation request writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return nil
}

// AircraftRepository returns the aircraft provider backed by this database
func (d *DB) AircraftRepository() AircraftRepository {
	return NewAircraftRepository(d.db)
}

// MetarRepository returns the observation history store
func (d *DB) MetarRepository() MetarRepository {
	return NewMetarRepository(d.db)
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	tables := []struct {
		name   string
		schema string
	}{
		{"aircraft", `CREATE TABLE IF NOT EXISTS aircraft (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			registration TEXT NOT NULL UNIQUE,
			aircraft_type TEXT NOT NULL,
			manufacturer TEXT NOT NULL DEFAULT '',
			empty_weight_kg REAL NOT NULL,
			empty_arm_m REAL NOT NULL,
			mtow_kg REAL NOT NULL,
			max_landing_weight_kg REAL,
			performance_source TEXT NOT NULL DEFAULT 'manufacturer',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`},
		{"fuel_tanks", `CREATE TABLE IF NOT EXISTS fuel_tanks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			aircraft_id INTEGER NOT NULL REFERENCES aircraft(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			capacity_l REAL NOT NULL,
			arm_m REAL NOT NULL,
			unusable_fuel_l REAL NOT NULL DEFAULT 0,
			fuel_type TEXT NOT NULL,
			default_quantity_l REAL NOT NULL DEFAULT 0
		);`},
		{"weight_stations", `CREATE TABLE IF NOT EXISTS weight_stations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			aircraft_id INTEGER NOT NULL REFERENCES aircraft(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			arm_m REAL NOT NULL,
			max_weight_kg REAL,
			default_weight_kg REAL,
			sort_order INTEGER NOT NULL DEFAULT 0
		);`},
		{"cg_envelopes", `CREATE TABLE IF NOT EXISTS cg_envelopes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			aircraft_id INTEGER NOT NULL REFERENCES aircraft(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			polygon_points TEXT NOT NULL
		);`},
		{"performance_profiles", `CREATE TABLE IF NOT EXISTS performance_profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			aircraft_id INTEGER NOT NULL REFERENCES aircraft(id) ON DELETE CASCADE,
			profile_type TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			data_tables TEXT,
			formulas TEXT,
			notes TEXT NOT NULL DEFAULT ''
		);`},
		{"metar_reports", `CREATE TABLE IF NOT EXISTS metar_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			station TEXT NOT NULL,
			observed_at TIMESTAMP NOT NULL,
			raw TEXT NOT NULL,
			wind_direction INTEGER,
			wind_speed_kt INTEGER NOT NULL,
			temperature_c INTEGER NOT NULL,
			qnh_hpa INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(station, observed_at, raw)
		);`},
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_fuel_tanks_aircraft ON fuel_tanks(aircraft_id)`,
		`CREATE INDEX IF NOT EXISTS idx_weight_stations_aircraft ON weight_stations(aircraft_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cg_envelopes_aircraft ON cg_envelopes(aircraft_id)`,
		`CREATE INDEX IF NOT EXISTS idx_performance_profiles_aircraft ON performance_profiles(aircraft_id)`,
		`CREATE INDEX IF NOT EXISTS idx_metar_reports_station_time ON metar_reports(station, observed_at)`,
	}

	for _, t := range tables {
		if _, err := d.db.Exec(t.schema); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
