package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"flight_wb/internal/envelope"
	"flight_wb/internal/models"
	"flight_wb/internal/units"

	"github.com/mattn/go-sqlite3"
)

type AircraftRepository interface {
	Create(ac *models.Aircraft) (*models.Aircraft, error)
	GetByID(id int64) (*models.Aircraft, error)
	GetByRegistration(registration string) (*models.Aircraft, error)
	List(skip, limit int) ([]*models.Aircraft, error)
	Update(id int64, upd models.AircraftUpdate) (*models.Aircraft, error)
	Delete(id int64) error
	Count() (int, error)
	IsTablePopulated() (bool, error)
	LoadFromJSON(paths []string) (int, error)
}

type aircraftRepository struct {
	db *sql.DB
}

func NewAircraftRepository(db *sql.DB) AircraftRepository {
	return &aircraftRepository{db: db}
}

// ValidateAircraft runs the entity checks plus envelope geometry checks
func ValidateAircraft(ac *models.Aircraft) error {
	if err := ac.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAircraft, err)
	}
	for _, env := range ac.CGEnvelopes {
		if err := envelope.CheckPolygon(env.Points); err != nil {
			return fmt.Errorf("%w: cg envelope %q: %w", ErrInvalidAircraft, env.Category, err)
		}
	}
	return nil
}

// Create inserts the aircraft with all owned collections in one transaction.
// The registration is stored upper-cased and station sort order follows the
// input order.
func (r *aircraftRepository) Create(ac *models.Aircraft) (*models.Aircraft, error) {
	if err := ValidateAircraft(ac); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	source := ac.PerformanceSource
	if source == "" {
		source = "manufacturer"
	}

	res, err := tx.Exec(`INSERT INTO aircraft (
		registration, aircraft_type, manufacturer, empty_weight_kg, empty_arm_m,
		mtow_kg, max_landing_weight_kg, performance_source, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(strings.TrimSpace(ac.Registration)), ac.AircraftType, ac.Manufacturer,
		ac.EmptyWeight.Float(), ac.EmptyArm.Float(), ac.MTOW.Float(),
		nullableKg(ac.MaxLandingWeight), source, now, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("aircraft %s: %w", ac.Registration, ErrDuplicateRegistration)
		}
		return nil, fmt.Errorf("failed to insert aircraft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read aircraft id: %w", err)
	}

	if err := insertChildren(tx, id, ac); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("Aircraft created", "id", id, "registration", strings.ToUpper(ac.Registration))
	return r.GetByID(id)
}

func insertChildren(tx *sql.Tx, id int64, ac *models.Aircraft) error {
	for i, t := range ac.FuelTanks {
		fuel := t.FuelType
		if fuel == "" {
			fuel = models.DefaultFuelType
		}
		if _, err := tx.Exec(`INSERT INTO fuel_tanks (
			aircraft_id, position, name, capacity_l, arm_m, unusable_fuel_l, fuel_type, default_quantity_l
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, t.Name, t.Capacity.Float(), t.Arm.Float(), t.UnusableFuel.Float(), string(fuel), t.DefaultQuantity.Float(),
		); err != nil {
			return fmt.Errorf("failed to insert fuel tank %q: %w", t.Name, err)
		}
	}

	for i, s := range ac.WeightStations {
		if _, err := tx.Exec(`INSERT INTO weight_stations (
			aircraft_id, name, arm_m, max_weight_kg, default_weight_kg, sort_order
		) VALUES (?, ?, ?, ?, ?, ?)`,
			id, s.Name, s.Arm.Float(), nullableKg(s.MaxWeight), nullableKg(s.DefaultWeight), i,
		); err != nil {
			return fmt.Errorf("failed to insert weight station %q: %w", s.Name, err)
		}
	}

	for _, e := range ac.CGEnvelopes {
		points, err := json.Marshal(e.Points)
		if err != nil {
			return fmt.Errorf("failed to encode envelope %q: %w", e.Category, err)
		}
		if _, err := tx.Exec(`INSERT INTO cg_envelopes (aircraft_id, category, polygon_points) VALUES (?, ?, ?)`,
			id, e.Category, string(points),
		); err != nil {
			return fmt.Errorf("failed to insert cg envelope %q: %w", e.Category, err)
		}
	}

	for _, p := range ac.PerformanceProfiles {
		tables, err := nullableJSON(p.DataTables, p.DataTables == nil)
		if err != nil {
			return fmt.Errorf("failed to encode %s tables: %w", p.ProfileType, err)
		}
		formulas, err := nullableJSON(p.Formulas, p.Formulas == nil)
		if err != nil {
			return fmt.Errorf("failed to encode %s formulas: %w", p.ProfileType, err)
		}
		if _, err := tx.Exec(`INSERT INTO performance_profiles (
			aircraft_id, profile_type, source, data_tables, formulas, notes
		) VALUES (?, ?, ?, ?, ?, ?)`,
			id, string(p.ProfileType), p.Source, tables, formulas, p.Notes,
		); err != nil {
			return fmt.Errorf("failed to insert %s profile: %w", p.ProfileType, err)
		}
	}

	return nil
}

const aircraftColumns = `id, registration, aircraft_type, manufacturer, empty_weight_kg, empty_arm_m,
	mtow_kg, max_landing_weight_kg, performance_source, created_at, updated_at`

// GetByID loads the aircraft with its full entity graph
func (r *aircraftRepository) GetByID(id int64) (*models.Aircraft, error) {
	row := r.db.QueryRow(`SELECT `+aircraftColumns+` FROM aircraft WHERE id = ?`, id)
	ac, err := scanAircraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("aircraft %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load aircraft %d: %w", id, err)
	}
	if err := r.loadChildren(ac); err != nil {
		return nil, err
	}
	return ac, nil
}

// GetByRegistration looks an aircraft up by its (case-insensitive) registration
func (r *aircraftRepository) GetByRegistration(registration string) (*models.Aircraft, error) {
	reg := strings.ToUpper(strings.TrimSpace(registration))
	var id int64
	err := r.db.QueryRow(`SELECT id FROM aircraft WHERE registration = ?`, reg).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("aircraft %s: %w", reg, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up aircraft %s: %w", reg, err)
	}
	return r.GetByID(id)
}

// List returns aircraft ordered by id
func (r *aircraftRepository) List(skip, limit int) ([]*models.Aircraft, error) {
	rows, err := r.db.Query(`SELECT `+aircraftColumns+` FROM aircraft ORDER BY id LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list aircraft: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Aircraft, 0)
	for rows.Next() {
		ac, err := scanAircraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aircraft: %w", err)
		}
		list = append(list, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list aircraft: %w", err)
	}

	for _, ac := range list {
		if err := r.loadChildren(ac); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Update applies top-level field changes and revalidates the aircraft
func (r *aircraftRepository) Update(id int64, upd models.AircraftUpdate) (*models.Aircraft, error) {
	ac, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	upd.Apply(ac)
	if err := ac.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAircraft, err)
	}

	if _, err := r.db.Exec(`UPDATE aircraft SET
		aircraft_type = ?, manufacturer = ?, empty_weight_kg = ?, empty_arm_m = ?,
		mtow_kg = ?, max_landing_weight_kg = ?, performance_source = ?, updated_at = ?
		WHERE id = ?`,
		ac.AircraftType, ac.Manufacturer, ac.EmptyWeight.Float(), ac.EmptyArm.Float(),
		ac.MTOW.Float(), nullableKg(ac.MaxLandingWeight), ac.PerformanceSource, time.Now().UTC(), id,
	); err != nil {
		return nil, fmt.Errorf("failed to update aircraft %d: %w", id, err)
	}
	return r.GetByID(id)
}

// Delete removes the aircraft and everything it owns
func (r *aircraftRepository) Delete(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"fuel_tanks", "weight_stations", "cg_envelopes", "performance_profiles"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE aircraft_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	res, err := tx.Exec(`DELETE FROM aircraft WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete aircraft %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete aircraft %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("aircraft %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *aircraftRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM aircraft").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count aircraft: %w", err)
	}
	return n, nil
}

func (r *aircraftRepository) IsTablePopulated() (bool, error) {
	var ignored int
	err := r.db.QueryRow("SELECT 1 FROM aircraft LIMIT 1").Scan(&ignored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check aircraft table: %w", err)
	}
	return true, nil
}

// LoadFromJSON seeds aircraft profiles from JSON files. Registrations that
// already exist are skipped. It returns the number of aircraft created.
func (r *aircraftRepository) LoadFromJSON(paths []string) (int, error) {
	created := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return created, fmt.Errorf("failed to read profile %s: %w", path, err)
		}

		var ac models.Aircraft
		if err := json.Unmarshal(data, &ac); err != nil {
			return created, fmt.Errorf("failed to parse profile %s: %w", path, err)
		}

		if _, err := r.Create(&ac); err != nil {
			if errors.Is(err, ErrDuplicateRegistration) {
				slog.Debug("Skipping existing aircraft profile", "path", path, "registration", ac.Registration)
				continue
			}
			return created, fmt.Errorf("failed to load profile %s: %w", path, err)
		}
		created++
	}
	return created, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAircraft(s scanner) (*models.Aircraft, error) {
	var (
		ac  models.Aircraft
		mlw sql.NullFloat64
		ew  float64
		arm float64
		mt  float64
	)
	if err := s.Scan(&ac.ID, &ac.Registration, &ac.AircraftType, &ac.Manufacturer, &ew, &arm,
		&mt, &mlw, &ac.PerformanceSource, &ac.CreatedAt, &ac.UpdatedAt); err != nil {
		return nil, err
	}
	ac.EmptyWeight = units.Kilogram(ew)
	ac.EmptyArm = units.Meter(arm)
	ac.MTOW = units.Kilogram(mt)
	ac.MaxLandingWeight = kgPtr(mlw)
	return &ac, nil
}

func (r *aircraftRepository) loadChildren(ac *models.Aircraft) error {
	var err error
	if ac.FuelTanks, err = r.fuelTanks(ac.ID); err != nil {
		return err
	}
	if ac.WeightStations, err = r.weightStations(ac.ID); err != nil {
		return err
	}
	if ac.CGEnvelopes, err = r.envelopes(ac.ID); err != nil {
		return err
	}
	if ac.PerformanceProfiles, err = r.profiles(ac.ID); err != nil {
		return err
	}
	return nil
}

// fuelTanks keeps insertion order, which drives fuel burn sequencing
func (r *aircraftRepository) fuelTanks(aircraftID int64) ([]models.FuelTank, error) {
	rows, err := r.db.Query(`SELECT id, name, capacity_l, arm_m, unusable_fuel_l, fuel_type, default_quantity_l
		FROM fuel_tanks WHERE aircraft_id = ? ORDER BY position, id`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fuel tanks: %w", err)
	}
	defer rows.Close()

	tanks := make([]models.FuelTank, 0)
	for rows.Next() {
		var (
			t                       models.FuelTank
			capacity, arm, unusable float64
			def                     float64
			fuel                    string
		)
		if err := rows.Scan(&t.ID, &t.Name, &capacity, &arm, &unusable, &fuel, &def); err != nil {
			return nil, fmt.Errorf("failed to scan fuel tank: %w", err)
		}
		t.Capacity = units.Liter(capacity)
		t.Arm = units.Meter(arm)
		t.UnusableFuel = units.Liter(unusable)
		t.FuelType = models.FuelType(fuel)
		t.DefaultQuantity = units.Liter(def)
		tanks = append(tanks, t)
	}
	return tanks, rows.Err()
}

func (r *aircraftRepository) weightStations(aircraftID int64) ([]models.WeightStation, error) {
	rows, err := r.db.Query(`SELECT id, name, arm_m, max_weight_kg, default_weight_kg, sort_order
		FROM weight_stations WHERE aircraft_id = ? ORDER BY sort_order, id`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load weight stations: %w", err)
	}
	defer rows.Close()

	stations := make([]models.WeightStation, 0)
	for rows.Next() {
		var (
			s           models.WeightStation
			arm         float64
			maxW, deflt sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.Name, &arm, &maxW, &deflt, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan weight station: %w", err)
		}
		s.Arm = units.Meter(arm)
		s.MaxWeight = kgPtr(maxW)
		s.DefaultWeight = kgPtr(deflt)
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

func (r *aircraftRepository) envelopes(aircraftID int64) ([]models.CGEnvelope, error) {
	rows, err := r.db.Query(`SELECT id, category, polygon_points FROM cg_envelopes WHERE aircraft_id = ? ORDER BY id`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cg envelopes: %w", err)
	}
	defer rows.Close()

	envs := make([]models.CGEnvelope, 0)
	for rows.Next() {
		var (
			e      models.CGEnvelope
			points string
		)
		if err := rows.Scan(&e.ID, &e.Category, &points); err != nil {
			return nil, fmt.Errorf("failed to scan cg envelope: %w", err)
		}
		if err := json.Unmarshal([]byte(points), &e.Points); err != nil {
			return nil, fmt.Errorf("failed to decode envelope %q: %w", e.Category, err)
		}
		envs = append(envs, e)
	}
	return envs, rows.Err()
}

func (r *aircraftRepository) profiles(aircraftID int64) ([]models.PerformanceProfile, error) {
	rows, err := r.db.Query(`SELECT id, profile_type, source, data_tables, formulas, notes
		FROM performance_profiles WHERE aircraft_id = ? ORDER BY id`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load performance profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]models.PerformanceProfile, 0)
	for rows.Next() {
		var (
			p                models.PerformanceProfile
			kind             string
			tables, formulas sql.NullString
		)
		if err := rows.Scan(&p.ID, &kind, &p.Source, &tables, &formulas, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan performance profile: %w", err)
		}
		p.ProfileType = models.ProfileType(kind)
		if tables.Valid {
			p.DataTables = &models.PerformanceTables{}
			if err := json.Unmarshal([]byte(tables.String), p.DataTables); err != nil {
				return nil, fmt.Errorf("failed to decode %s tables: %w", kind, err)
			}
		}
		if formulas.Valid {
			if err := json.Unmarshal([]byte(formulas.String), &p.Formulas); err != nil {
				return nil, fmt.Errorf("failed to decode %s formulas: %w", kind, err)
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func nullableKg(v *units.Kilogram) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v.Float(), Valid: true}
}

func kgPtr(v sql.NullFloat64) *units.Kilogram {
	if !v.Valid {
		return nil
	}
	kg := units.Kilogram(v.Float64)
	return &kg
}

func nullableJSON(v any, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
