package database

import (
	"path/filepath"
	"testing"
	"time"

	"flight_wb/internal/envelope"
	"flight_wb/internal/models"
	"flight_wb/internal/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	db, err := New(filepath.Join(t.TempDir(), "test_flight_wb.db"))
	require.NoError(t, err)
	require.NotNil(t, db)

	return db
}

func cleanupTestDB(t *testing.T, db *DB) {
	if db != nil {
		err := db.Close()
		assert.NoError(t, err)
	}
}

func kg(v float64) *units.Kilogram {
	k := units.Kilogram(v)
	return &k
}

func testAircraft(reg string) *models.Aircraft {
	return &models.Aircraft{
		Registration:     reg,
		AircraftType:     "DA40",
		Manufacturer:     "Diamond",
		EmptyWeight:      800,
		EmptyArm:         2.44,
		MTOW:             1150,
		MaxLandingWeight: kg(1092),
		FuelTanks: []models.FuelTank{
			{Name: "Main", Capacity: 155, Arm: 2.63, UnusableFuel: 3},
			{Name: "Aux", Capacity: 40, Arm: 3.20, FuelType: models.FuelJetA1},
		},
		WeightStations: []models.WeightStation{
			{Name: "Front Seats", Arm: 2.30, MaxWeight: kg(200), SortOrder: 7},
			{Name: "Baggage", Arm: 3.65},
		},
		CGEnvelopes: []models.CGEnvelope{{
			Category: models.CategoryNormal,
			Points: []models.EnvelopePoint{
				{Weight: 780, Arm: 2.40}, {Weight: 1150, Arm: 2.46},
				{Weight: 1150, Arm: 2.59}, {Weight: 780, Arm: 2.59},
			},
		}},
		PerformanceProfiles: []models.PerformanceProfile{{
			ProfileType: models.ProfileTakeoff,
			Source:      "poh",
			DataTables: &models.PerformanceTables{
				Weights:           []float64{900, 1150},
				PressureAltitudes: []float64{0},
				Temperatures:      []float64{15},
				GroundRoll:        []float64{200, 300},
				TotalDistance50ft: []float64{350, 500},
			},
			Formulas: map[string]any{"note": "linear"},
		}},
	}
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	assert.NotNil(t, db)
}

func TestAircraftRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AircraftRepository()

	created, err := repo.Create(testAircraft("d-eabc"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)

	assert.Equal(t, "D-EABC", got.Registration)
	assert.Equal(t, "manufacturer", got.PerformanceSource)
	assert.Equal(t, units.Kilogram(1150), got.MTOW)
	require.NotNil(t, got.MaxLandingWeight)
	assert.Equal(t, units.Kilogram(1092), *got.MaxLandingWeight)
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, got.FuelTanks, 2)
	assert.Equal(t, "Main", got.FuelTanks[0].Name)
	assert.Equal(t, models.DefaultFuelType, got.FuelTanks[0].FuelType)
	assert.Equal(t, models.FuelJetA1, got.FuelTanks[1].FuelType)

	require.Len(t, got.WeightStations, 2)
	assert.Equal(t, 0, got.WeightStations[0].SortOrder)
	assert.Equal(t, 1, got.WeightStations[1].SortOrder)
	require.NotNil(t, got.WeightStations[0].MaxWeight)
	assert.Nil(t, got.WeightStations[1].MaxWeight)

	env := got.Envelope(models.CategoryNormal)
	require.NotNil(t, env)
	assert.Len(t, env.Points, 4)
	assert.Equal(t, units.Meter(2.46), env.Points[1].Arm)

	require.Len(t, got.PerformanceProfiles, 1)
	p := got.PerformanceProfiles[0]
	require.NotNil(t, p.DataTables)
	assert.Equal(t, []float64{200, 300}, p.DataTables.GroundRoll)
	assert.Equal(t, "linear", p.Formulas["note"])

	byReg, err := repo.GetByRegistration("d-EaBc")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byReg.ID)
}

func TestAircraftRepository_CreateErrors(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AircraftRepository()

	_, err := repo.Create(testAircraft("D-EABC"))
	require.NoError(t, err)

	_, err = repo.Create(testAircraft("d-eabc"))
	assert.ErrorIs(t, err, ErrDuplicateRegistration)

	bad := testAircraft("D-EBAD")
	bad.CGEnvelopes[0].Points = bad.CGEnvelopes[0].Points[:2]
	_, err = repo.Create(bad)
	assert.ErrorIs(t, err, envelope.ErrTooFewPoints)

	invalid := testAircraft("D-EINV")
	invalid.MTOW = 500
	_, err = repo.Create(invalid)
	assert.ErrorIs(t, err, ErrInvalidAircraft)

	_, err = repo.GetByRegistration("D-EBAD")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAircraftRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AircraftRepository()

	_, err := repo.GetByID(42)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(42), ErrNotFound)

	_, err = repo.Update(42, models.AircraftUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAircraftRepository_List(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AircraftRepository()

	empty, err := repo.List(0, 100)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, reg := range []string{"D-EAAA", "D-EBBB", "D-ECCC"} {
		_, err := repo.Create(testAircraft(reg))
		require.NoError(t, err)
	}

	all, err := repo.List(0, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, all[0].FuelTanks, 2)

	page, err := repo.List(1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "D-EBBB", page[0].Registration)
}

func TestAircraftRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AircraftRepository()

	created, err := repo.Create(testAircraft("D-EABC"))
	require.NoError(t, err)

	manufacturer := "Diamond Aircraft"
	mtow := units.Kilogram(1200)
	updated, err := repo.Update(created.ID, models.AircraftUpdate{Manufacturer: &manufacturer, MTOW: &mtow})
	require.NoError(t, err)
	assert.Equal(t, "Diamond Aircraft", updated.Manufacturer)
	assert.Equal(t, units.Kilogram(1200), updated.MTOW)
	assert.Equal(t, units.Kilogram(800), updated.EmptyWeight)
	assert.Len(t, updated.WeightStations, 2)

	tooLight := units.Kilogram(100)
	_, err = repo.Update(created.ID, models.AircraftUpdate{MTOW: &tooLight})
	assert.ErrorIs(t, err, ErrInvalidAircraft)
}

func TestAircraftRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AircraftRepository()

	created, err := repo.Create(testAircraft("D-EABC"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(created.ID))

	_, err = repo.GetByID(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, table := range []string{"fuel_tanks", "weight_stations", "cg_envelopes", "performance_profiles"} {
		var n int
		require.NoError(t, db.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestAircraftRepository_LoadFromJSON(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.AircraftRepository()

	populated, err := repo.IsTablePopulated()
	require.NoError(t, err)
	assert.False(t, populated)

	paths, err := filepath.Glob("datasets/*.json")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	n, err := repo.LoadFromJSON(paths)
	require.NoError(t, err)
	assert.Equal(t, len(paths), n)

	populated, err = repo.IsTablePopulated()
	require.NoError(t, err)
	assert.True(t, populated)

	da40, err := repo.GetByRegistration("D-EDAF")
	require.NoError(t, err)
	assert.Len(t, da40.Profiles(), 2)
	assert.Len(t, da40.PerformanceProfiles[0].DataTables.GroundRoll, 18)

	// seeding again skips existing registrations
	n, err = repo.LoadFromJSON(paths)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.LoadFromJSON([]string{"datasets/missing.json"})
	assert.Error(t, err)
}

func TestMetarRepository(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	repo := db.MetarRepository()

	assert.NoError(t, repo.InsertBatch(nil))

	dir := 270
	base := time.Date(2026, 3, 20, 13, 50, 0, 0, time.UTC)
	older := &models.Metar{Station: "EDDF", Time: base.Add(-time.Hour), Raw: "EDDF 201250Z 27006KT 9999 12/04 Q1022", WindSpeed: 6, Temperature: 12, QNH: 1022}
	latest := &models.Metar{Station: "eddf", Time: base, Raw: "EDDF 201350Z 27008KT 9999 FEW040 12/04 Q1023", WindDirection: &dir, WindSpeed: 8, Temperature: 12, QNH: 1023}

	// duplicates are ignored
	require.NoError(t, repo.InsertBatch([]*models.Metar{older, latest, latest}))

	got, err := repo.Latest("EDDF")
	require.NoError(t, err)
	assert.Equal(t, latest.Raw, got.Raw)
	require.NotNil(t, got.WindDirection)
	assert.Equal(t, 270, *got.WindDirection)
	assert.Equal(t, 1023, got.QNH)
	assert.True(t, base.Equal(got.Time))

	_, err = repo.Latest("EGLL")
	assert.ErrorIs(t, err, ErrNotFound)

	purged, err := repo.PurgeBefore(base.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
