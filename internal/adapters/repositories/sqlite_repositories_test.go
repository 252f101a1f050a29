package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"routelog/internal/domain"
	"routelog/internal/ports"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A single connection keeps every statement on the same in-memory DB.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, InitSchema(db))
	return db
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestCityRepository_SaveAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteCityRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Uberaba", "Araxa", "Franca"} {
		_, err := repo.SaveCity(ctx, &domain.City{Name: name, State: "MG", CreatedAt: "2026-08-01T08:00:00Z"})
		require.NoError(t, err)
	}

	cities, err := repo.ListCities(ctx)
	require.NoError(t, err)
	require.Len(t, cities, 3)
	require.Equal(t, "Araxa", cities[0].Name)
	require.Equal(t, "Franca", cities[1].Name)
	require.Equal(t, "Uberaba", cities[2].Name)

	cities[0].Name = "Araxá"
	id, err := repo.SaveCity(ctx, cities[0])
	require.NoError(t, err)
	require.Equal(t, cities[0].ID, id)

	got, err := repo.GetCity(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Araxá", got.Name)

	missing, err := repo.GetCity(ctx, 999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCourierRepository_CityIDsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteCourierRepository(db)
	ctx := context.Background()

	id, err := repo.SaveCourier(ctx, &domain.Courier{
		Name:      "Marcos",
		Phone:     "34999990000",
		CityIDs:   []int{3, 1, 7},
		Active:    true,
		CreatedAt: "2026-08-01T08:00:00Z",
	})
	require.NoError(t, err)

	got, err := repo.GetCourier(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 7}, got.CityIDs)
	require.True(t, got.Active)
}

func TestVehicleRepository_AdvanceOdometerNeverLowers(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteVehicleRepository(db)
	ctx := context.Background()

	id, err := repo.SaveVehicle(ctx, &domain.Vehicle{
		Plate: "ABC1D23", Model: "Sprinter", Active: true, CreatedAt: "2026-08-01T08:00:00Z",
	})
	require.NoError(t, err)

	require.NoError(t, repo.AdvanceOdometer(ctx, id, 40400))
	v, err := repo.GetVehicle(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 40400, *v.OdometerKm)

	require.NoError(t, repo.AdvanceOdometer(ctx, id, 40000))
	v, err = repo.GetVehicle(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 40400, *v.OdometerKm)
}

func testRoute() *domain.Route {
	return &domain.Route{
		Date:          "2026-08-20",
		VehicleID:     1,
		Plate:         "ABC1D23",
		Driver:        "Jose",
		DepartureKm:   40000,
		DepartureTime: "07:30",
		Status:        domain.RouteInProgress,
		CreatedAt:     "2026-08-20T07:30:00Z",
		Stops: []domain.RouteStop{
			{CityID: 1, CityName: "Uberaba", CourierID: 2, CourierName: "Marcos", Dispatched: 120, Incidents: []domain.Incident{}},
			{CityID: 3, CityName: "Franca", CourierID: 4, CourierName: "Paula", Dispatched: 80, Incidents: []domain.Incident{}},
		},
	}
}

func TestRouteRepository_SaveRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteRouteRepository(db)
	ctx := context.Background()

	r := testRoute()
	r.Stops[0].Incidents = append(r.Stops[0].Incidents, domain.Incident{
		ID: "inc-1", Type: domain.IncidentDamaged, Description: "wet box", Quantity: 2, CreatedAt: "2026-08-20T09:00:00Z",
	})

	id, err := repo.SaveRoute(ctx, r)
	require.NoError(t, err)

	got, err := repo.GetRoute(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.RouteInProgress, got.Status)
	require.Len(t, got.Stops, 2)
	require.Equal(t, "Uberaba", got.Stops[0].CityName)
	require.Len(t, got.Stops[0].Incidents, 1)
	require.Equal(t, domain.IncidentDamaged, got.Stops[0].Incidents[0].Type)
	require.Empty(t, got.Stops[1].Incidents)

	// Mutating one stop rewrites the aggregate, not a fragment.
	got.Stops[1].Completed = true
	got.Stops[1].CompletedAt = strPtr("11:45")
	_, err = repo.SaveRoute(ctx, got)
	require.NoError(t, err)

	again, err := repo.GetRoute(ctx, id)
	require.NoError(t, err)
	require.True(t, again.Stops[1].Completed)
	require.Len(t, again.Stops[0].Incidents, 1)
}

func TestRouteRepository_SingleInProgressEnforcedByIndex(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteRouteRepository(db)
	ctx := context.Background()

	_, err := repo.SaveRoute(ctx, testRoute())
	require.NoError(t, err)

	_, err = repo.SaveRoute(ctx, testRoute())
	require.Error(t, err)

	active, err := repo.ActiveRoute(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
}

func TestRouteRepository_ActiveRouteNilWhenNone(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteRouteRepository(db)

	active, err := repo.ActiveRoute(context.Background())
	require.NoError(t, err)
	require.Nil(t, active)
}

func TestRouteRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteRouteRepository(db)
	ctx := context.Background()

	old := testRoute()
	old.Date = "2026-07-01"
	old.Status = domain.RouteCompleted
	old.ArrivalKm = intPtr(40180)
	old.ArrivalTime = strPtr("17:00")
	old.CreatedAt = "2026-07-01T07:30:00Z"
	_, err := repo.SaveRoute(ctx, old)
	require.NoError(t, err)

	current := testRoute()
	_, err = repo.SaveRoute(ctx, current)
	require.NoError(t, err)

	all, err := repo.ListRoutes(ctx, ports.RouteFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, current.ID, all[0].ID)

	completed, err := repo.ListRoutes(ctx, ports.RouteFilter{Status: domain.RouteCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)

	august, err := repo.ListRoutes(ctx, ports.RouteFilter{From: "2026-08-01", To: "2026-08-31"})
	require.NoError(t, err)
	require.Len(t, august, 1)
	require.Equal(t, "2026-08-20", august[0].Date)
}

func TestRefuelingRepository_LatestAndBelow(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteRefuelingRepository(db)
	ctx := context.Background()

	for _, km := range []int{40000, 40800, 40400} {
		_, err := repo.SaveRefueling(ctx, &domain.Refueling{
			VehicleID: 1, Date: "2026-08-10", OdometerKm: km, Liters: 30,
			TotalCost: 180, FuelType: domain.FuelDiesel, CreatedAt: "2026-08-10T10:00:00Z",
		})
		require.NoError(t, err)
	}

	latest, err := repo.LatestRefueling(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 40800, latest.OdometerKm)

	below, err := repo.RefuelingBelow(ctx, 1, 40800)
	require.NoError(t, err)
	require.Equal(t, 40400, below.OdometerKm)

	none, err := repo.RefuelingBelow(ctx, 1, 40000)
	require.NoError(t, err)
	require.Nil(t, none)

	otherVehicle, err := repo.LatestRefueling(ctx, 2)
	require.NoError(t, err)
	require.Nil(t, otherVehicle)
}

func TestMaintenanceRepository_ReplacedItemsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteMaintenanceRepository(db)
	ctx := context.Background()

	id, err := repo.SaveMaintenance(ctx, &domain.Maintenance{
		VehicleID: 1, Date: "2026-08-05", OdometerKm: 40000, OilType: "15W40",
		ReplacedItems: []domain.ReplacedItem{domain.ItemEngineOil, domain.ItemOilFilter},
		NextDueKm:     intPtr(45000),
		CreatedAt:     "2026-08-05T10:00:00Z",
	})
	require.NoError(t, err)
	require.Greater(t, id, 0)

	latest, err := repo.LatestMaintenance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []domain.ReplacedItem{domain.ItemEngineOil, domain.ItemOilFilter}, latest.ReplacedItems)
	require.Equal(t, 45000, *latest.NextDueKm)
}

func TestSettingsRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteSettingsRepository(db)
	ctx := context.Background()

	v, err := repo.GetSetting(ctx, "server_url")
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, repo.SetSetting(ctx, "server_url", "https://sync.example.com"))
	require.NoError(t, repo.SetSetting(ctx, "server_url", "https://sync2.example.com"))

	v, err = repo.GetSetting(ctx, "server_url")
	require.NoError(t, err)
	require.Equal(t, "https://sync2.example.com", v)
}
