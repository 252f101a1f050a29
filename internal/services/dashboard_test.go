package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"routelog/internal/domain"
)

func TestDashboardSummary_Rollups(t *testing.T) {
	ctx := context.Background()
	routes := newFakeRouteRepo()

	today := completedRoute("2026-08-20", 40000, 40180,
		stopWith("Marcos", 120, 10,
			domain.Incident{ID: "a", Type: domain.IncidentRefusal, Quantity: 2},
		),
		stopWith("Paula", 80, 0),
	)
	_, err := routes.SaveRoute(ctx, today)
	require.NoError(t, err)

	lastWeek := completedRoute("2026-08-16", 39800, 39900,
		stopWith("Marcos", 50, 0,
			domain.Incident{ID: "b", Type: domain.IncidentDamaged, Quantity: 1},
			domain.Incident{ID: "c", Type: domain.IncidentRefusal, Quantity: 1},
		),
	)
	_, err = routes.SaveRoute(ctx, lastWeek)
	require.NoError(t, err)

	fleet := NewFleetService(newFakeRefuelingRepo(), newFakeMaintenanceRepo(), newFakeVehicleRepo(
		&domain.Vehicle{Plate: "ABC1D23", Model: "Sprinter", Active: true},
	))
	fleet.Now = fixedNow("2026-08-20T18:00:00Z")

	svc := NewDashboardService(routes, fleet, nil, 0)
	svc.Now = fixedNow("2026-08-20T18:00:00Z")

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	require.Equal(t, 200, summary.TodayDispatched)
	require.Equal(t, 190, summary.TodayDelivered)
	require.Equal(t, 10, summary.TodayReturned)
	require.Equal(t, 2, summary.TodayCompletedStops)

	require.Len(t, summary.Last7Days, 7)
	require.Equal(t, "2026-08-14", summary.Last7Days[0].Date)
	require.Equal(t, "2026-08-20", summary.Last7Days[6].Date)
	require.Equal(t, 200, summary.Last7Days[6].Volumes)
	require.Equal(t, 180, summary.Last7Days[6].DistanceKm)
	require.Zero(t, summary.Last7Days[1].Volumes) // idle day zero-filled

	require.Equal(t, 2, summary.CompletedRoutes30Days)
	require.NotNil(t, summary.Last30DayTotals.DistanceKm)
	require.Equal(t, 280, *summary.Last30DayTotals.DistanceKm)
	require.Equal(t, 250, summary.Last30DayTotals.Dispatched)

	require.Equal(t, []IncidentTypeCount{
		{Type: domain.IncidentRefusal, Count: 3},
		{Type: domain.IncidentDamaged, Count: 1},
	}, summary.TopIncidents)

	require.Zero(t, summary.MaintenanceDueVehicles)
}

func TestDashboardSummary_CountsDueVehicles(t *testing.T) {
	ctx := context.Background()

	vehicles := newFakeVehicleRepo(
		&domain.Vehicle{Plate: "ABC1D23", Model: "Sprinter", Active: true},
		&domain.Vehicle{Plate: "XYZ9K88", Model: "Daily", Active: false},
	)
	maintenances := newFakeMaintenanceRepo()
	fleet := NewFleetService(newFakeRefuelingRepo(), maintenances, vehicles)
	fleet.Now = fixedNow("2026-08-20T18:00:00Z")

	// Both vehicles overdue by date, but only the active one counts.
	due := "2026-08-01"
	for id := 1; id <= 2; id++ {
		_, err := maintenances.SaveMaintenance(ctx, &domain.Maintenance{
			VehicleID: id, Date: "2026-07-01", OdometerKm: 40000, NextDueDate: &due,
		})
		require.NoError(t, err)
	}

	svc := NewDashboardService(newFakeRouteRepo(), fleet, nil, 0)
	svc.Now = fixedNow("2026-08-20T18:00:00Z")

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.MaintenanceDueVehicles)
}
