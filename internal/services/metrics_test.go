package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"routelog/internal/domain"
)

func TestDeriveFuelMetrics_WorkedExample(t *testing.T) {
	prior := &domain.Refueling{OdometerKm: 40000, Liters: 35}
	current := &domain.Refueling{OdometerKm: 40400, Liters: 32, TotalCost: 200}

	DeriveFuelMetrics(current, prior)

	require.NotNil(t, current.PriorKm)
	require.Equal(t, 40000, *current.PriorKm)
	// 400 km on the prior fill's 35 liters, cost from this fill.
	require.InDelta(t, 11.43, *current.KmPerLiter, 0.01)
	require.InDelta(t, 0.50, *current.CostPerKm, 0.001)
}

func TestDeriveFuelMetrics_NoPriorLeavesFieldsUnset(t *testing.T) {
	current := &domain.Refueling{OdometerKm: 40400, Liters: 32, TotalCost: 200}

	DeriveFuelMetrics(current, nil)

	require.Nil(t, current.PriorKm)
	require.Nil(t, current.KmPerLiter)
	require.Nil(t, current.CostPerKm)
}

func TestDeriveFuelMetrics_ZeroPriorLiters(t *testing.T) {
	prior := &domain.Refueling{OdometerKm: 40000, Liters: 0}
	current := &domain.Refueling{OdometerKm: 40400, Liters: 32, TotalCost: 200}

	DeriveFuelMetrics(current, prior)

	require.Nil(t, current.KmPerLiter)
}

func TestMaintenanceDue_KmBoundary(t *testing.T) {
	next := 45000
	last := &domain.Maintenance{OdometerKm: 40000, NextDueKm: &next}

	below := 44999
	require.False(t, MaintenanceDue(last, &below, "2026-08-20"))

	exact := 45000
	require.True(t, MaintenanceDue(last, &exact, "2026-08-20"))
}

func TestMaintenanceDue_DateBoundary(t *testing.T) {
	date := "2026-08-20"
	last := &domain.Maintenance{OdometerKm: 40000, NextDueDate: &date}

	require.False(t, MaintenanceDue(last, nil, "2026-08-19"))
	require.True(t, MaintenanceDue(last, nil, "2026-08-20"))
	require.True(t, MaintenanceDue(last, nil, "2026-08-21"))
}

func TestMaintenanceDue_FallsBackToMaintenanceOdometer(t *testing.T) {
	next := 45000
	last := &domain.Maintenance{OdometerKm: 45200, NextDueKm: &next}

	// No vehicle reading: the record's own odometer already passed the limit.
	require.True(t, MaintenanceDue(last, nil, "2026-08-20"))
}

func TestMaintenanceDue_NoThresholds(t *testing.T) {
	last := &domain.Maintenance{OdometerKm: 40000}
	km := 99999

	require.False(t, MaintenanceDue(last, &km, "2026-08-20"))
	require.False(t, MaintenanceDue(nil, &km, "2026-08-20"))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "9h 30min", FormatDuration("07:30", "17:00"))
	require.Equal(t, "45min", FormatDuration("08:00", "08:45"))
	require.Equal(t, DurationSentinel, FormatDuration("08:00", "08:00"))
	// Day-crossing reads as negative and yields the sentinel.
	require.Equal(t, DurationSentinel, FormatDuration("23:00", "01:00"))
	require.Equal(t, DurationSentinel, FormatDuration("07:30", ""))
	require.Equal(t, DurationSentinel, FormatDuration("7h30", "17:00"))
}

func TestComputeRouteTotals_DeliveredFallback(t *testing.T) {
	ten := 10
	r := &domain.Route{
		DepartureKm: 40000,
		Stops: []domain.RouteStop{
			// Completed with returns, delivered unset: falls back to 110.
			{Dispatched: 120, Returned: &ten, Completed: true},
			// Open stop, delivered unset: counts zero.
			{Dispatched: 80},
		},
	}

	totals := ComputeRouteTotals(r)
	require.Equal(t, 200, totals.Dispatched)
	require.Equal(t, 110, totals.Delivered)
	require.Equal(t, 10, totals.Returned)
	require.Nil(t, totals.DistanceKm)

	arrival := 40180
	r.ArrivalKm = &arrival
	totals = ComputeRouteTotals(r)
	require.Equal(t, 180, *totals.DistanceKm)
}

func TestComputePeriodTotals_SkipsUnmeasuredDistance(t *testing.T) {
	arrival := 40100
	routes := []*domain.Route{
		{DepartureKm: 40000, ArrivalKm: &arrival, Stops: []domain.RouteStop{{Dispatched: 50, Completed: true}}},
		{DepartureKm: 40100, Stops: []domain.RouteStop{{Dispatched: 30, Completed: true}}},
	}

	totals := ComputePeriodTotals(routes)
	require.Equal(t, 80, totals.Dispatched)
	require.Equal(t, 100, *totals.DistanceKm)
}

func TestReturnRatePct(t *testing.T) {
	require.InDelta(t, 15.0, RouteTotals{Dispatched: 1000, Returned: 150}.ReturnRatePct(), 0.001)
	require.Zero(t, RouteTotals{}.ReturnRatePct())
}
