package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"routelog/internal/domain"
)

func newRouteFixture(t *testing.T) (*RouteService, *fakeRouteRepo, *fakeVehicleRepo, *fakeSync) {
	t.Helper()

	routes := newFakeRouteRepo()
	vehicles := newFakeVehicleRepo(&domain.Vehicle{Plate: "ABC1D23", Model: "Sprinter", Driver: "Jose", Active: true})
	cities := newFakeCityRepo(
		&domain.City{Name: "Uberaba", State: "MG"},
		&domain.City{Name: "Franca", State: "SP"},
	)
	couriers := newFakeCourierRepo(
		&domain.Courier{Name: "Marcos", Active: true},
		&domain.Courier{Name: "Paula", Active: true},
	)
	sync := &fakeSync{}

	svc := NewRouteService(routes, vehicles, cities, couriers, sync)
	svc.Now = fixedNow("2026-08-20T07:30:00Z")
	return svc, routes, vehicles, sync
}

func validCreateInput() CreateRouteInput {
	return CreateRouteInput{
		VehicleID:     1,
		DepartureKm:   40000,
		DepartureTime: "07:30",
		Stops: []CreateStopInput{
			{CityID: 1, CourierID: 1, Dispatched: 120},
			{CityID: 2, CourierID: 2, Dispatched: 80},
		},
	}
}

func TestRouteCreate_SnapshotsNames(t *testing.T) {
	svc, _, _, sync := newRouteFixture(t)

	route, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	require.Equal(t, domain.RouteInProgress, route.Status)
	require.Equal(t, "ABC1D23", route.Plate)
	require.Equal(t, "Jose", route.Driver) // default from the vehicle
	require.Equal(t, "2026-08-20", route.Date)
	require.Equal(t, "Uberaba", route.Stops[0].CityName)
	require.Equal(t, "Paula", route.Stops[1].CourierName)
	require.False(t, route.Stops[0].Completed)
	require.Empty(t, route.Stops[0].Incidents)
	require.Equal(t, []string{"upsert:routes"}, sync.calls)
}

func TestRouteCreate_Validation(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	cases := map[string]func(*CreateRouteInput){
		"missing vehicle":       func(in *CreateRouteInput) { in.VehicleID = 0 },
		"unknown vehicle":       func(in *CreateRouteInput) { in.VehicleID = 99 },
		"zero departure km":     func(in *CreateRouteInput) { in.DepartureKm = 0 },
		"no stops":              func(in *CreateRouteInput) { in.Stops = nil },
		"zero dispatched":       func(in *CreateRouteInput) { in.Stops[0].Dispatched = 0 },
		"unknown city":          func(in *CreateRouteInput) { in.Stops[0].CityID = 99 },
		"unknown courier":       func(in *CreateRouteInput) { in.Stops[1].CourierID = 99 },
	}

	for name, mutate := range cases {
		in := validCreateInput()
		mutate(&in)
		_, err := svc.Create(ctx, in)
		require.True(t, IsValidation(err), "case %q: got %v", name, err)
	}
}

func TestRouteCreate_RejectsSecondActiveRoute(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validCreateInput())
	require.True(t, IsValidation(err))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, active.ID)
}

func TestCompleteStop_StampsTimeOnce(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	route, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	route, err = svc.CompleteStop(ctx, route.ID, 0, "10:15")
	require.NoError(t, err)
	require.True(t, route.Stops[0].Completed)
	require.Equal(t, "10:15", *route.Stops[0].CompletedAt)

	_, err = svc.CompleteStop(ctx, route.ID, 0, "11:00")
	require.True(t, IsValidation(err))

	again, err := svc.Get(ctx, route.ID)
	require.NoError(t, err)
	require.Equal(t, "10:15", *again.Stops[0].CompletedAt)
}

func TestCompleteStop_DefaultsToClock(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	route, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	route, err = svc.CompleteStop(ctx, route.ID, 1, "")
	require.NoError(t, err)
	require.Equal(t, "07:30", *route.Stops[1].CompletedAt)
}

func TestUpdateStopVolumes_FrozenOnceCompleted(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	route, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	delivered, returned := 110, 10
	route, err = svc.UpdateStopVolumes(ctx, route.ID, 0, &delivered, &returned)
	require.NoError(t, err)
	require.Equal(t, 110, *route.Stops[0].Delivered)
	require.Equal(t, 10, *route.Stops[0].Returned)

	negative := -1
	_, err = svc.UpdateStopVolumes(ctx, route.ID, 0, &negative, nil)
	require.True(t, IsValidation(err))

	_, err = svc.CompleteStop(ctx, route.ID, 0, "10:15")
	require.NoError(t, err)

	_, err = svc.UpdateStopVolumes(ctx, route.ID, 0, &delivered, nil)
	require.True(t, IsValidation(err))
}

func TestIncidents_FrozenOnceCompleted(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	route, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	route, err = svc.AddIncident(ctx, route.ID, 0, IncidentInput{Type: domain.IncidentDamaged, Description: "wet box"})
	require.NoError(t, err)
	require.Len(t, route.Stops[0].Incidents, 1)
	require.Equal(t, 1, route.Stops[0].Incidents[0].Quantity) // defaulted
	require.NotEmpty(t, route.Stops[0].Incidents[0].ID)

	_, err = svc.AddIncident(ctx, route.ID, 0, IncidentInput{Type: "explosion"})
	require.True(t, IsValidation(err))

	incidentID := route.Stops[0].Incidents[0].ID
	_, err = svc.CompleteStop(ctx, route.ID, 0, "10:15")
	require.NoError(t, err)

	_, err = svc.AddIncident(ctx, route.ID, 0, IncidentInput{Type: domain.IncidentOther})
	require.True(t, IsValidation(err))
	_, err = svc.RemoveIncident(ctx, route.ID, 0, incidentID)
	require.True(t, IsValidation(err))
}

func TestRemoveIncident(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	route, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	route, err = svc.AddIncident(ctx, route.ID, 1, IncidentInput{Type: domain.IncidentRefusal, Quantity: 2})
	require.NoError(t, err)

	route, err = svc.RemoveIncident(ctx, route.ID, 1, route.Stops[1].Incidents[0].ID)
	require.NoError(t, err)
	require.Empty(t, route.Stops[1].Incidents)

	_, err = svc.RemoveIncident(ctx, route.ID, 1, "missing-token")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClose_RequiresEveryStopCompleted(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	// All permutations of one incomplete stop out of two.
	for incomplete := 0; incomplete < 2; incomplete++ {
		route, err := svc.Create(ctx, validCreateInput())
		require.NoError(t, err)

		for pos := 0; pos < 2; pos++ {
			if pos == incomplete {
				continue
			}
			_, err = svc.CompleteStop(ctx, route.ID, pos, "10:00")
			require.NoError(t, err)
		}

		_, err = svc.Close(ctx, route.ID, 40180, "17:00")
		require.True(t, IsValidation(err), "stop %d left open", incomplete)

		// Unblock the slot for the next permutation.
		_, err = svc.CompleteStop(ctx, route.ID, incomplete, "10:30")
		require.NoError(t, err)
		_, err = svc.Close(ctx, route.ID, 40180, "17:00")
		require.NoError(t, err)
	}
}

func TestClose_ArrivalMustExceedDeparture(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)
	ctx := context.Background()

	route, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	for pos := 0; pos < 2; pos++ {
		_, err = svc.CompleteStop(ctx, route.ID, pos, "10:00")
		require.NoError(t, err)
	}

	_, err = svc.Close(ctx, route.ID, 40000, "17:00")
	require.True(t, IsValidation(err))
	require.Contains(t, err.Error(), "40000") // names the minimum

	_, err = svc.Close(ctx, route.ID, 39000, "17:00")
	require.True(t, IsValidation(err))
}

func TestClose_CompletesAndAdvancesOdometer(t *testing.T) {
	svc, _, vehicles, sync := newRouteFixture(t)
	ctx := context.Background()

	route, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	for pos := 0; pos < 2; pos++ {
		_, err = svc.CompleteStop(ctx, route.ID, pos, "10:00")
		require.NoError(t, err)
	}

	closed, err := svc.Close(ctx, route.ID, 40180, "17:00")
	require.NoError(t, err)
	require.Equal(t, domain.RouteCompleted, closed.Status)
	require.Equal(t, 40180, *closed.ArrivalKm)
	require.Equal(t, "17:00", *closed.ArrivalTime)

	v, err := vehicles.GetVehicle(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 40180, *v.OdometerKm)

	// Closing an already-completed route is rejected, the transition is
	// irreversible.
	_, err = svc.Close(ctx, route.ID, 40500, "18:00")
	require.True(t, IsValidation(err))

	// Active slot freed.
	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Nil(t, active)

	require.NotEmpty(t, sync.calls)
}

func TestRouteGet_NotFound(t *testing.T) {
	svc, _, _, _ := newRouteFixture(t)

	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRouteDelete_DispatchesRemoval(t *testing.T) {
	svc, _, _, sync := newRouteFixture(t)
	ctx := context.Background()

	route, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, route.ID))
	require.Contains(t, sync.calls, "remove:routes:1")

	require.ErrorIs(t, svc.Delete(ctx, route.ID), ErrNotFound)
}
