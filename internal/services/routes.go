package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"routelog/internal/domain"
	"routelog/internal/platform/obs"
	"routelog/internal/ports"
)

// RouteService is the route lifecycle engine: creation, per-stop
// completion, volume reconciliation, incident logging, closure.
//
// Every stop mutation loads the aggregate, edits it in memory and saves it
// whole, so the store never holds a partially updated route. Sync dispatch
// happens only after the local write committed and never affects the result.
type RouteService struct {
	Routes   ports.RouteRepository
	Vehicles ports.VehicleRepository
	Cities   ports.CityRepository
	Couriers ports.CourierRepository
	Sync     ports.SyncDispatcher
	Now      func() time.Time
}

func NewRouteService(
	routes ports.RouteRepository,
	vehicles ports.VehicleRepository,
	cities ports.CityRepository,
	couriers ports.CourierRepository,
	sync ports.SyncDispatcher,
) *RouteService {
	return &RouteService{
		Routes:   routes,
		Vehicles: vehicles,
		Cities:   cities,
		Couriers: couriers,
		Sync:     sync,
		Now:      time.Now,
	}
}

func (s *RouteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type CreateStopInput struct {
	CityID     int
	CourierID  int
	Dispatched int
}

type CreateRouteInput struct {
	Date          string
	VehicleID     int
	Driver        string
	DepartureKm   int
	DepartureTime string
	Stops         []CreateStopInput
}

// Create validates the input, snapshots city/courier/plate names and
// persists a new in-progress route. It refuses to start a second route while
// one is active; the storage layer's unique index backs the same rule
// against rapid double submission.
func (s *RouteService) Create(ctx context.Context, in CreateRouteInput) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "create route")(&err)

	if in.VehicleID <= 0 {
		return nil, validationf("vehicle_id", "vehicle is required")
	}
	if in.DepartureKm <= 0 {
		return nil, validationf("departure_km", "departure odometer must be positive")
	}
	if len(in.Stops) == 0 {
		return nil, validationf("stops", "at least one stop is required")
	}

	vehicle, err := s.Vehicles.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	if vehicle == nil {
		return nil, validationf("vehicle_id", "vehicle %d does not exist", in.VehicleID)
	}

	driver := in.Driver
	if driver == "" {
		driver = vehicle.Driver
	}
	if driver == "" {
		return nil, validationf("driver", "driver is required")
	}

	active, err := s.Routes.ActiveRoute(ctx)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	if active != nil {
		return nil, validationf("", "route %d is already in progress", active.ID)
	}

	now := s.now()
	date := in.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}
	departureTime := in.DepartureTime
	if departureTime == "" {
		departureTime = now.Format("15:04")
	}

	stops := make([]domain.RouteStop, 0, len(in.Stops))
	for i, st := range in.Stops {
		if st.Dispatched <= 0 {
			return nil, validationf("stops", "stop %d: dispatched volumes must be positive", i+1)
		}

		city, err := s.Cities.GetCity(ctx, st.CityID)
		if err != nil {
			return nil, fmt.Errorf("create route: stop %d: %w", i+1, err)
		}
		if city == nil {
			return nil, validationf("stops", "stop %d: city %d does not exist", i+1, st.CityID)
		}

		courier, err := s.Couriers.GetCourier(ctx, st.CourierID)
		if err != nil {
			return nil, fmt.Errorf("create route: stop %d: %w", i+1, err)
		}
		if courier == nil {
			return nil, validationf("stops", "stop %d: courier %d does not exist", i+1, st.CourierID)
		}

		stops = append(stops, domain.RouteStop{
			CityID:      city.ID,
			CityName:    city.Name,
			CourierID:   courier.ID,
			CourierName: courier.Name,
			Dispatched:  st.Dispatched,
			Incidents:   []domain.Incident{},
		})
	}

	route := &domain.Route{
		Date:          date,
		VehicleID:     vehicle.ID,
		Plate:         vehicle.Plate,
		Driver:        driver,
		DepartureKm:   in.DepartureKm,
		DepartureTime: departureTime,
		Status:        domain.RouteInProgress,
		Stops:         stops,
		CreatedAt:     now.UTC().Format(time.RFC3339),
	}

	if _, err := s.Routes.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	s.dispatchUpsert(ctx, route)
	return route, nil
}

// CompleteStop marks the stop done and stamps its completion time.
// Completing a stop twice is rejected, keeping the original stamp stable.
func (s *RouteService) CompleteStop(ctx context.Context, routeID, pos int, at string) (*domain.Route, error) {
	route, stop, err := s.openStop(ctx, routeID, pos)
	if err != nil {
		return nil, err
	}
	if stop.Completed {
		return nil, validationf("", "stop %d is already completed", pos+1)
	}

	if at == "" {
		at = s.now().Format("15:04")
	}
	stop.Completed = true
	stop.CompletedAt = &at

	if _, err := s.Routes.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("complete stop: %w", err)
	}

	s.dispatchUpsert(ctx, route)
	return route, nil
}

// UpdateStopVolumes reconciles delivered/returned counts on a stop that has
// not been completed yet. Completed stops are frozen.
func (s *RouteService) UpdateStopVolumes(ctx context.Context, routeID, pos int, delivered, returned *int) (*domain.Route, error) {
	route, stop, err := s.openStop(ctx, routeID, pos)
	if err != nil {
		return nil, err
	}
	if stop.Completed {
		return nil, validationf("", "stop %d is completed; volumes are frozen", pos+1)
	}

	if delivered != nil {
		if *delivered < 0 {
			return nil, validationf("delivered", "delivered volumes cannot be negative")
		}
		stop.Delivered = delivered
	}
	if returned != nil {
		if *returned < 0 {
			return nil, validationf("returned", "returned volumes cannot be negative")
		}
		stop.Returned = returned
	}

	if _, err := s.Routes.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("update stop volumes: %w", err)
	}

	s.dispatchUpsert(ctx, route)
	return route, nil
}

type IncidentInput struct {
	Type        domain.IncidentType
	Description string
	Quantity    int
}

// AddIncident records an exception against a stop. Incidents freeze along
// with the rest of the stop once it is completed.
func (s *RouteService) AddIncident(ctx context.Context, routeID, pos int, in IncidentInput) (*domain.Route, error) {
	route, stop, err := s.openStop(ctx, routeID, pos)
	if err != nil {
		return nil, err
	}
	if stop.Completed {
		return nil, validationf("", "stop %d is completed; incidents are frozen", pos+1)
	}

	if !domain.ValidIncidentType(in.Type) {
		return nil, validationf("type", "unknown incident type %q", in.Type)
	}
	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	stop.Incidents = append(stop.Incidents, domain.Incident{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Description: in.Description,
		Quantity:    quantity,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
	})

	if _, err := s.Routes.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("add incident: %w", err)
	}

	s.dispatchUpsert(ctx, route)
	return route, nil
}

// RemoveIncident deletes one incident from an open stop by its token.
func (s *RouteService) RemoveIncident(ctx context.Context, routeID, pos int, incidentID string) (*domain.Route, error) {
	route, stop, err := s.openStop(ctx, routeID, pos)
	if err != nil {
		return nil, err
	}
	if stop.Completed {
		return nil, validationf("", "stop %d is completed; incidents are frozen", pos+1)
	}

	kept := stop.Incidents[:0]
	removed := false
	for _, in := range stop.Incidents {
		if in.ID == incidentID {
			removed = true
			continue
		}
		kept = append(kept, in)
	}
	if !removed {
		return nil, fmt.Errorf("remove incident: incident %s: %w", incidentID, ErrNotFound)
	}
	stop.Incidents = kept

	if _, err := s.Routes.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("remove incident: %w", err)
	}

	s.dispatchUpsert(ctx, route)
	return route, nil
}

// Close finishes the route: every stop must be completed and the arrival
// odometer must exceed the departure reading. The transition to completed is
// irreversible. The vehicle's cached odometer advances afterwards as a
// separate statement; it is a cache, re-derivable from the logs.
func (s *RouteService) Close(ctx context.Context, routeID int, arrivalKm int, arrivalTime string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "close route")(&err)

	route, err := s.getInProgress(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if !route.AllStopsCompleted() {
		return nil, validationf("", "all stops must be completed before closing the route")
	}
	if arrivalKm <= route.DepartureKm {
		return nil, validationf("arrival_km", "arrival odometer must be greater than %d", route.DepartureKm)
	}

	if arrivalTime == "" {
		arrivalTime = s.now().Format("15:04")
	}
	route.ArrivalKm = &arrivalKm
	route.ArrivalTime = &arrivalTime
	route.Status = domain.RouteCompleted

	if _, err := s.Routes.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("close route: %w", err)
	}

	if err := s.Vehicles.AdvanceOdometer(ctx, route.VehicleID, arrivalKm); err != nil {
		return nil, fmt.Errorf("close route: %w", err)
	}

	s.dispatchUpsert(ctx, route)
	return route, nil
}

// Active returns the in-progress route, or nil when there is none.
func (s *RouteService) Active(ctx context.Context) (*domain.Route, error) {
	route, err := s.Routes.ActiveRoute(ctx)
	if err != nil {
		return nil, fmt.Errorf("active route: %w", err)
	}
	return route, nil
}

func (s *RouteService) Get(ctx context.Context, id int) (*domain.Route, error) {
	route, err := s.Routes.GetRoute(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	if route == nil {
		return nil, fmt.Errorf("get route: id=%d: %w", id, ErrNotFound)
	}
	return route, nil
}

func (s *RouteService) List(ctx context.Context, f ports.RouteFilter) ([]*domain.Route, error) {
	routes, err := s.Routes.ListRoutes(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

// Delete removes a route and announces the removal to the sync server.
func (s *RouteService) Delete(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Routes.DeleteRoute(ctx, id); err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	if s.Sync != nil {
		s.Sync.Remove(ctx, "routes", id)
	}
	return nil
}

func (s *RouteService) getInProgress(ctx context.Context, routeID int) (*domain.Route, error) {
	route, err := s.Get(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.Status != domain.RouteInProgress {
		return nil, validationf("", "route %d is already completed", routeID)
	}
	return route, nil
}

func (s *RouteService) openStop(ctx context.Context, routeID, pos int) (*domain.Route, *domain.RouteStop, error) {
	route, err := s.getInProgress(ctx, routeID)
	if err != nil {
		return nil, nil, err
	}
	if pos < 0 || pos >= len(route.Stops) {
		return nil, nil, validationf("position", "route %d has no stop %d", routeID, pos+1)
	}
	return route, &route.Stops[pos], nil
}

func (s *RouteService) dispatchUpsert(ctx context.Context, route *domain.Route) {
	if s.Sync != nil {
		s.Sync.Upsert(ctx, "routes", route)
	}
}
