package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"routelog/internal/domain"
	"routelog/internal/ports"
)

// In-memory fakes for the storage ports. They mimic the adapter contracts
// closely enough for engine tests: clones in and out, deterministic
// ordering, and the single-in-progress rule the unique index enforces.

func clone[T any](in *T) *T {
	b, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		panic(err)
	}
	return out
}

type fakeRouteRepo struct {
	routes map[int]*domain.Route
	nextID int
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{routes: make(map[int]*domain.Route), nextID: 1}
}

func (f *fakeRouteRepo) SaveRoute(_ context.Context, r *domain.Route) (int, error) {
	if r.Status == domain.RouteInProgress {
		for id, existing := range f.routes {
			if existing.Status == domain.RouteInProgress && id != r.ID {
				return 0, errors.New("save route: unique index violation: routes.status")
			}
		}
	}
	if r.ID == 0 {
		r.ID = f.nextID
		f.nextID++
	}
	f.routes[r.ID] = clone(r)
	return r.ID, nil
}

func (f *fakeRouteRepo) GetRoute(_ context.Context, id int) (*domain.Route, error) {
	r, ok := f.routes[id]
	if !ok {
		return nil, nil
	}
	return clone(r), nil
}

func (f *fakeRouteRepo) ListRoutes(_ context.Context, filter ports.RouteFilter) ([]*domain.Route, error) {
	out := make([]*domain.Route, 0, len(f.routes))
	for _, r := range f.routes {
		if filter.From != "" && r.Date < filter.From {
			continue
		}
		if filter.To != "" && r.Date > filter.To {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeRouteRepo) ActiveRoute(_ context.Context) (*domain.Route, error) {
	for _, r := range f.routes {
		if r.Status == domain.RouteInProgress {
			return clone(r), nil
		}
	}
	return nil, nil
}

func (f *fakeRouteRepo) DeleteRoute(_ context.Context, id int) error {
	delete(f.routes, id)
	return nil
}

type fakeVehicleRepo struct {
	vehicles map[int]*domain.Vehicle
	nextID   int
}

func newFakeVehicleRepo(vehicles ...*domain.Vehicle) *fakeVehicleRepo {
	f := &fakeVehicleRepo{vehicles: make(map[int]*domain.Vehicle), nextID: 1}
	for _, v := range vehicles {
		_, _ = f.SaveVehicle(context.Background(), v)
	}
	return f
}

func (f *fakeVehicleRepo) SaveVehicle(_ context.Context, v *domain.Vehicle) (int, error) {
	if v.ID == 0 {
		v.ID = f.nextID
		f.nextID++
	} else if v.ID >= f.nextID {
		f.nextID = v.ID + 1
	}
	f.vehicles[v.ID] = clone(v)
	return v.ID, nil
}

func (f *fakeVehicleRepo) GetVehicle(_ context.Context, id int) (*domain.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func (f *fakeVehicleRepo) ListVehicles(_ context.Context) ([]*domain.Vehicle, error) {
	out := make([]*domain.Vehicle, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		out = append(out, clone(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (f *fakeVehicleRepo) DeleteVehicle(_ context.Context, id int) error {
	delete(f.vehicles, id)
	return nil
}

func (f *fakeVehicleRepo) AdvanceOdometer(_ context.Context, id int, km int) error {
	v, ok := f.vehicles[id]
	if !ok {
		return fmt.Errorf("vehicle %d not found", id)
	}
	if v.OdometerKm == nil || *v.OdometerKm < km {
		v.OdometerKm = &km
	}
	return nil
}

type fakeCityRepo struct {
	cities map[int]*domain.City
	nextID int
}

func newFakeCityRepo(cities ...*domain.City) *fakeCityRepo {
	f := &fakeCityRepo{cities: make(map[int]*domain.City), nextID: 1}
	for _, c := range cities {
		_, _ = f.SaveCity(context.Background(), c)
	}
	return f
}

func (f *fakeCityRepo) SaveCity(_ context.Context, c *domain.City) (int, error) {
	if c.ID == 0 {
		c.ID = f.nextID
		f.nextID++
	} else if c.ID >= f.nextID {
		f.nextID = c.ID + 1
	}
	f.cities[c.ID] = clone(c)
	return c.ID, nil
}

func (f *fakeCityRepo) GetCity(_ context.Context, id int) (*domain.City, error) {
	c, ok := f.cities[id]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (f *fakeCityRepo) ListCities(_ context.Context) ([]*domain.City, error) {
	out := make([]*domain.City, 0, len(f.cities))
	for _, c := range f.cities {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCityRepo) DeleteCity(_ context.Context, id int) error {
	delete(f.cities, id)
	return nil
}

type fakeCourierRepo struct {
	couriers map[int]*domain.Courier
	nextID   int
}

func newFakeCourierRepo(couriers ...*domain.Courier) *fakeCourierRepo {
	f := &fakeCourierRepo{couriers: make(map[int]*domain.Courier), nextID: 1}
	for _, c := range couriers {
		_, _ = f.SaveCourier(context.Background(), c)
	}
	return f
}

func (f *fakeCourierRepo) SaveCourier(_ context.Context, c *domain.Courier) (int, error) {
	if c.ID == 0 {
		c.ID = f.nextID
		f.nextID++
	} else if c.ID >= f.nextID {
		f.nextID = c.ID + 1
	}
	f.couriers[c.ID] = clone(c)
	return c.ID, nil
}

func (f *fakeCourierRepo) GetCourier(_ context.Context, id int) (*domain.Courier, error) {
	c, ok := f.couriers[id]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (f *fakeCourierRepo) ListCouriers(_ context.Context) ([]*domain.Courier, error) {
	out := make([]*domain.Courier, 0, len(f.couriers))
	for _, c := range f.couriers {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCourierRepo) DeleteCourier(_ context.Context, id int) error {
	delete(f.couriers, id)
	return nil
}

type fakeRefuelingRepo struct {
	records []*domain.Refueling
	nextID  int
}

func newFakeRefuelingRepo() *fakeRefuelingRepo {
	return &fakeRefuelingRepo{nextID: 1}
}

func (f *fakeRefuelingRepo) SaveRefueling(_ context.Context, r *domain.Refueling) (int, error) {
	r.ID = f.nextID
	f.nextID++
	f.records = append(f.records, clone(r))
	return r.ID, nil
}

func (f *fakeRefuelingRepo) ListRefuelings(_ context.Context, vehicleID int) ([]*domain.Refueling, error) {
	out := make([]*domain.Refueling, 0, len(f.records))
	for _, r := range f.records {
		if r.VehicleID == vehicleID {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OdometerKm > out[j].OdometerKm })
	return out, nil
}

func (f *fakeRefuelingRepo) ListRefuelingsPeriod(_ context.Context, from, to string, vehicleID int) ([]*domain.Refueling, error) {
	out := make([]*domain.Refueling, 0, len(f.records))
	for _, r := range f.records {
		if r.Date < from || r.Date > to {
			continue
		}
		if vehicleID > 0 && r.VehicleID != vehicleID {
			continue
		}
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OdometerKm > out[j].OdometerKm })
	return out, nil
}

func (f *fakeRefuelingRepo) LatestRefueling(ctx context.Context, vehicleID int) (*domain.Refueling, error) {
	all, _ := f.ListRefuelings(ctx, vehicleID)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (f *fakeRefuelingRepo) RefuelingBelow(ctx context.Context, vehicleID int, km int) (*domain.Refueling, error) {
	all, _ := f.ListRefuelings(ctx, vehicleID)
	for _, r := range all {
		if r.OdometerKm < km {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRefuelingRepo) DeleteRefueling(_ context.Context, id int) error {
	kept := f.records[:0]
	for _, r := range f.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

type fakeMaintenanceRepo struct {
	records []*domain.Maintenance
	nextID  int
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{nextID: 1}
}

func (f *fakeMaintenanceRepo) SaveMaintenance(_ context.Context, m *domain.Maintenance) (int, error) {
	m.ID = f.nextID
	f.nextID++
	f.records = append(f.records, clone(m))
	return m.ID, nil
}

func (f *fakeMaintenanceRepo) ListMaintenances(_ context.Context, vehicleID int) ([]*domain.Maintenance, error) {
	out := make([]*domain.Maintenance, 0, len(f.records))
	for _, m := range f.records {
		if m.VehicleID == vehicleID {
			out = append(out, clone(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OdometerKm > out[j].OdometerKm })
	return out, nil
}

func (f *fakeMaintenanceRepo) ListMaintenancesPeriod(_ context.Context, from, to string, vehicleID int) ([]*domain.Maintenance, error) {
	out := make([]*domain.Maintenance, 0, len(f.records))
	for _, m := range f.records {
		if m.Date < from || m.Date > to {
			continue
		}
		if vehicleID > 0 && m.VehicleID != vehicleID {
			continue
		}
		out = append(out, clone(m))
	}
	return out, nil
}

func (f *fakeMaintenanceRepo) LatestMaintenance(ctx context.Context, vehicleID int) (*domain.Maintenance, error) {
	all, _ := f.ListMaintenances(ctx, vehicleID)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (f *fakeMaintenanceRepo) DeleteMaintenance(_ context.Context, id int) error {
	kept := f.records[:0]
	for _, m := range f.records {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	f.records = kept
	return nil
}

type fakeSync struct {
	calls []string
}

func (f *fakeSync) Upsert(_ context.Context, resource string, _ any) {
	f.calls = append(f.calls, "upsert:"+resource)
}

func (f *fakeSync) Remove(_ context.Context, resource string, id int) {
	f.calls = append(f.calls, fmt.Sprintf("remove:%s:%d", resource, id))
}

type fakeCache struct {
	values map[string][]byte
	gets   int
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.gets++
	b, ok := f.values[key]
	return b, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.sets++
	f.values[key] = value
	return nil
}

// fixedNow pins service clocks for deterministic dates and times.
func fixedNow(value string) func() time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}
