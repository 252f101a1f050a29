package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"routelog/internal/domain"
	"routelog/internal/ports"
)

// RegistryService is the CRUD surface for the reference entities: cities,
// couriers, vehicles and route templates. Saves are insert-or-update and
// every committed mutation of a synced resource is announced to the
// dispatcher after the fact.
type RegistryService struct {
	Cities    ports.CityRepository
	Couriers  ports.CourierRepository
	Vehicles  ports.VehicleRepository
	Templates ports.TemplateRepository
	Sync      ports.SyncDispatcher
	Now       func() time.Time
}

func NewRegistryService(
	cities ports.CityRepository,
	couriers ports.CourierRepository,
	vehicles ports.VehicleRepository,
	templates ports.TemplateRepository,
	sync ports.SyncDispatcher,
) *RegistryService {
	return &RegistryService{
		Cities:    cities,
		Couriers:  couriers,
		Vehicles:  vehicles,
		Templates: templates,
		Sync:      sync,
		Now:       time.Now,
	}
}

func (s *RegistryService) createdAt() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format(time.RFC3339)
}

func (s *RegistryService) SaveCity(ctx context.Context, c *domain.City) (*domain.City, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, validationf("name", "name is required")
	}
	if strings.TrimSpace(c.State) == "" {
		return nil, validationf("state", "state is required")
	}
	if c.ID == 0 {
		c.CreatedAt = s.createdAt()
	}

	if _, err := s.Cities.SaveCity(ctx, c); err != nil {
		return nil, fmt.Errorf("save city: %w", err)
	}
	if s.Sync != nil {
		s.Sync.Upsert(ctx, "cities", c)
	}
	return c, nil
}

func (s *RegistryService) ListCities(ctx context.Context) ([]*domain.City, error) {
	return s.Cities.ListCities(ctx)
}

func (s *RegistryService) DeleteCity(ctx context.Context, id int) error {
	existing, err := s.Cities.GetCity(ctx, id)
	if err != nil {
		return fmt.Errorf("delete city: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("delete city: id=%d: %w", id, ErrNotFound)
	}

	if err := s.Cities.DeleteCity(ctx, id); err != nil {
		return fmt.Errorf("delete city: %w", err)
	}
	if s.Sync != nil {
		s.Sync.Remove(ctx, "cities", id)
	}
	return nil
}

func (s *RegistryService) SaveCourier(ctx context.Context, c *domain.Courier) (*domain.Courier, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, validationf("name", "name is required")
	}
	if c.CityIDs == nil {
		c.CityIDs = []int{}
	}
	if c.ID == 0 {
		c.CreatedAt = s.createdAt()
	}

	if _, err := s.Couriers.SaveCourier(ctx, c); err != nil {
		return nil, fmt.Errorf("save courier: %w", err)
	}
	if s.Sync != nil {
		s.Sync.Upsert(ctx, "couriers", c)
	}
	return c, nil
}

func (s *RegistryService) ListCouriers(ctx context.Context) ([]*domain.Courier, error) {
	return s.Couriers.ListCouriers(ctx)
}

func (s *RegistryService) DeleteCourier(ctx context.Context, id int) error {
	existing, err := s.Couriers.GetCourier(ctx, id)
	if err != nil {
		return fmt.Errorf("delete courier: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("delete courier: id=%d: %w", id, ErrNotFound)
	}

	if err := s.Couriers.DeleteCourier(ctx, id); err != nil {
		return fmt.Errorf("delete courier: %w", err)
	}
	if s.Sync != nil {
		s.Sync.Remove(ctx, "couriers", id)
	}
	return nil
}

func (s *RegistryService) SaveVehicle(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	if strings.TrimSpace(v.Plate) == "" {
		return nil, validationf("plate", "plate is required")
	}
	if strings.TrimSpace(v.Model) == "" {
		return nil, validationf("model", "model is required")
	}
	if v.ID == 0 {
		v.CreatedAt = s.createdAt()
	}

	if _, err := s.Vehicles.SaveVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("save vehicle: %w", err)
	}
	if s.Sync != nil {
		s.Sync.Upsert(ctx, "vehicles", v)
	}
	return v, nil
}

func (s *RegistryService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.Vehicles.ListVehicles(ctx)
}

func (s *RegistryService) GetVehicle(ctx context.Context, id int) (*domain.Vehicle, error) {
	v, err := s.Vehicles.GetVehicle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("get vehicle: id=%d: %w", id, ErrNotFound)
	}
	return v, nil
}

func (s *RegistryService) DeleteVehicle(ctx context.Context, id int) error {
	existing, err := s.Vehicles.GetVehicle(ctx, id)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("delete vehicle: id=%d: %w", id, ErrNotFound)
	}

	if err := s.Vehicles.DeleteVehicle(ctx, id); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if s.Sync != nil {
		s.Sync.Remove(ctx, "vehicles", id)
	}
	return nil
}

// Templates are a local convenience and are not propagated to the sync
// server; only cities, couriers, vehicles and routes travel.
func (s *RegistryService) SaveTemplate(ctx context.Context, t *domain.RouteTemplate) (*domain.RouteTemplate, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, validationf("name", "name is required")
	}
	if t.VehicleID <= 0 {
		return nil, validationf("vehicle_id", "vehicle is required")
	}
	if len(t.Stops) == 0 {
		return nil, validationf("stops", "at least one stop is required")
	}
	if t.ID == 0 {
		t.CreatedAt = s.createdAt()
	}

	if _, err := s.Templates.SaveTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	return t, nil
}

func (s *RegistryService) ListTemplates(ctx context.Context) ([]*domain.RouteTemplate, error) {
	return s.Templates.ListTemplates(ctx)
}

func (s *RegistryService) GetTemplate(ctx context.Context, id int) (*domain.RouteTemplate, error) {
	t, err := s.Templates.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("get template: id=%d: %w", id, ErrNotFound)
	}
	return t, nil
}

func (s *RegistryService) DeleteTemplate(ctx context.Context, id int) error {
	existing, err := s.Templates.GetTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("delete template: id=%d: %w", id, ErrNotFound)
	}

	if err := s.Templates.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
