package ports

import (
	"context"

	"routelog/internal/domain"
)

// Port: a boundary for storing City entities.
// Save inserts when ID is zero and updates otherwise, returning the ID.
type CityRepository interface {
	SaveCity(ctx context.Context, c *domain.City) (int, error)
	GetCity(ctx context.Context, id int) (*domain.City, error)
	// ListCities returns all cities ordered by name.
	ListCities(ctx context.Context) ([]*domain.City, error)
	DeleteCity(ctx context.Context, id int) error
}

// Port: a boundary for storing Courier entities.
type CourierRepository interface {
	SaveCourier(ctx context.Context, c *domain.Courier) (int, error)
	GetCourier(ctx context.Context, id int) (*domain.Courier, error)
	// ListCouriers returns all couriers ordered by name.
	ListCouriers(ctx context.Context) ([]*domain.Courier, error)
	DeleteCourier(ctx context.Context, id int) error
}

// Port: a boundary for storing Vehicle entities.
type VehicleRepository interface {
	SaveVehicle(ctx context.Context, v *domain.Vehicle) (int, error)
	GetVehicle(ctx context.Context, id int) (*domain.Vehicle, error)
	// ListVehicles returns all vehicles ordered by plate.
	ListVehicles(ctx context.Context) ([]*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, id int) error
	// AdvanceOdometer raises the vehicle's cached reading to km.
	// Lower or equal readings leave the stored value untouched.
	AdvanceOdometer(ctx context.Context, id int, km int) error
}

// Port: a boundary for storing RouteTemplate entities.
type TemplateRepository interface {
	SaveTemplate(ctx context.Context, t *domain.RouteTemplate) (int, error)
	GetTemplate(ctx context.Context, id int) (*domain.RouteTemplate, error)
	// ListTemplates returns all templates ordered by name.
	ListTemplates(ctx context.Context) ([]*domain.RouteTemplate, error)
	DeleteTemplate(ctx context.Context, id int) error
}
