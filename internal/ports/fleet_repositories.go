package ports

import (
	"context"

	"routelog/internal/domain"
)

// Port: a boundary for storing Refueling entities.
type RefuelingRepository interface {
	SaveRefueling(ctx context.Context, r *domain.Refueling) (int, error)
	// ListRefuelings returns the vehicle's refuelings, highest odometer first.
	ListRefuelings(ctx context.Context, vehicleID int) ([]*domain.Refueling, error)
	// ListRefuelingsPeriod returns refuelings with date in [from, to],
	// optionally restricted to one vehicle (vehicleID > 0).
	ListRefuelingsPeriod(ctx context.Context, from, to string, vehicleID int) ([]*domain.Refueling, error)
	// LatestRefueling returns the vehicle's refueling with the highest
	// odometer reading, or nil when the vehicle has none.
	LatestRefueling(ctx context.Context, vehicleID int) (*domain.Refueling, error)
	// RefuelingBelow returns the vehicle's refueling with the highest
	// odometer reading strictly below km, or nil when none qualifies.
	RefuelingBelow(ctx context.Context, vehicleID int, km int) (*domain.Refueling, error)
	DeleteRefueling(ctx context.Context, id int) error
}

// Port: a boundary for storing Maintenance entities.
type MaintenanceRepository interface {
	SaveMaintenance(ctx context.Context, m *domain.Maintenance) (int, error)
	// ListMaintenances returns the vehicle's maintenances, highest odometer first.
	ListMaintenances(ctx context.Context, vehicleID int) ([]*domain.Maintenance, error)
	ListMaintenancesPeriod(ctx context.Context, from, to string, vehicleID int) ([]*domain.Maintenance, error)
	// LatestMaintenance returns the vehicle's most recent maintenance by
	// odometer reading, or nil when the vehicle has none.
	LatestMaintenance(ctx context.Context, vehicleID int) (*domain.Maintenance, error)
	DeleteMaintenance(ctx context.Context, id int) error
}
