package ports

import (
	"context"

	"routelog/internal/domain"
)

// RouteFilter narrows route listings. Empty fields match everything.
// From and To are inclusive YYYY-MM-DD bounds on the route date.
type RouteFilter struct {
	From   string
	To     string
	Status domain.RouteStatus
}

// Port: a boundary for storing Route aggregates.
// Save writes the route together with its stops and incidents in a single
// transaction; partial stop updates never reach the store.
type RouteRepository interface {
	SaveRoute(ctx context.Context, r *domain.Route) (int, error)
	GetRoute(ctx context.Context, id int) (*domain.Route, error)
	// ListRoutes returns matching routes ordered by creation, newest first.
	ListRoutes(ctx context.Context, f RouteFilter) ([]*domain.Route, error)
	// ActiveRoute returns the in-progress route, or nil when there is none.
	ActiveRoute(ctx context.Context) (*domain.Route, error)
	DeleteRoute(ctx context.Context, id int) error
}
