package dto

import "routelog/internal/domain"

// Registry requests are upserts: a zero id inserts, a known id updates.

type CityRequest struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	State      string   `json:"state"`
	DistanceKm *float64 `json:"distance_km"`
}

func (r CityRequest) ToDomain() *domain.City {
	return &domain.City{ID: r.ID, Name: r.Name, State: r.State, DistanceKm: r.DistanceKm}
}

type CourierRequest struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	CityIDs []int  `json:"city_ids"`
	Active  *bool  `json:"active"`
}

func (r CourierRequest) ToDomain() *domain.Courier {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &domain.Courier{ID: r.ID, Name: r.Name, Phone: r.Phone, CityIDs: r.CityIDs, Active: active}
}

type VehicleRequest struct {
	ID         int    `json:"id"`
	Plate      string `json:"plate"`
	Model      string `json:"model"`
	Driver     string `json:"driver"`
	OdometerKm *int   `json:"odometer_km"`
	Active     *bool  `json:"active"`
}

func (r VehicleRequest) ToDomain() *domain.Vehicle {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &domain.Vehicle{ID: r.ID, Plate: r.Plate, Model: r.Model, Driver: r.Driver, OdometerKm: r.OdometerKm, Active: active}
}

type TemplateStopRequest struct {
	CityID    int `json:"city_id"`
	CourierID int `json:"courier_id"`
}

type TemplateRequest struct {
	ID          int                   `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	VehicleID   int                   `json:"vehicle_id"`
	Stops       []TemplateStopRequest `json:"stops"`
}

func (r TemplateRequest) ToDomain() *domain.RouteTemplate {
	stops := make([]domain.TemplateStop, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, domain.TemplateStop{CityID: s.CityID, CourierID: s.CourierID})
	}
	return &domain.RouteTemplate{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		VehicleID:   r.VehicleID,
		Stops:       stops,
	}
}
