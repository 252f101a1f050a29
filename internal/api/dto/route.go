package dto

import "routelog/internal/domain"

type CreateStopRequest struct {
	CityID     int `json:"city_id"`
	CourierID  int `json:"courier_id"`
	Dispatched int `json:"dispatched"`
}

type CreateRouteRequest struct {
	Date          string              `json:"date"`
	VehicleID     int                 `json:"vehicle_id"`
	Driver        string              `json:"driver"`
	DepartureKm   int                 `json:"departure_km"`
	DepartureTime string              `json:"departure_time"`
	Stops         []CreateStopRequest `json:"stops"`
}

// CompleteStopRequest closes out a single stop; an empty time means "now".
type CompleteStopRequest struct {
	Time string `json:"time"`
}

type StopVolumesRequest struct {
	Delivered *int `json:"delivered"`
	Returned  *int `json:"returned"`
}

type IncidentRequest struct {
	Type        domain.IncidentType `json:"type"`
	Description string              `json:"description"`
	Quantity    int                 `json:"quantity"`
}

type CloseRouteRequest struct {
	ArrivalKm   int    `json:"arrival_km"`
	ArrivalTime string `json:"arrival_time"`
}

// ShareResponse carries a preformatted message and its wa.me link.
type ShareResponse struct {
	Text string `json:"text"`
	Link string `json:"link"`
}
