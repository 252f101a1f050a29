package domain

// TemplateStop pairs a city with a courier inside a route template.
type TemplateStop struct {
	CityID    int `json:"city_id"`
	CourierID int `json:"courier_id"`
}

// RouteTemplate is a reusable preset of vehicle plus ordered stops used to
// prefill a new route. Templates hold references only; names are resolved
// when the route is created.
type RouteTemplate struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	VehicleID   int            `json:"vehicle_id"`
	Stops       []TemplateStop `json:"stops"`
	CreatedAt   string         `json:"created_at"`
}
