package domain

// City is a delivery destination registered by the operator.
// DistanceKm is the operator's estimate from the base, used only for display.
type City struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	State      string   `json:"state"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	CreatedAt  string   `json:"created_at"`
}
