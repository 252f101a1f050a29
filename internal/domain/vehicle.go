package domain

// Vehicle is a fleet vehicle. OdometerKm is a cached reading advanced as a
// side effect of saving refuelings and maintenances with a higher value; it
// never decreases and is always re-derivable from the log history.
// Inactive vehicles are hidden from operational pickers but kept in history.
type Vehicle struct {
	ID         int    `json:"id"`
	Plate      string `json:"plate"`
	Model      string `json:"model"`
	Driver     string `json:"driver,omitempty"`
	Active     bool   `json:"active"`
	OdometerKm *int   `json:"odometer_km,omitempty"`
	CreatedAt  string `json:"created_at"`
}
