package domain

// FuelType enumerates the fuels a refueling can record.
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelEthanol  FuelType = "ethanol"
	FuelDiesel   FuelType = "diesel"
	FuelCNG      FuelType = "cng"
)

// ValidFuelType reports whether t is one of the enumerated fuels.
func ValidFuelType(t FuelType) bool {
	switch t {
	case FuelGasoline, FuelEthanol, FuelDiesel, FuelCNG:
		return true
	}
	return false
}

// Refueling is a fuel purchase tied to a vehicle and odometer reading.
//
// PriorKm, KmPerLiter and CostPerKm are derived once at save time from the
// previous fill of the same vehicle and stay nil when no qualifying prior
// record exists. KmPerLiter divides the interval distance by the PRIOR
// fill's liters (the fuel actually consumed to cover that interval), not by
// this fill's liters.
type Refueling struct {
	ID         int      `json:"id"`
	VehicleID  int      `json:"vehicle_id"`
	Date       string   `json:"date"`
	OdometerKm int      `json:"odometer_km"`
	Liters     float64  `json:"liters"`
	TotalCost  float64  `json:"total_cost"`
	FuelType   FuelType `json:"fuel_type"`
	Station    string   `json:"station,omitempty"`
	Note       string   `json:"note,omitempty"`
	PriorKm    *int     `json:"prior_km,omitempty"`
	KmPerLiter *float64 `json:"km_per_liter,omitempty"`
	CostPerKm  *float64 `json:"cost_per_km,omitempty"`
	CreatedAt  string   `json:"created_at"`
}
