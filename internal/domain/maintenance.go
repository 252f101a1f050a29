package domain

// ReplacedItem enumerates the service categories a maintenance can cover.
type ReplacedItem string

const (
	ItemEngineOil       ReplacedItem = "engine_oil"
	ItemTransmissionOil ReplacedItem = "transmission_oil"
	ItemDifferentialOil ReplacedItem = "differential_oil"
	ItemOilFilter       ReplacedItem = "oil_filter"
	ItemAirFilter       ReplacedItem = "air_filter"
	ItemCabinFilter     ReplacedItem = "cabin_filter"
	ItemFuelFilter      ReplacedItem = "fuel_filter"
)

// ValidReplacedItem reports whether item is one of the seven categories.
func ValidReplacedItem(item ReplacedItem) bool {
	switch item {
	case ItemEngineOil, ItemTransmissionOil, ItemDifferentialOil,
		ItemOilFilter, ItemAirFilter, ItemCabinFilter, ItemFuelFilter:
		return true
	}
	return false
}

// Maintenance is a service event tied to a vehicle and odometer reading.
// NextDueKm and NextDueDate optionally schedule the next service by
// distance and/or calendar date; either, both, or neither may be set.
type Maintenance struct {
	ID            int            `json:"id"`
	VehicleID     int            `json:"vehicle_id"`
	Date          string         `json:"date"`
	OdometerKm    int            `json:"odometer_km"`
	OilType       string         `json:"oil_type,omitempty"`
	ReplacedItems []ReplacedItem `json:"replaced_items"`
	NextDueKm     *int           `json:"next_due_km,omitempty"`
	NextDueDate   *string        `json:"next_due_date,omitempty"`
	Note          string         `json:"note,omitempty"`
	CreatedAt     string         `json:"created_at"`
}
