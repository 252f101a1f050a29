package domain

// RouteStatus is the lifecycle state of a route.
// A route is created in progress and moves to completed exactly once;
// there is no cancelled or reopened state.
type RouteStatus string

const (
	RouteInProgress RouteStatus = "in_progress"
	RouteCompleted  RouteStatus = "completed"
)

// IncidentType categorizes an exception recorded against a stop.
type IncidentType string

const (
	IncidentRefusal        IncidentType = "customer_refusal"
	IncidentDuplicate      IncidentType = "duplicate_delivery"
	IncidentAddressUnknown IncidentType = "address_not_found"
	IncidentCustomerAbsent IncidentType = "customer_absent"
	IncidentDamaged        IncidentType = "damaged_product"
	IncidentNotInSystem    IncidentType = "product_not_in_system"
	IncidentWrongRoute     IncidentType = "wrong_route"
	IncidentOther          IncidentType = "other"
)

// IncidentTypes lists every valid incident category.
var IncidentTypes = []IncidentType{
	IncidentRefusal,
	IncidentDuplicate,
	IncidentAddressUnknown,
	IncidentCustomerAbsent,
	IncidentDamaged,
	IncidentNotInSystem,
	IncidentWrongRoute,
	IncidentOther,
}

// ValidIncidentType reports whether t is one of the enumerated categories.
func ValidIncidentType(t IncidentType) bool {
	for _, v := range IncidentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Incident is an exception recorded against a stop. ID is a client-generated
// token unique within the stop's incident list.
type Incident struct {
	ID          string       `json:"id"`
	Type        IncidentType `json:"type"`
	Description string       `json:"description,omitempty"`
	Quantity    int          `json:"quantity"`
	CreatedAt   string       `json:"created_at"`
}

// RouteStop is one city+courier leg of a route. City and courier names are
// snapshots taken at route creation and are immune to later renames.
// Delivered and Returned stay unset until the operator reconciles them.
type RouteStop struct {
	CityID      int        `json:"city_id"`
	CityName    string     `json:"city_name"`
	CourierID   int        `json:"courier_id"`
	CourierName string     `json:"courier_name"`
	Dispatched  int        `json:"dispatched"`
	Delivered   *int       `json:"delivered,omitempty"`
	Returned    *int       `json:"returned,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *string    `json:"completed_at,omitempty"`
	Incidents   []Incident `json:"incidents"`
}

// Route is a single vehicle dispatch covering one or more stops, from
// departure to arrival. Plate is denormalized from the vehicle at creation.
// Dates are YYYY-MM-DD strings, times HH:MM, matching the stored form.
type Route struct {
	ID            int         `json:"id"`
	Date          string      `json:"date"`
	VehicleID     int         `json:"vehicle_id"`
	Plate         string      `json:"plate"`
	Driver        string      `json:"driver"`
	DepartureKm   int         `json:"departure_km"`
	DepartureTime string      `json:"departure_time"`
	ArrivalKm     *int        `json:"arrival_km,omitempty"`
	ArrivalTime   *string     `json:"arrival_time,omitempty"`
	Status        RouteStatus `json:"status"`
	Stops         []RouteStop `json:"stops"`
	CreatedAt     string      `json:"created_at"`
}

// AllStopsCompleted reports whether every stop on the route is done.
func (r *Route) AllStopsCompleted() bool {
	for _, s := range r.Stops {
		if !s.Completed {
			return false
		}
	}
	return true
}

// DistanceKm returns arrival minus departure odometer, or false when the
// route has no arrival reading yet.
func (r *Route) DistanceKm() (int, bool) {
	if r.ArrivalKm == nil {
		return 0, false
	}
	return *r.ArrivalKm - r.DepartureKm, true
}

// DeliveredVolumes returns the stop's delivered count. When unset it falls
// back to dispatched minus returned for completed stops, and to zero for
// stops still open.
func (s *RouteStop) DeliveredVolumes() int {
	if s.Delivered != nil {
		return *s.Delivered
	}
	if !s.Completed {
		return 0
	}
	return s.Dispatched - s.ReturnedVolumes()
}

// ReturnedVolumes returns the stop's returned count, defaulting to zero.
func (s *RouteStop) ReturnedVolumes() int {
	if s.Returned == nil {
		return 0
	}
	return *s.Returned
}

// IncidentCount sums incident quantities across the stop.
func (s *RouteStop) IncidentCount() int {
	total := 0
	for _, in := range s.Incidents {
		q := in.Quantity
		if q <= 0 {
			q = 1
		}
		total += q
	}
	return total
}
