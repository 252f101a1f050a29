package services

import (
	"fmt"
	"strconv"
	"strings"

	"routelog/internal/domain"
)

// Derived-metrics calculator: pure functions over stored entities.
// Nothing here touches a repository; callers fetch, these compute.

// DurationSentinel is rendered when a duration cannot be computed: missing
// arrival time, unparseable clock values, or a non-positive difference.
// Routes are same-calendar-day; a midnight-crossing route lands here too and
// is excluded from period totals.
const DurationSentinel = "—"

// DeriveFuelMetrics fills r's derived fields from the prior fill of the same
// vehicle (the one with the highest odometer strictly below r's). The
// efficiency divides the interval distance by the PRIOR fill's liters, since
// that is the fuel burned to cover the interval; cost per km uses this
// fill's total. With no qualifying prior record the fields stay unset.
func DeriveFuelMetrics(r *domain.Refueling, prior *domain.Refueling) {
	if prior == nil {
		return
	}

	distance := r.OdometerKm - prior.OdometerKm
	if distance <= 0 || prior.Liters <= 0 {
		return
	}

	priorKm := prior.OdometerKm
	kmPerLiter := float64(distance) / prior.Liters
	costPerKm := r.TotalCost / float64(distance)

	r.PriorKm = &priorKm
	r.KmPerLiter = &kmPerLiter
	r.CostPerKm = &costPerKm
}

// MaintenanceDue reports whether the vehicle's next service is overdue.
// vehicleKm is the vehicle's cached odometer; when absent the maintenance's
// own reading stands in. today is a YYYY-MM-DD string; the ISO layout makes
// plain string comparison equivalent to date comparison. Both thresholds use
// >= semantics: due the moment the limit is reached.
func MaintenanceDue(last *domain.Maintenance, vehicleKm *int, today string) bool {
	if last == nil {
		return false
	}

	currentKm := last.OdometerKm
	if vehicleKm != nil {
		currentKm = *vehicleKm
	}

	if last.NextDueKm != nil && currentKm >= *last.NextDueKm {
		return true
	}
	if last.NextDueDate != nil && *last.NextDueDate != "" && today >= *last.NextDueDate {
		return true
	}
	return false
}

// DurationMinutes returns the minutes between two same-day HH:MM clock
// values, with ok=false for missing, unparseable, or non-positive spans.
func DurationMinutes(departure, arrival string) (int, bool) {
	dep, okDep := parseClock(departure)
	arr, okArr := parseClock(arrival)
	if !okDep || !okArr {
		return 0, false
	}

	minutes := arr - dep
	if minutes <= 0 {
		return 0, false
	}
	return minutes, true
}

// FormatDuration renders the span between departure and arrival as
// "Xh Ymin" or "Ymin", falling back to the sentinel.
func FormatDuration(departure, arrival string) string {
	minutes, ok := DurationMinutes(departure, arrival)
	if !ok {
		return DurationSentinel
	}

	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

func parseClock(v string) (int, bool) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// RouteTotals aggregates one route's volumes, incidents and distance.
type RouteTotals struct {
	Dispatched int  `json:"dispatched"`
	Delivered  int  `json:"delivered"`
	Returned   int  `json:"returned"`
	Incidents  int  `json:"incidents"`
	DistanceKm *int `json:"distance_km,omitempty"`
}

// ReturnRatePct returns returned volumes as a percentage of dispatched.
func (t RouteTotals) ReturnRatePct() float64 {
	if t.Dispatched == 0 {
		return 0
	}
	return float64(t.Returned) / float64(t.Dispatched) * 100
}

// ComputeRouteTotals sums a single route. Delivered falls back to
// dispatched minus returned on completed stops and counts zero on open ones.
func ComputeRouteTotals(r *domain.Route) RouteTotals {
	t := RouteTotals{}
	for _, s := range r.Stops {
		t.Dispatched += s.Dispatched
		t.Delivered += s.DeliveredVolumes()
		t.Returned += s.ReturnedVolumes()
		t.Incidents += s.IncidentCount()
	}
	if km, ok := r.DistanceKm(); ok {
		t.DistanceKm = &km
	}
	return t
}

// ComputePeriodTotals sums a set of routes. Distance accumulates only over
// routes with both odometer readings.
func ComputePeriodTotals(routes []*domain.Route) RouteTotals {
	total := RouteTotals{}
	distance := 0
	measured := false

	for _, r := range routes {
		t := ComputeRouteTotals(r)
		total.Dispatched += t.Dispatched
		total.Delivered += t.Delivered
		total.Returned += t.Returned
		total.Incidents += t.Incidents
		if t.DistanceKm != nil {
			distance += *t.DistanceKm
			measured = true
		}
	}

	if measured {
		total.DistanceKm = &distance
	}
	return total
}
