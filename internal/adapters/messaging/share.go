package messaging

import (
	"fmt"
	"net/url"
	"strings"

	"routelog/internal/domain"
)

// Share-text builders. These render a committed mutation as plain text for
// hand-off to an external share mechanism; they never touch storage and are
// invoked only after the local write succeeded.

var incidentLabels = map[domain.IncidentType]string{
	domain.IncidentRefusal:        "customer refusal",
	domain.IncidentDuplicate:      "duplicate delivery",
	domain.IncidentAddressUnknown: "address not found",
	domain.IncidentCustomerAbsent: "customer absent",
	domain.IncidentDamaged:        "damaged product",
	domain.IncidentNotInSystem:    "product not in system",
	domain.IncidentWrongRoute:     "wrong route",
	domain.IncidentOther:          "other",
}

// IncidentLabel returns the display name for an incident type.
func IncidentLabel(t domain.IncidentType) string {
	if label, ok := incidentLabels[t]; ok {
		return label
	}
	return string(t)
}

// RouteDeparture announces a freshly created route with its stop list.
func RouteDeparture(r *domain.Route) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚚 Route started — %s\n", r.Date)
	fmt.Fprintf(&b, "Vehicle: %s\n", r.Plate)
	fmt.Fprintf(&b, "Driver: %s\n", r.Driver)
	fmt.Fprintf(&b, "Departure: %s at %d km\n", r.DepartureTime, r.DepartureKm)
	fmt.Fprintf(&b, "Stops (%d):\n", len(r.Stops))
	for i, s := range r.Stops {
		fmt.Fprintf(&b, "%d. %s — %s (%d volumes)\n", i+1, s.CityName, s.CourierName, s.Dispatched)
	}

	return strings.TrimRight(b.String(), "\n")
}

// StopCompletion summarizes one completed stop and overall route progress.
func StopCompletion(r *domain.Route, pos int) string {
	s := r.Stops[pos]

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Stop completed: %s — %s\n", s.CityName, s.CourierName)
	if s.CompletedAt != nil {
		fmt.Fprintf(&b, "Time: %s\n", *s.CompletedAt)
	}
	fmt.Fprintf(&b, "Volumes: %d dispatched, %d delivered, %d returned\n",
		s.Dispatched, s.DeliveredVolumes(), s.ReturnedVolumes())

	for _, in := range s.Incidents {
		line := fmt.Sprintf("⚠️ %s", IncidentLabel(in.Type))
		if in.Quantity > 1 {
			line += fmt.Sprintf(" x%d", in.Quantity)
		}
		if in.Description != "" {
			line += ": " + in.Description
		}
		b.WriteString(line + "\n")
	}

	done := 0
	for _, st := range r.Stops {
		if st.Completed {
			done++
		}
	}
	fmt.Fprintf(&b, "Progress: %d/%d stops completed", done, len(r.Stops))

	return b.String()
}

// RouteClosure summarizes a closed route. Duration and mean consumption are
// computed by the caller; meanKmPerLiter stays nil when the vehicle has no
// measured fills yet.
func RouteClosure(r *domain.Route, duration string, meanKmPerLiter *float64, maintenanceDue bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🏁 Route finished — %s\n", r.Date)
	fmt.Fprintf(&b, "Vehicle: %s | Driver: %s\n", r.Plate, r.Driver)
	if km, ok := r.DistanceKm(); ok {
		fmt.Fprintf(&b, "Distance: %d km\n", km)
	}
	fmt.Fprintf(&b, "Duration: %s\n", duration)

	dispatched, delivered, returned := 0, 0, 0
	for _, s := range r.Stops {
		dispatched += s.Dispatched
		delivered += s.DeliveredVolumes()
		returned += s.ReturnedVolumes()
	}
	fmt.Fprintf(&b, "Volumes: %d dispatched, %d delivered, %d returned\n", dispatched, delivered, returned)

	for i, s := range r.Stops {
		mark := "✗"
		if s.Completed {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%s %d. %s — %s\n", mark, i+1, s.CityName, s.CourierName)
	}

	if meanKmPerLiter != nil {
		fmt.Fprintf(&b, "Average consumption: %.2f km/L\n", *meanKmPerLiter)
	}
	if maintenanceDue {
		b.WriteString("⚠️ Maintenance due for this vehicle\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// RefuelingText summarizes a saved refueling.
func RefuelingText(plate string, r *domain.Refueling) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⛽ Refueling — %s\n", r.Date)
	fmt.Fprintf(&b, "Vehicle: %s at %d km\n", plate, r.OdometerKm)
	fmt.Fprintf(&b, "%.2f L (%s) — R$ %.2f", r.Liters, r.FuelType, r.TotalCost)
	if r.KmPerLiter != nil {
		fmt.Fprintf(&b, "\nConsumption: %.2f km/L", *r.KmPerLiter)
	}
	if r.CostPerKm != nil {
		fmt.Fprintf(&b, "\nCost: R$ %.2f/km", *r.CostPerKm)
	}

	return b.String()
}

// MaintenanceText summarizes a saved maintenance.
func MaintenanceText(plate string, m *domain.Maintenance) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔧 Maintenance — %s\n", m.Date)
	fmt.Fprintf(&b, "Vehicle: %s at %d km\n", plate, m.OdometerKm)
	if m.OilType != "" {
		fmt.Fprintf(&b, "Oil: %s\n", m.OilType)
	}
	if len(m.ReplacedItems) > 0 {
		items := make([]string, 0, len(m.ReplacedItems))
		for _, item := range m.ReplacedItems {
			items = append(items, strings.ReplaceAll(string(item), "_", " "))
		}
		fmt.Fprintf(&b, "Replaced: %s\n", strings.Join(items, ", "))
	}
	if m.NextDueKm != nil {
		fmt.Fprintf(&b, "Next service: %d km\n", *m.NextDueKm)
	}
	if m.NextDueDate != nil {
		fmt.Fprintf(&b, "Next service date: %s\n", *m.NextDueDate)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FuelReportText summarizes a fuel period report.
func FuelReportText(from, to string, count int, totalCost, totalLiters float64, meanKmPerLiter *float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "⛽ Fuel report %s to %s\n", from, to)
	fmt.Fprintf(&b, "Refuelings: %d\n", count)
	fmt.Fprintf(&b, "Total: R$ %.2f — %.2f L", totalCost, totalLiters)
	if meanKmPerLiter != nil {
		fmt.Fprintf(&b, "\nAverage consumption: %.2f km/L", *meanKmPerLiter)
	}

	return b.String()
}

// MaintenanceReportText summarizes a maintenance period report.
func MaintenanceReportText(from, to string, count int, dueVehicles int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔧 Maintenance report %s to %s\n", from, to)
	fmt.Fprintf(&b, "Services: %d", count)
	if dueVehicles > 0 {
		fmt.Fprintf(&b, "\n⚠️ Vehicles with service due: %d", dueVehicles)
	}

	return b.String()
}

// WhatsAppLink builds a wa.me deep link for the given phone and text.
// Non-digit characters are stripped from the phone; an empty phone yields a
// link that lets the sender pick the recipient.
func WhatsAppLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if digits == "" {
		return "https://wa.me/?text=" + url.QueryEscape(text)
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text)
}
