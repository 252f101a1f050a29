package messaging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"routelog/internal/domain"
)

func sampleRoute() *domain.Route {
	delivered := 110
	returned := 10
	at := "10:15"
	return &domain.Route{
		Date: "2026-08-20", Plate: "ABC1D23", Driver: "Jose",
		DepartureKm: 40000, DepartureTime: "07:30",
		Status: domain.RouteInProgress,
		Stops: []domain.RouteStop{
			{
				CityName: "Uberaba", CourierName: "Marcos", Dispatched: 120,
				Delivered: &delivered, Returned: &returned,
				Completed: true, CompletedAt: &at,
				Incidents: []domain.Incident{
					{ID: "i1", Type: domain.IncidentRefusal, Quantity: 2, Description: "wrong invoice"},
				},
			},
			{CityName: "Franca", CourierName: "Paula", Dispatched: 80},
		},
	}
}

func TestRouteDeparture_ListsStops(t *testing.T) {
	text := RouteDeparture(sampleRoute())

	require.Contains(t, text, "Vehicle: ABC1D23")
	require.Contains(t, text, "1. Uberaba — Marcos (120 volumes)")
	require.Contains(t, text, "2. Franca — Paula (80 volumes)")
	require.False(t, strings.HasSuffix(text, "\n"))
}

func TestStopCompletion_ProgressAndIncidents(t *testing.T) {
	text := StopCompletion(sampleRoute(), 0)

	require.Contains(t, text, "Stop completed: Uberaba — Marcos")
	require.Contains(t, text, "120 dispatched, 110 delivered, 10 returned")
	require.Contains(t, text, "customer refusal x2: wrong invoice")
	require.Contains(t, text, "Progress: 1/2 stops completed")
}

func TestRouteClosure_MarksStops(t *testing.T) {
	r := sampleRoute()
	arrivalKm := 40180
	r.ArrivalKm = &arrivalKm
	mean := 11.43

	text := RouteClosure(r, "9h 30min", &mean, true)

	require.Contains(t, text, "Distance: 180 km")
	require.Contains(t, text, "Duration: 9h 30min")
	require.Contains(t, text, "✓ 1. Uberaba — Marcos")
	require.Contains(t, text, "✗ 2. Franca — Paula")
	require.Contains(t, text, "Average consumption: 11.43 km/L")
	require.Contains(t, text, "Maintenance due")
}

func TestWhatsAppLink_StripsPhoneFormatting(t *testing.T) {
	link := WhatsAppLink("+55 (34) 99999-0000", "hello world")
	require.Equal(t, "https://wa.me/5534999990000?text=hello+world", link)

	link = WhatsAppLink("", "hi")
	require.Equal(t, "https://wa.me/?text=hi", link)
}
