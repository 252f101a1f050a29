package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"routelog/internal/adapters/messaging"
	"routelog/internal/api/dto"
	"routelog/internal/domain"
	"routelog/internal/ports"
	"routelog/internal/services"
)

// recentFillsForMean is how many computed refuelings feed the closure
// message's consumption figure.
const recentFillsForMean = 5

// RouteHandler exposes the route lifecycle: open, work the stops, close.
type RouteHandler struct {
	Svc   *services.RouteService
	Fleet *services.FleetService
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.RouteFilter{
		From:   q.Get("from"),
		To:     q.Get("to"),
		Status: domain.RouteStatus(q.Get("status")),
	}

	routes, err := h.Svc.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, routes)
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := services.CreateRouteInput{
		Date:          req.Date,
		VehicleID:     req.VehicleID,
		Driver:        req.Driver,
		DepartureKm:   req.DepartureKm,
		DepartureTime: req.DepartureTime,
	}
	for _, s := range req.Stops {
		in.Stops = append(in.Stops, services.CreateStopInput{
			CityID:     s.CityID,
			CourierID:  s.CourierID,
			Dispatched: s.Dispatched,
		})
	}

	route, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, route)
}

// Active returns the single in-progress route, or null when the day is idle.
func (h *RouteHandler) Active(w http.ResponseWriter, r *http.Request) {
	route, err := h.Svc.Active(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, route)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	route, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, route)
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RouteHandler) CompleteStop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	pos, ok := pathInt(w, r, "pos")
	if !ok {
		return
	}

	// The body is optional; without one the stop is stamped with the
	// current clock time.
	var req dto.CompleteStopRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	route, err := h.Svc.CompleteStop(r.Context(), id, pos, req.Time)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, route)
}

func (h *RouteHandler) UpdateVolumes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	pos, ok := pathInt(w, r, "pos")
	if !ok {
		return
	}

	var req dto.StopVolumesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route, err := h.Svc.UpdateStopVolumes(r.Context(), id, pos, req.Delivered, req.Returned)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, route)
}

func (h *RouteHandler) AddIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	pos, ok := pathInt(w, r, "pos")
	if !ok {
		return
	}

	var req dto.IncidentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route, err := h.Svc.AddIncident(r.Context(), id, pos, services.IncidentInput{
		Type:        req.Type,
		Description: req.Description,
		Quantity:    req.Quantity,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, route)
}

func (h *RouteHandler) RemoveIncident(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	pos, ok := pathInt(w, r, "pos")
	if !ok {
		return
	}

	route, err := h.Svc.RemoveIncident(r.Context(), id, pos, chi.URLParam(r, "incidentID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, route)
}

func (h *RouteHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	var req dto.CloseRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route, err := h.Svc.Close(r.Context(), id, req.ArrivalKm, req.ArrivalTime)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, route)
}

// Share renders a route as a shareable text plus its wa.me link.
func (h *RouteHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	route, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var text string
	switch kind := r.URL.Query().Get("kind"); kind {
	case "departure", "":
		text = messaging.RouteDeparture(route)
	case "closure":
		if route.Status != domain.RouteCompleted {
			writeError(w, r, http.StatusBadRequest, "route is still in progress")
			return
		}
		text, err = h.closureText(r, route)
		if err != nil {
			handleError(w, r, err)
			return
		}
	default:
		writeError(w, r, http.StatusBadRequest, "kind must be departure or closure")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ShareResponse{
		Text: text,
		Link: messaging.WhatsAppLink("", text),
	})
}

func (h *RouteHandler) closureText(r *http.Request, route *domain.Route) (string, error) {
	ctx := r.Context()

	mean, err := h.Fleet.MeanRecentConsumption(ctx, route.VehicleID, recentFillsForMean)
	if err != nil {
		return "", err
	}

	due := false
	vehicle, err := h.Fleet.Vehicles.GetVehicle(ctx, route.VehicleID)
	if err != nil {
		return "", err
	}
	if vehicle != nil {
		due, err = h.Fleet.MaintenanceDue(ctx, vehicle)
		if err != nil {
			return "", err
		}
	}

	arrival := ""
	if route.ArrivalTime != nil {
		arrival = *route.ArrivalTime
	}
	duration := services.FormatDuration(route.DepartureTime, arrival)

	return messaging.RouteClosure(route, duration, mean, due), nil
}
