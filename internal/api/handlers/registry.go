package handlers

import (
	"net/http"

	"routelog/internal/api/dto"
	"routelog/internal/services"
)

// RegistryHandler exposes the reference-data CRUD: cities, couriers,
// vehicles and route templates.
type RegistryHandler struct {
	Svc *services.RegistryService
}

func (h *RegistryHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Svc.ListCities(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cities)
}

func (h *RegistryHandler) SaveCity(w http.ResponseWriter, r *http.Request) {
	var req dto.CityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	city, err := h.Svc.SaveCity(r.Context(), req.ToDomain())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, city)
}

func (h *RegistryHandler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteCity(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistryHandler) ListCouriers(w http.ResponseWriter, r *http.Request) {
	couriers, err := h.Svc.ListCouriers(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, couriers)
}

func (h *RegistryHandler) SaveCourier(w http.ResponseWriter, r *http.Request) {
	var req dto.CourierRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	courier, err := h.Svc.SaveCourier(r.Context(), req.ToDomain())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, courier)
}

func (h *RegistryHandler) DeleteCourier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteCourier(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistryHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Svc.ListVehicles(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, vehicles)
}

func (h *RegistryHandler) SaveVehicle(w http.ResponseWriter, r *http.Request) {
	var req dto.VehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vehicle, err := h.Svc.SaveVehicle(r.Context(), req.ToDomain())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, vehicle)
}

func (h *RegistryHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteVehicle(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistryHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Svc.ListTemplates(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, templates)
}

func (h *RegistryHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req dto.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	template, err := h.Svc.SaveTemplate(r.Context(), req.ToDomain())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, template)
}

func (h *RegistryHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteTemplate(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
