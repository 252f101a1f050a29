package handlers

import (
	"net/http"
	"strconv"

	"routelog/internal/api/dto"
	"routelog/internal/services"
)

// FleetHandler exposes the vehicle logs and their period reports.
type FleetHandler struct {
	Svc *services.FleetService
}

func (h *FleetHandler) ListRefuelings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	records, err := h.Svc.ListRefuelings(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

func (h *FleetHandler) CreateRefueling(w http.ResponseWriter, r *http.Request) {
	var req dto.RefuelingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := h.Svc.CreateRefueling(r.Context(), services.RefuelingInput{
		VehicleID:  req.VehicleID,
		Date:       req.Date,
		OdometerKm: req.OdometerKm,
		Liters:     req.Liters,
		TotalCost:  req.TotalCost,
		FuelType:   req.FuelType,
		Station:    req.Station,
		Note:       req.Note,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, record)
}

func (h *FleetHandler) DeleteRefueling(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteRefueling(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) ListMaintenances(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	records, err := h.Svc.ListMaintenances(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

func (h *FleetHandler) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	var req dto.MaintenanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := h.Svc.CreateMaintenance(r.Context(), services.MaintenanceInput{
		VehicleID:     req.VehicleID,
		Date:          req.Date,
		OdometerKm:    req.OdometerKm,
		OilType:       req.OilType,
		ReplacedItems: req.ReplacedItems,
		NextDueKm:     req.NextDueKm,
		NextDueDate:   req.NextDueDate,
		Note:          req.Note,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, record)
}

func (h *FleetHandler) DeleteMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Svc.DeleteMaintenance(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FleetHandler) FuelReport(w http.ResponseWriter, r *http.Request) {
	from, to, vehicleID, ok := reportParams(w, r)
	if !ok {
		return
	}

	report, err := h.Svc.BuildFuelReport(r.Context(), from, to, vehicleID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (h *FleetHandler) MaintenanceReport(w http.ResponseWriter, r *http.Request) {
	from, to, vehicleID, ok := reportParams(w, r)
	if !ok {
		return
	}

	report, err := h.Svc.BuildMaintenanceReport(r.Context(), from, to, vehicleID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func reportParams(w http.ResponseWriter, r *http.Request) (from, to string, vehicleID int, ok bool) {
	q := r.URL.Query()
	from, to = q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, r, http.StatusBadRequest, "from and to are required")
		return "", "", 0, false
	}

	if raw := q.Get("vehicle_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "vehicle_id must be a number")
			return "", "", 0, false
		}
		vehicleID = n
	}
	return from, to, vehicleID, true
}
