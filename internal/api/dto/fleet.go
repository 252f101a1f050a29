package dto

import "routelog/internal/domain"

type RefuelingRequest struct {
	VehicleID  int             `json:"vehicle_id"`
	Date       string          `json:"date"`
	OdometerKm int             `json:"odometer_km"`
	Liters     float64         `json:"liters"`
	TotalCost  float64         `json:"total_cost"`
	FuelType   domain.FuelType `json:"fuel_type"`
	Station    string          `json:"station"`
	Note       string          `json:"note"`
}

type MaintenanceRequest struct {
	VehicleID     int                   `json:"vehicle_id"`
	Date          string                `json:"date"`
	OdometerKm    int                   `json:"odometer_km"`
	OilType       string                `json:"oil_type"`
	ReplacedItems []domain.ReplacedItem `json:"replaced_items"`
	NextDueKm     *int                  `json:"next_due_km"`
	NextDueDate   *string               `json:"next_due_date"`
	Note          string                `json:"note"`
}
