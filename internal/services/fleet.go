package services

import (
	"context"
	"fmt"
	"time"

	"routelog/internal/domain"
	"routelog/internal/ports"
)

// FleetService owns the vehicle logs: refuelings with their derived
// efficiency fields, maintenances with their next-due thresholds, and the
// period reports built from both.
type FleetService struct {
	Refuelings   ports.RefuelingRepository
	Maintenances ports.MaintenanceRepository
	Vehicles     ports.VehicleRepository
	Now          func() time.Time
}

func NewFleetService(
	refuelings ports.RefuelingRepository,
	maintenances ports.MaintenanceRepository,
	vehicles ports.VehicleRepository,
) *FleetService {
	return &FleetService{
		Refuelings:   refuelings,
		Maintenances: maintenances,
		Vehicles:     vehicles,
		Now:          time.Now,
	}
}

func (s *FleetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type RefuelingInput struct {
	VehicleID  int
	Date       string
	OdometerKm int
	Liters     float64
	TotalCost  float64
	FuelType   domain.FuelType
	Station    string
	Note       string
}

// CreateRefueling validates the input, derives the efficiency fields from
// the prior fill and persists the record. The vehicle's cached odometer is
// advanced afterwards in its own statement; a crash in between leaves only
// a stale cache, re-derivable from the logs.
func (s *FleetService) CreateRefueling(ctx context.Context, in RefuelingInput) (*domain.Refueling, error) {
	if in.OdometerKm <= 0 {
		return nil, validationf("odometer_km", "odometer reading must be positive")
	}
	if in.Liters <= 0 {
		return nil, validationf("liters", "liters must be positive")
	}
	if in.TotalCost <= 0 {
		return nil, validationf("total_cost", "total cost must be positive")
	}
	if !domain.ValidFuelType(in.FuelType) {
		return nil, validationf("fuel_type", "unknown fuel type %q", in.FuelType)
	}

	vehicle, err := s.Vehicles.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("create refueling: %w", err)
	}
	if vehicle == nil {
		return nil, validationf("vehicle_id", "vehicle %d does not exist", in.VehicleID)
	}

	latest, err := s.Refuelings.LatestRefueling(ctx, in.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("create refueling: %w", err)
	}
	if latest != nil && in.OdometerKm <= latest.OdometerKm {
		return nil, validationf("odometer_km", "odometer must be greater than %d", latest.OdometerKm)
	}

	now := s.now()
	date := in.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}

	record := &domain.Refueling{
		VehicleID:  in.VehicleID,
		Date:       date,
		OdometerKm: in.OdometerKm,
		Liters:     in.Liters,
		TotalCost:  in.TotalCost,
		FuelType:   in.FuelType,
		Station:    in.Station,
		Note:       in.Note,
		CreatedAt:  now.UTC().Format(time.RFC3339),
	}

	prior, err := s.Refuelings.RefuelingBelow(ctx, in.VehicleID, in.OdometerKm)
	if err != nil {
		return nil, fmt.Errorf("create refueling: %w", err)
	}
	DeriveFuelMetrics(record, prior)

	if _, err := s.Refuelings.SaveRefueling(ctx, record); err != nil {
		return nil, fmt.Errorf("create refueling: %w", err)
	}

	if err := s.Vehicles.AdvanceOdometer(ctx, in.VehicleID, in.OdometerKm); err != nil {
		return nil, fmt.Errorf("create refueling: %w", err)
	}

	return record, nil
}

func (s *FleetService) DeleteRefueling(ctx context.Context, id int) error {
	if err := s.Refuelings.DeleteRefueling(ctx, id); err != nil {
		return fmt.Errorf("delete refueling: %w", err)
	}
	return nil
}

func (s *FleetService) ListRefuelings(ctx context.Context, vehicleID int) ([]*domain.Refueling, error) {
	items, err := s.Refuelings.ListRefuelings(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list refuelings: %w", err)
	}
	return items, nil
}

type MaintenanceInput struct {
	VehicleID     int
	Date          string
	OdometerKm    int
	OilType       string
	ReplacedItems []domain.ReplacedItem
	NextDueKm     *int
	NextDueDate   *string
	Note          string
}

// CreateMaintenance validates and persists a service record, then advances
// the vehicle's cached odometer.
func (s *FleetService) CreateMaintenance(ctx context.Context, in MaintenanceInput) (*domain.Maintenance, error) {
	if in.OdometerKm <= 0 {
		return nil, validationf("odometer_km", "odometer reading must be positive")
	}
	for _, item := range in.ReplacedItems {
		if !domain.ValidReplacedItem(item) {
			return nil, validationf("replaced_items", "unknown item %q", item)
		}
	}
	if in.NextDueKm != nil && *in.NextDueKm <= in.OdometerKm {
		return nil, validationf("next_due_km", "next service must be beyond %d", in.OdometerKm)
	}

	vehicle, err := s.Vehicles.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("create maintenance: %w", err)
	}
	if vehicle == nil {
		return nil, validationf("vehicle_id", "vehicle %d does not exist", in.VehicleID)
	}

	now := s.now()
	date := in.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}

	record := &domain.Maintenance{
		VehicleID:     in.VehicleID,
		Date:          date,
		OdometerKm:    in.OdometerKm,
		OilType:       in.OilType,
		ReplacedItems: in.ReplacedItems,
		NextDueKm:     in.NextDueKm,
		NextDueDate:   in.NextDueDate,
		Note:          in.Note,
		CreatedAt:     now.UTC().Format(time.RFC3339),
	}

	if _, err := s.Maintenances.SaveMaintenance(ctx, record); err != nil {
		return nil, fmt.Errorf("create maintenance: %w", err)
	}

	if err := s.Vehicles.AdvanceOdometer(ctx, in.VehicleID, in.OdometerKm); err != nil {
		return nil, fmt.Errorf("create maintenance: %w", err)
	}

	return record, nil
}

func (s *FleetService) DeleteMaintenance(ctx context.Context, id int) error {
	if err := s.Maintenances.DeleteMaintenance(ctx, id); err != nil {
		return fmt.Errorf("delete maintenance: %w", err)
	}
	return nil
}

func (s *FleetService) ListMaintenances(ctx context.Context, vehicleID int) ([]*domain.Maintenance, error) {
	items, err := s.Maintenances.ListMaintenances(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list maintenances: %w", err)
	}
	return items, nil
}

// MaintenanceDue evaluates the vehicle's latest maintenance against its
// freshest known odometer and today's date.
func (s *FleetService) MaintenanceDue(ctx context.Context, vehicle *domain.Vehicle) (bool, error) {
	last, err := s.Maintenances.LatestMaintenance(ctx, vehicle.ID)
	if err != nil {
		return false, fmt.Errorf("maintenance due: vehicle_id=%d: %w", vehicle.ID, err)
	}
	today := s.now().Format("2006-01-02")
	return MaintenanceDue(last, vehicle.OdometerKm, today), nil
}

// MeanRecentConsumption averages km/L over the vehicle's last n fills that
// carry a derived efficiency, or nil when none do.
func (s *FleetService) MeanRecentConsumption(ctx context.Context, vehicleID, n int) (*float64, error) {
	fills, err := s.Refuelings.ListRefuelings(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("mean consumption: %w", err)
	}

	sum, count := 0.0, 0
	for _, f := range fills {
		if f.KmPerLiter == nil {
			continue
		}
		sum += *f.KmPerLiter
		count++
		if count == n {
			break
		}
	}
	if count == 0 {
		return nil, nil
	}
	mean := sum / float64(count)
	return &mean, nil
}

// FuelReport is the period rollup over refuelings.
type FuelReport struct {
	From           string              `json:"from"`
	To             string              `json:"to"`
	Count          int                 `json:"count"`
	TotalCost      float64             `json:"total_cost"`
	TotalLiters    float64             `json:"total_liters"`
	MeanKmPerLiter *float64            `json:"mean_km_per_liter,omitempty"`
	Records        []*domain.Refueling `json:"records"`
}

// BuildFuelReport totals spend and liters over [from, to], optionally for a
// single vehicle. The mean efficiency covers only records that have one.
func (s *FleetService) BuildFuelReport(ctx context.Context, from, to string, vehicleID int) (*FuelReport, error) {
	records, err := s.Refuelings.ListRefuelingsPeriod(ctx, from, to, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("fuel report: %w", err)
	}

	report := &FuelReport{From: from, To: to, Count: len(records), Records: records}
	effSum, effCount := 0.0, 0
	for _, r := range records {
		report.TotalCost += r.TotalCost
		report.TotalLiters += r.Liters
		if r.KmPerLiter != nil {
			effSum += *r.KmPerLiter
			effCount++
		}
	}
	if effCount > 0 {
		mean := effSum / float64(effCount)
		report.MeanKmPerLiter = &mean
	}
	return report, nil
}

// MaintenanceReport is the period rollup over maintenances.
type MaintenanceReport struct {
	From    string                `json:"from"`
	To      string                `json:"to"`
	Count   int                   `json:"count"`
	Records []*domain.Maintenance `json:"records"`
}

func (s *FleetService) BuildMaintenanceReport(ctx context.Context, from, to string, vehicleID int) (*MaintenanceReport, error) {
	records, err := s.Maintenances.ListMaintenancesPeriod(ctx, from, to, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("maintenance report: %w", err)
	}
	return &MaintenanceReport{From: from, To: to, Count: len(records), Records: records}, nil
}
