package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"routelog/internal/domain"
	"routelog/internal/ports"
)

// DaySeriesPoint is one day in the dashboard's activity series.
type DaySeriesPoint struct {
	Date       string `json:"date"`
	Volumes    int    `json:"volumes"`
	DistanceKm int    `json:"distance_km"`
}

// IncidentTypeCount pairs an incident category with its 30-day quantity.
type IncidentTypeCount struct {
	Type  domain.IncidentType `json:"type"`
	Count int                 `json:"count"`
}

// DashboardSummary is the home-screen rollup.
type DashboardSummary struct {
	Date                   string              `json:"date"`
	TodayDispatched        int                 `json:"today_dispatched"`
	TodayDelivered         int                 `json:"today_delivered"`
	TodayReturned          int                 `json:"today_returned"`
	TodayCompletedStops    int                 `json:"today_completed_stops"`
	Last7Days              []DaySeriesPoint    `json:"last_7_days"`
	Last30DayTotals        RouteTotals         `json:"last_30_day_totals"`
	CompletedRoutes30Days  int                 `json:"completed_routes_30_days"`
	TopIncidents           []IncidentTypeCount `json:"top_incidents"`
	MaintenanceDueVehicles int                 `json:"maintenance_due_vehicles"`
}

// DashboardService assembles the home-screen rollup, read-only over the
// store. Like insights, the result is cached when a cache is wired.
type DashboardService struct {
	Routes ports.RouteRepository
	Fleet  *FleetService
	Cache  ports.Cache
	TTL    time.Duration
	Now    func() time.Time
}

func NewDashboardService(routes ports.RouteRepository, fleet *FleetService, cache ports.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{Routes: routes, Fleet: fleet, Cache: cache, TTL: ttl, Now: time.Now}
}

const dashboardCacheKey = "routelog:dashboard:v1"

// topIncidentTypes caps the incident-by-type list.
const topIncidentTypes = 6

func (s *DashboardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if s.Cache != nil {
		if b, ok, cacheErr := s.Cache.Get(ctx, dashboardCacheKey); cacheErr != nil {
			log.Printf("dashboard cache read failed: err=%v", cacheErr)
		} else if ok {
			cached := &DashboardSummary{}
			if unmarshalErr := json.Unmarshal(b, cached); unmarshalErr == nil {
				return cached, nil
			}
		}
	}

	now := s.now()
	today := now.Format("2006-01-02")
	from30 := now.AddDate(0, 0, -30).Format("2006-01-02")
	from7 := now.AddDate(0, 0, -6).Format("2006-01-02")

	window, err := s.Routes.ListRoutes(ctx, ports.RouteFilter{From: from30})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	summary := &DashboardSummary{Date: today}

	byDay := make(map[string]*DaySeriesPoint)
	incidentCounts := make(map[domain.IncidentType]int)
	completedWindow := make([]*domain.Route, 0, len(window))

	for _, r := range window {
		totals := ComputeRouteTotals(r)

		if r.Date == today {
			summary.TodayDispatched += totals.Dispatched
			summary.TodayDelivered += totals.Delivered
			summary.TodayReturned += totals.Returned
			for _, st := range r.Stops {
				if st.Completed {
					summary.TodayCompletedStops++
				}
			}
		}

		if r.Date >= from7 {
			point, ok := byDay[r.Date]
			if !ok {
				point = &DaySeriesPoint{Date: r.Date}
				byDay[r.Date] = point
			}
			point.Volumes += totals.Dispatched
			if totals.DistanceKm != nil {
				point.DistanceKm += *totals.DistanceKm
			}
		}

		for _, st := range r.Stops {
			for _, in := range st.Incidents {
				q := in.Quantity
				if q <= 0 {
					q = 1
				}
				incidentCounts[in.Type] += q
			}
		}

		if r.Status == domain.RouteCompleted {
			completedWindow = append(completedWindow, r)
		}
	}

	summary.Last30DayTotals = ComputePeriodTotals(completedWindow)
	summary.CompletedRoutes30Days = len(completedWindow)

	// Fixed seven-day series, zero-filled for idle days.
	summary.Last7Days = make([]DaySeriesPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		if point, ok := byDay[date]; ok {
			summary.Last7Days = append(summary.Last7Days, *point)
		} else {
			summary.Last7Days = append(summary.Last7Days, DaySeriesPoint{Date: date})
		}
	}

	summary.TopIncidents = make([]IncidentTypeCount, 0, len(incidentCounts))
	for t, count := range incidentCounts {
		summary.TopIncidents = append(summary.TopIncidents, IncidentTypeCount{Type: t, Count: count})
	}
	sort.Slice(summary.TopIncidents, func(i, j int) bool {
		if summary.TopIncidents[i].Count != summary.TopIncidents[j].Count {
			return summary.TopIncidents[i].Count > summary.TopIncidents[j].Count
		}
		return summary.TopIncidents[i].Type < summary.TopIncidents[j].Type
	})
	if len(summary.TopIncidents) > topIncidentTypes {
		summary.TopIncidents = summary.TopIncidents[:topIncidentTypes]
	}

	due, err := s.maintenanceDueCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	summary.MaintenanceDueVehicles = due

	if s.Cache != nil {
		if b, marshalErr := json.Marshal(summary); marshalErr == nil {
			if cacheErr := s.Cache.Set(ctx, dashboardCacheKey, b, s.TTL); cacheErr != nil {
				log.Printf("dashboard cache write failed: err=%v", cacheErr)
			}
		}
	}

	return summary, nil
}

// maintenanceDueCount counts active vehicles whose next service is overdue.
func (s *DashboardService) maintenanceDueCount(ctx context.Context) (int, error) {
	vehicles, err := s.Fleet.Vehicles.ListVehicles(ctx)
	if err != nil {
		return 0, err
	}

	due := 0
	for _, v := range vehicles {
		if !v.Active {
			continue
		}
		isDue, err := s.Fleet.MaintenanceDue(ctx, v)
		if err != nil {
			return 0, err
		}
		if isDue {
			due++
		}
	}
	return due, nil
}
