package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"routelog/internal/domain"
	"routelog/internal/platform/obs"
	"routelog/internal/ports"
)

// InsightKind classifies how an insight should read on the dashboard.
type InsightKind string

const (
	InsightAlert   InsightKind = "alert"
	InsightInfo    InsightKind = "info"
	InsightSuccess InsightKind = "success"
)

// Insight is one advisory line for the dashboard. Insights never block
// anything; they are display-only.
type Insight struct {
	Kind    InsightKind `json:"kind"`
	Message string      `json:"message"`
}

// maxInsights caps the dashboard list.
const maxInsights = 4

// InsightService produces operational insights over the last-30-days window
// of completed routes. Results are cached when a cache is wired; a nil or
// failing cache only costs recomputation.
type InsightService struct {
	Routes ports.RouteRepository
	Cache  ports.Cache
	TTL    time.Duration
	Now    func() time.Time
}

func NewInsightService(routes ports.RouteRepository, cache ports.Cache, ttl time.Duration) *InsightService {
	return &InsightService{Routes: routes, Cache: cache, TTL: ttl, Now: time.Now}
}

const insightsCacheKey = "routelog:insights:v1"

func (s *InsightService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Insights returns the current advisory list. With fewer than two routes
// recorded overall there is nothing worth saying yet.
func (s *InsightService) Insights(ctx context.Context) (_ []Insight, err error) {
	defer obs.Time(ctx, "generate insights")(&err)

	if s.Cache != nil {
		if b, ok, cacheErr := s.Cache.Get(ctx, insightsCacheKey); cacheErr != nil {
			log.Printf("insights cache read failed: err=%v", cacheErr)
		} else if ok {
			var cached []Insight
			if unmarshalErr := json.Unmarshal(b, &cached); unmarshalErr == nil {
				return cached, nil
			}
		}
	}

	all, err := s.Routes.ListRoutes(ctx, ports.RouteFilter{})
	if err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}
	if len(all) < 2 {
		return []Insight{}, nil
	}

	now := s.now()
	from := now.AddDate(0, 0, -30).Format("2006-01-02")
	window := make([]*domain.Route, 0, len(all))
	for _, r := range all {
		if r.Status == domain.RouteCompleted && r.Date >= from {
			window = append(window, r)
		}
	}

	insights := GenerateInsights(window)

	if s.Cache != nil {
		if b, marshalErr := json.Marshal(insights); marshalErr == nil {
			if cacheErr := s.Cache.Set(ctx, insightsCacheKey, b, s.TTL); cacheErr != nil {
				log.Printf("insights cache write failed: err=%v", cacheErr)
			}
		}
	}

	return insights, nil
}

// GenerateInsights evaluates the fixed rule set over a window of completed
// routes, newest first. Each rule is independent; the list caps at four.
func GenerateInsights(window []*domain.Route) []Insight {
	insights := make([]Insight, 0, maxInsights)

	if in, ok := courierIncidentInsight(window); ok {
		insights = append(insights, in)
	}
	if in, ok := distanceInsight(window); ok {
		insights = append(insights, in)
	}
	if in, ok := returnRateInsight(window); ok {
		insights = append(insights, in)
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// courierIncidentInsight flags the courier with the highest incident
// quantity when that total reaches three. Ties break toward the courier
// name that sorts first, keeping the output deterministic.
func courierIncidentInsight(window []*domain.Route) (Insight, bool) {
	totals := make(map[string]int)
	for _, r := range window {
		for _, s := range r.Stops {
			if n := s.IncidentCount(); n > 0 {
				totals[s.CourierName] += n
			}
		}
	}

	topName, topCount := "", 0
	for name, count := range totals {
		if count > topCount || (count == topCount && (topName == "" || name < topName)) {
			topName, topCount = name, count
		}
	}

	if topCount < 3 {
		return Insight{}, false
	}
	return Insight{
		Kind:    InsightAlert,
		Message: fmt.Sprintf("%s accumulated %d incidents in the last 30 days", topName, topCount),
	}, true
}

// distanceInsight needs at least three measured routes. The window arrives
// newest first, so the first measured distance is the latest one.
func distanceInsight(window []*domain.Route) (Insight, bool) {
	distances := make([]int, 0, len(window))
	for _, r := range window {
		if km, ok := r.DistanceKm(); ok {
			distances = append(distances, km)
		}
	}
	if len(distances) < 3 {
		return Insight{}, false
	}

	sum := 0
	for _, d := range distances {
		sum += d
	}
	mean := float64(sum) / float64(len(distances))
	latest := distances[0]

	if float64(latest) > 1.3*mean {
		return Insight{
			Kind:    InsightAlert,
			Message: fmt.Sprintf("Latest route ran %d km, well above the %.0f km average", latest, mean),
		}, true
	}
	return Insight{
		Kind:    InsightInfo,
		Message: fmt.Sprintf("Average route distance: %.0f km", math.Round(mean)),
	}, true
}

func returnRateInsight(window []*domain.Route) (Insight, bool) {
	totals := ComputePeriodTotals(window)
	if totals.Dispatched == 0 {
		return Insight{}, false
	}

	rate := totals.ReturnRatePct()
	switch {
	case rate > 10:
		return Insight{
			Kind:    InsightAlert,
			Message: fmt.Sprintf("Return rate at %.1f%% over the last 30 days", rate),
		}, true
	case rate == 0:
		return Insight{
			Kind:    InsightSuccess,
			Message: "No returns in the last 30 days",
		}, true
	default:
		return Insight{
			Kind:    InsightInfo,
			Message: fmt.Sprintf("Return rate at %.1f%% over the last 30 days", rate),
		}, true
	}
}
