package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"routelog/internal/adapters/httpsync"
	"routelog/internal/api/handlers"
	"routelog/internal/ports"
	"routelog/internal/services"
)

// Deps gathers everything the HTTP surface needs. The router is the API
// composition root (handlers stay unaware of concrete adapters).
type Deps struct {
	Registry  *services.RegistryService
	Routes    *services.RouteService
	Fleet     *services.FleetService
	Dashboard *services.DashboardService
	Insights  *services.InsightService
	Backup    handlers.BackupStore
	Settings  ports.SettingsRepository
	Sync      *httpsync.Client
}

func NewRouter(deps Deps) http.Handler {
	registry := &handlers.RegistryHandler{Svc: deps.Registry}
	routes := &handlers.RouteHandler{Svc: deps.Routes, Fleet: deps.Fleet}
	fleet := &handlers.FleetHandler{Svc: deps.Fleet}
	dashboard := &handlers.DashboardHandler{Dashboard: deps.Dashboard, Insights: deps.Insights}
	backup := &handlers.BackupHandler{Store: deps.Backup, Settings: deps.Settings}
	settings := &handlers.SettingsHandler{Settings: deps.Settings, Client: deps.Sync}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cities", registry.ListCities)
		r.Post("/cities", registry.SaveCity)
		r.Delete("/cities/{id}", registry.DeleteCity)

		r.Get("/couriers", registry.ListCouriers)
		r.Post("/couriers", registry.SaveCourier)
		r.Delete("/couriers/{id}", registry.DeleteCourier)

		r.Get("/vehicles", registry.ListVehicles)
		r.Post("/vehicles", registry.SaveVehicle)
		r.Delete("/vehicles/{id}", registry.DeleteVehicle)
		r.Get("/vehicles/{id}/refuelings", fleet.ListRefuelings)
		r.Get("/vehicles/{id}/maintenances", fleet.ListMaintenances)

		r.Get("/templates", registry.ListTemplates)
		r.Post("/templates", registry.SaveTemplate)
		r.Delete("/templates/{id}", registry.DeleteTemplate)

		r.Route("/routes", func(r chi.Router) {
			r.Get("/", routes.List)
			r.Post("/", routes.Create)
			r.Get("/active", routes.Active)
			r.Get("/{id}", routes.Get)
			r.Delete("/{id}", routes.Delete)
			r.Post("/{id}/close", routes.Close)
			r.Get("/{id}/share", routes.Share)
			r.Post("/{id}/stops/{pos}/complete", routes.CompleteStop)
			r.Patch("/{id}/stops/{pos}/volumes", routes.UpdateVolumes)
			r.Post("/{id}/stops/{pos}/incidents", routes.AddIncident)
			r.Delete("/{id}/stops/{pos}/incidents/{incidentID}", routes.RemoveIncident)
		})

		r.Post("/refuelings", fleet.CreateRefueling)
		r.Delete("/refuelings/{id}", fleet.DeleteRefueling)
		r.Post("/maintenances", fleet.CreateMaintenance)
		r.Delete("/maintenances/{id}", fleet.DeleteMaintenance)

		r.Get("/reports/fuel", fleet.FuelReport)
		r.Get("/reports/maintenance", fleet.MaintenanceReport)

		r.Get("/dashboard", dashboard.Summary)
		r.Get("/insights", dashboard.List)

		r.Post("/backup/export", backup.Export)
		r.Post("/backup/restore", backup.Restore)

		r.Get("/settings/server", settings.Get)
		r.Put("/settings/server", settings.Put)
		r.Post("/settings/server/test", settings.Test)
	})

	return r
}
