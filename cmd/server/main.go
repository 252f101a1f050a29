package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"routelog/internal/adapters/httpsync"
	"routelog/internal/adapters/rediscache"
	"routelog/internal/adapters/repositories"
	"routelog/internal/api"
	"routelog/internal/config"
	"routelog/internal/platform/db"
	"routelog/internal/ports"
	"routelog/internal/services"
)

const cacheTTL = 5 * time.Minute

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis, the sync client) behind ports
// and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/routelog.db")
	port := config.Get("PORT", "8080")

	conn, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal(err)
	}

	settings := repositories.NewSqliteSettingsRepository(conn)
	if err := seedSyncSettings(settings); err != nil {
		log.Fatal(err)
	}

	// Redis is optional; without it the dashboard and insights recompute
	// on every request.
	var cache ports.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rc := rediscache.New(addr)
		if err := rc.Ping(context.Background()); err != nil {
			log.Fatalf("redis unreachable: addr=%s err=%v", addr, err)
		}
		cache = rc
	}

	syncClient := httpsync.NewClient(settings)
	dispatcher := httpsync.NewDispatcher(syncClient)

	cities := repositories.NewSqliteCityRepository(conn)
	couriers := repositories.NewSqliteCourierRepository(conn)
	vehicles := repositories.NewSqliteVehicleRepository(conn)
	templates := repositories.NewSqliteTemplateRepository(conn)
	routes := repositories.NewSqliteRouteRepository(conn)
	refuelings := repositories.NewSqliteRefuelingRepository(conn)
	maintenances := repositories.NewSqliteMaintenanceRepository(conn)

	fleet := services.NewFleetService(refuelings, maintenances, vehicles)

	router := api.NewRouter(api.Deps{
		Registry:  services.NewRegistryService(cities, couriers, vehicles, templates, dispatcher),
		Routes:    services.NewRouteService(routes, vehicles, cities, couriers, dispatcher),
		Fleet:     fleet,
		Dashboard: services.NewDashboardService(routes, fleet, cache, cacheTTL),
		Insights:  services.NewInsightService(routes, cache, cacheTTL),
		Backup:    repositories.NewBackupStore(conn),
		Settings:  settings,
		Sync:      syncClient,
	})

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// seedSyncSettings copies SYNC_URL / SYNC_API_KEY from the environment into
// the settings table, but only when nothing is stored yet. Runtime edits via
// the API win over env defaults.
func seedSyncSettings(settings *repositories.SqliteSettingsRepository) error {
	ctx := context.Background()

	for key, env := range map[string]string{
		httpsync.SettingServerURL: "SYNC_URL",
		httpsync.SettingAPIKey:    "SYNC_API_KEY",
	} {
		value := os.Getenv(env)
		if value == "" {
			continue
		}

		current, err := settings.GetSetting(ctx, key)
		if err != nil {
			return err
		}
		if current != "" {
			continue
		}
		if err := settings.SetSetting(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
