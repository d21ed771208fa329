package main

import (
	"context"
	"database/sql"
	"fmt"
	"itinerary-planner-service/internal/adapters/cache"
	"itinerary-planner-service/internal/adapters/distance"
	"itinerary-planner-service/internal/adapters/geocode"
	"itinerary-planner-service/internal/adapters/notify"
	"itinerary-planner-service/internal/adapters/render"
	"itinerary-planner-service/internal/adapters/repositories"
	"itinerary-planner-service/internal/adapters/toll"
	"itinerary-planner-service/internal/api"
	"itinerary-planner-service/internal/api/handlers"
	"itinerary-planner-service/internal/config"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/db"
	"itinerary-planner-service/internal/ports"
	"itinerary-planner-service/internal/services"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// caches bundles the persistent stores selected by CACHE_BACKEND. Either
// field may be nil, in which case lookups always go upstream.
type caches struct {
	distance ports.DistanceCache
	geocode  ports.GeocodeCache
	seeder   repositories.PlaceSeeder
	checks   map[string]handlers.HealthCheck
	close    func()
}

// main is the application composition root.
// It wires concrete adapters (caches, routing, geocoding, delivery) behind
// ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	c, err := openCaches(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer c.close()

	places, err := repositories.LoadPlaces(cfg.KnownPlacesPath)
	if err != nil {
		log.Printf("known places unavailable path=%s: %v", cfg.KnownPlacesPath, err)
		places = map[string]domain.Coordinates{}
	}
	if c.seeder != nil && len(places) > 0 {
		if err := c.seeder.PutSeeds(ctx, places); err != nil {
			log.Printf("seeding geocode cache failed: %v", err)
		}
	}

	provider, err := newMatrixProvider(cfg, c.distance)
	if err != nil {
		log.Fatal(err)
	}
	estimator := distance.NewHaversineEstimator(cfg.WalkSpeedKmh, cfg.DriveSpeedKmh)
	builder := services.NewMatrixBuilder(provider, estimator, cfg.RoutingTimeout)

	geocoder, err := newGeocoder(cfg, places, c.geocode)
	if err != nil {
		log.Fatal(err)
	}

	planner := services.NewPlanner(geocoder, builder, toll.ZeroTollCalculator{})
	planner.GeocodeConcurrency = cfg.GeocodeConcurrency

	plans := &handlers.PlanHandler{
		Planner:          planner,
		Renderer:         render.GeoJSONRenderer{},
		DefaultThreshold: cfg.DefaultThreshold,
	}
	if cfg.LineChannelToken != "" {
		n, err := notify.NewLineNotifier(cfg.LineChannelToken, "")
		if err != nil {
			log.Fatal(err)
		}
		plans.Notifier = n
	}

	router := api.NewRouter(plans, &handlers.HealthHandler{Checks: c.checks})

	// Timeouts are tuned for cold-cache planning (geocoding + matrix latency).
	log.Printf("Server listening addr=:%s cache=%s routing=%s geocoder=%s",
		cfg.Port, cfg.CacheBackend, cfg.RoutingProvider, cfg.Geocoder)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openCaches(ctx context.Context, cfg *config.Config) (*caches, error) {
	switch cfg.CacheBackend {
	case "sqlite":
		conn, err := db.Open(ctx, db.SQLite, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open caches: %w", err)
		}
		// Local runs create the schema on startup; postgres uses cmd/dbtool.
		if err := repositories.InitSchema(ctx, conn, db.SQLite); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("open caches: %w", err)
		}
		geo := cache.NewSqliteGeocodeCache(conn, cfg.CacheMaxAge)
		return &caches{
			distance: cache.NewSqliteDistanceCache(conn, cfg.CacheMaxAge),
			geocode:  geo,
			seeder:   geo,
			checks:   map[string]handlers.HealthCheck{"sqlite": conn.PingContext},
			close:    closeDB(conn),
		}, nil

	case "postgres":
		conn, err := db.Open(ctx, db.Postgres, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open caches: %w", err)
		}
		return &caches{
			distance: cache.NewSQLDistanceCache(conn, cfg.CacheMaxAge),
			geocode:  cache.NewSQLGeocodeCache(conn, cfg.CacheMaxAge),
			checks:   map[string]handlers.HealthCheck{"postgres": conn.PingContext},
			close:    closeDB(conn),
		}, nil

	case "redis":
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open caches: %w", err)
		}
		geo := cache.NewRedisGeocodeCache(rdb, cfg.CacheMaxAge)
		return &caches{
			distance: cache.NewRedisDistanceCache(rdb, cfg.CacheMaxAge),
			geocode:  geo,
			seeder:   geo,
			checks: map[string]handlers.HealthCheck{
				"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			},
			close: func() {
				if err := rdb.Close(); err != nil {
					log.Printf("close redis: %v", err)
				}
			},
		}, nil
	}

	return &caches{close: func() {}}, nil
}

func closeDB(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}
}

func newMatrixProvider(cfg *config.Config, dc ports.DistanceCache) (ports.MatrixProvider, error) {
	switch cfg.RoutingProvider {
	case "ors":
		client, err := distance.NewORSClient(cfg.ORSAPIKey, cfg.ORSBaseURL, cfg.ORSRatePerSecond)
		if err != nil {
			return nil, err
		}
		return distance.NewORSMatrixProvider(client, dc)
	case "osrm":
		return distance.NewOSRMTableProvider(cfg.OSRMBaseURL, 1, dc), nil
	}
	// Straight-line estimates only.
	return nil, nil
}

// newGeocoder answers known places from the seed table first, then asks the
// configured upstream service. Upstream answers are cached.
func newGeocoder(cfg *config.Config, places map[string]domain.Coordinates, gc ports.GeocodeCache) (ports.Geocoder, error) {
	chain := geocode.Fallback{geocode.NewStaticGeocoder(places)}

	switch cfg.Geocoder {
	case "nominatim":
		g, err := geocode.NewNominatimGeocoder(cfg.NominatimBaseURL, cfg.NominatimUserAgent, 0)
		if err != nil {
			return nil, err
		}
		chain = append(chain, g)
	case "ors":
		client, err := distance.NewORSClient(cfg.ORSAPIKey, cfg.ORSBaseURL, cfg.ORSRatePerSecond)
		if err != nil {
			return nil, err
		}
		g, err := distance.NewORSGeocoder(client, cfg.GeocodeCountry)
		if err != nil {
			return nil, err
		}
		chain = append(chain, g)
	case "static":
		return chain, nil
	}

	return geocode.NewCachingGeocoder(chain, gc)
}
