package main

import (
	"context"
	"flag"
	"itinerary-planner-service/internal/adapters/cache"
	"itinerary-planner-service/internal/adapters/repositories"
	"itinerary-planner-service/internal/config"
	"itinerary-planner-service/internal/platform/db"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// dbtool creates the cache tables and seeds the geocode cache with the known
// places file. Seeded rows never expire.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	backend := flag.String("backend", cfg.CacheBackend, "cache backend: sqlite, postgres or redis")
	seedPath := flag.String("seed", cfg.KnownPlacesPath, "known places JSON file (empty to skip seeding)")
	flag.Parse()

	ctx := context.Background()

	var seeder repositories.PlaceSeeder
	switch strings.ToLower(*backend) {
	case "redis":
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()
		seeder = cache.NewRedisGeocodeCache(rdb, cfg.CacheMaxAge)

	default:
		dialect, err := db.ParseDialect(*backend)
		if err != nil {
			log.Fatal(err)
		}
		dsn := cfg.DBPath
		if dialect == db.Postgres {
			dsn = cfg.DatabaseURL
			if strings.TrimSpace(dsn) == "" {
				log.Fatal("DATABASE_URL is required")
			}
		}

		conn, err := db.Open(ctx, dialect, dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		log.Println("Initializing database schema...")
		if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")

		if dialect == db.Postgres {
			seeder = cache.NewSQLGeocodeCache(conn, cfg.CacheMaxAge)
		} else {
			seeder = cache.NewSqliteGeocodeCache(conn, cfg.CacheMaxAge)
		}
	}

	if *seedPath == "" {
		return
	}

	log.Println("Seeding known places...")
	n, err := repositories.SeedPlacesFromJSON(ctx, seeder, *seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. places=%d", n)
}
