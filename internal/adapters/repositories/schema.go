package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/platform/db"
)

// InitSchema creates the distance and geocode cache tables for dialect d.
func InitSchema(ctx context.Context, conn *sql.DB, d db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	floatType := "REAL"
	intType := "INTEGER"
	if d == db.Postgres {
		floatType = "DOUBLE PRECISION"
		intType = "BIGINT"
	}

	createDistanceCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS distance_cache (
        profile TEXT NOT NULL,
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters %[1]s NOT NULL,
        duration_seconds %[1]s NOT NULL,
        updated_at %[2]s NOT NULL,
        PRIMARY KEY (profile, origin, destination)
    );
	`, floatType, intType)

	createGeocodeCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon %[1]s NOT NULL,
        lat %[1]s NOT NULL,
        source TEXT NOT NULL DEFAULT 'lookup',
        updated_at %[2]s NOT NULL
    );
	`, floatType, intType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distance_cache_updated_at
    ON distance_cache(updated_at);
	`

	statements := []string{
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
