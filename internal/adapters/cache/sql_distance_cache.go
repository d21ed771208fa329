package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"strings"
	"time"
)

// SQLDistanceCache is a Postgres-backed cache for origin->destination legs,
// partitioned by routing profile. Rows older than MaxAge are treated as
// misses so road changes eventually reach the cache.
type SQLDistanceCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSQLDistanceCache(db *sql.DB, maxAge time.Duration) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db, MaxAge: maxAge}
}

// Fetch cached legs for one origin and multiple destinations.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	profile string,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}
	if profile == "" || origin == "" {
		return nil, errors.New("get distance cache: profile and origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	q := `
	SELECT destination, distance_meters, duration_seconds
    FROM distance_cache
    WHERE profile = $1
        AND origin = $2
        AND destination = ANY($3::text[])
        AND updated_at >= $4;
	`

	rows, err := s.DB.QueryContext(ctx, q, profile, origin, uniq, cutoff(s.MaxAge))
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	return scanDistanceRows(rows, len(uniq))
}

// Store many cached legs for a single origin.
func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	profile string,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}
	if profile == "" || origin == "" {
		return errors.New("insert distance cache: profile and origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (profile, origin, destination, distance_meters, duration_seconds, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (profile, origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		updated_at = EXCLUDED.updated_at;
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert distance cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, profile, origin, dest, r.DistanceMeters, r.DurationSeconds, now); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}

func scanDistanceRows(rows *sql.Rows, size int) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, size)
	for rows.Next() {
		var dest string
		var meters, seconds float64
		if err := rows.Scan(&dest, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[dest] = ports.DistanceResult{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}
	return out, nil
}
