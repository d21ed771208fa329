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

// SQLite backed cache for origin->destination legs. Keys are expected to be
// consistent (domain.Coordinates.Key) by the caller.
type SqliteDistanceCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSqliteDistanceCache(db *sql.DB, maxAge time.Duration) *SqliteDistanceCache {
	return &SqliteDistanceCache{DB: db, MaxAge: maxAge}
}

// Fetch cached legs for one origin and multiple destinations.
func (s *SqliteDistanceCache) GetMany(
	ctx context.Context,
	profile string,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.sqlite.GetMany")(&err)

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

	args := make([]any, 0, 3+len(uniq))
	args = append(args, profile, origin, cutoff(s.MaxAge))
	for _, d := range uniq {
		args = append(args, d)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        destination,
        distance_meters,
        duration_seconds
    FROM distance_cache
    WHERE profile = ?
        AND origin = ?
        AND updated_at >= ?
        AND destination IN (%s);
	`, sqlitePlaceholders(len(uniq)))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	return scanDistanceRows(rows, len(uniq))
}

// Store many cached legs for a single origin.
func (s *SqliteDistanceCache) PutMany(
	ctx context.Context,
	profile string,
	origin string,
	results map[string]ports.DistanceResult,
) error {
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
	INSERT OR REPLACE INTO distance_cache (
        profile,
        origin,
        destination,
        distance_meters,
        duration_seconds,
        updated_at
    )
    VALUES (?, ?, ?, ?, ?, ?)
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
