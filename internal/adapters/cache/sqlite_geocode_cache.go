package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"strings"
	"time"
)

// SQLite backed cache mapping address keys (domain.AddressKey) to
// coordinates.
type SqliteGeocodeCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSqliteGeocodeCache(db *sql.DB, maxAge time.Duration) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db, MaxAge: maxAge}
}

// Fetch cached coordinates for the given address keys.
func (s *SqliteGeocodeCache) GetMany(ctx context.Context, addresses []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	args := make([]any, 0, 2+len(uniq))
	args = append(args, SourceSeed, cutoff(s.MaxAge))
	for _, a := range uniq {
		args = append(args, a)
	}

	q := fmt.Sprintf(`
	SELECT
        address,
        lon,
        lat
    FROM geocode_cache
    WHERE (source = ? OR updated_at >= ?)
        AND address IN (%s);
	`, sqlitePlaceholders(len(uniq)))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanGeocodeRows(rows, len(uniq))
}

// Store address -> coordinate mappings resolved by a geocoder.
func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	return s.put(ctx, SourceLookup, results)
}

// PutSeeds stores known places that never expire.
func (s *SqliteGeocodeCache) PutSeeds(ctx context.Context, places map[string]domain.Coordinates) error {
	return s.put(ctx, SourceSeed, places)
}

func (s *SqliteGeocodeCache) put(ctx context.Context, source string, results map[string]domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO geocode_cache (
        address,
        lon,
        lat,
        source,
        updated_at
    )
    VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		if _, err := stmt.ExecContext(ctx, addr, c.Lon, c.Lat, source, now); err != nil {
			return fmt.Errorf("insert geocode cache coord=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}
