package cache

import (
	"context"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	redis "github.com/redis/go-redis/v9"
)

const redisPrefix = "itinerary"

// NewRedisClient connects to url (redis://...) and pings it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// hashKey keeps Redis keys short and uniform whatever the address length.
func hashKey(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}

// RedisDistanceCache stores one hash per (profile, origin); fields are
// destination keys and values are "meters,seconds". The hash expires TTL
// after its last write.
type RedisDistanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDistanceCache(rdb *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{rdb: rdb, ttl: ttl}
}

func (c *RedisDistanceCache) key(profile, origin string) string {
	return fmt.Sprintf("%s:dist:%s:%s", redisPrefix, profile, hashKey(origin))
}

func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	profile string,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if c.rdb == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}
	if profile == "" || origin == "" {
		return nil, errors.New("get distance cache: profile and origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	out := make(map[string]ports.DistanceResult, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	vals, err := c.rdb.HMGet(ctx, c.key(profile, origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: hmget: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		r, err := parseLeg(s)
		if err != nil {
			return nil, fmt.Errorf("get distance cache dest=%q: %w", uniq[i], err)
		}
		out[uniq[i]] = r
	}
	return out, nil
}

func (c *RedisDistanceCache) PutMany(
	ctx context.Context,
	profile string,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	if c.rdb == nil {
		return errors.New("distance cache: redis client is nil")
	}
	if profile == "" || origin == "" {
		return errors.New("insert distance cache: profile and origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	fields := make(map[string]any, len(results))
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert distance cache: empty destination key")
		}
		fields[dest] = formatLeg(r)
	}

	key := c.key(profile, origin)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert distance cache: %w", err)
	}
	return nil
}

func formatLeg(r ports.DistanceResult) string {
	return strconv.FormatFloat(r.DistanceMeters, 'f', -1, 64) + "," +
		strconv.FormatFloat(r.DurationSeconds, 'f', -1, 64)
}

func parseLeg(s string) (ports.DistanceResult, error) {
	m, sec, ok := strings.Cut(s, ",")
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("malformed value %q", s)
	}
	meters, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("malformed distance %q: %w", m, err)
	}
	seconds, err := strconv.ParseFloat(sec, 64)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("malformed duration %q: %w", sec, err)
	}
	return ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}, nil
}

// RedisGeocodeCache stores one string key per address with value "lat,lon".
// Seeded places are written without expiry.
type RedisGeocodeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGeocodeCache(rdb *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{rdb: rdb, ttl: ttl}
}

func (c *RedisGeocodeCache) key(address string) string {
	return fmt.Sprintf("%s:geo:%s", redisPrefix, hashKey(address))
}

func (c *RedisGeocodeCache) GetMany(ctx context.Context, addresses []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.redis.GetMany")(&err)

	if c.rdb == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueKeys(addresses)
	out := make(map[string]domain.Coordinates, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = c.key(a)
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		lat, lon, ok := strings.Cut(s, ",")
		if !ok {
			return nil, fmt.Errorf("get geocode cache %q: malformed value %q", uniq[i], s)
		}
		la, err1 := strconv.ParseFloat(lat, 64)
		lo, err2 := strconv.ParseFloat(lon, 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("get geocode cache %q: malformed value %q", uniq[i], s)
		}
		out[uniq[i]] = domain.Coordinates{Lat: la, Lon: lo}
	}
	return out, nil
}

func (c *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	return c.put(ctx, c.ttl, results)
}

// PutSeeds stores known places that never expire.
func (c *RedisGeocodeCache) PutSeeds(ctx context.Context, places map[string]domain.Coordinates) error {
	return c.put(ctx, 0, places)
}

func (c *RedisGeocodeCache) put(ctx context.Context, ttl time.Duration, results map[string]domain.Coordinates) error {
	if c.rdb == nil {
		return errors.New("geocode cache: redis client is nil")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := c.rdb.TxPipeline()
	for addr, coord := range results {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}
		v := strconv.FormatFloat(coord.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(coord.Lon, 'f', -1, 64)
		pipe.Set(ctx, c.key(addr), v, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: %w", err)
	}
	return nil
}
