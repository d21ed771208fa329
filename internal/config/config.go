package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the composition roots need. Only cmd/ reads it;
// services receive plain values through their constructors.
type Config struct {
	Port string

	CacheBackend string // sqlite | postgres | redis | none
	DBPath       string
	DatabaseURL  string
	RedisURL     string
	CacheMaxAge  time.Duration

	RoutingProvider  string // ors | osrm | none
	ORSAPIKey        string
	ORSBaseURL       string
	ORSRatePerSecond float64
	OSRMBaseURL      string
	RoutingTimeout   time.Duration

	Geocoder           string // nominatim | ors | static
	NominatimBaseURL   string
	NominatimUserAgent string
	GeocodeCountry     string
	KnownPlacesPath    string

	WalkSpeedKmh       float64
	DriveSpeedKmh      float64
	DefaultThreshold   float64
	GeocodeConcurrency int

	LineChannelToken string
}

// Load reads .env (if present) and the environment. When PLANNER_CONFIG
// names a YAML file, its values override the planner tuning defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := &Config{
		Port: Get("PORT", "8080"),

		CacheBackend: strings.ToLower(Get("CACHE_BACKEND", "sqlite")),
		DBPath:       Get("DB_PATH", "data/app.db"),
		DatabaseURL:  Get("DATABASE_URL", ""),
		RedisURL:     Get("REDIS_URL", "redis://localhost:6379/0"),
		CacheMaxAge:  getDuration("CACHE_MAX_AGE", 30*24*time.Hour),

		RoutingProvider:  strings.ToLower(Get("ROUTING_PROVIDER", "osrm")),
		ORSAPIKey:        Get("ORS_API_KEY", ""),
		ORSBaseURL:       Get("ORS_BASE_URL", ""),
		ORSRatePerSecond: getFloat("ORS_RATE_PER_SECOND", 0.6),
		OSRMBaseURL:      Get("OSRM_BASE_URL", ""),
		RoutingTimeout:   getDuration("ROUTING_TIMEOUT", 20*time.Second),

		Geocoder:           strings.ToLower(Get("GEOCODER", "nominatim")),
		NominatimBaseURL:   Get("NOMINATIM_BASE_URL", ""),
		NominatimUserAgent: Get("NOMINATIM_USER_AGENT", "itinerary-planner-service"),
		GeocodeCountry:     Get("GEOCODE_COUNTRY", ""),
		KnownPlacesPath:    Get("KNOWN_PLACES_PATH", "data/seeds/places.json"),

		WalkSpeedKmh:       getFloat("WALK_SPEED_KMH", 5),
		DriveSpeedKmh:      getFloat("DRIVE_SPEED_KMH", 40),
		DefaultThreshold:   getFloat("DEFAULT_THRESHOLD", 0),
		GeocodeConcurrency: getInt("GEOCODE_CONCURRENCY", 4),

		LineChannelToken: Get("LINE_CHANNEL_ACCESS_TOKEN", ""),
	}

	if path := Get("PLANNER_CONFIG", ""); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileOverlay is the YAML layout accepted by LoadFile. Zero values leave the
// current setting untouched.
type fileOverlay struct {
	Planner struct {
		DefaultThreshold   *float64 `yaml:"default_threshold"`
		GeocodeConcurrency int      `yaml:"geocode_concurrency"`
		RoutingTimeout     string   `yaml:"routing_timeout"`
	} `yaml:"planner"`
	Speeds struct {
		WalkKmh  float64 `yaml:"walk_kmh"`
		DriveKmh float64 `yaml:"drive_kmh"`
	} `yaml:"speeds"`
	Routing struct {
		Provider string `yaml:"provider"`
		OSRMURL  string `yaml:"osrm_url"`
	} `yaml:"routing"`
}

// LoadFile applies the YAML overlay at path.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}

	var f fileOverlay
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}

	if f.Planner.DefaultThreshold != nil {
		c.DefaultThreshold = *f.Planner.DefaultThreshold
	}
	if f.Planner.GeocodeConcurrency > 0 {
		c.GeocodeConcurrency = f.Planner.GeocodeConcurrency
	}
	if f.Planner.RoutingTimeout != "" {
		d, err := time.ParseDuration(f.Planner.RoutingTimeout)
		if err != nil {
			return fmt.Errorf("config: routing_timeout: %w", err)
		}
		c.RoutingTimeout = d
	}
	if f.Speeds.WalkKmh > 0 {
		c.WalkSpeedKmh = f.Speeds.WalkKmh
	}
	if f.Speeds.DriveKmh > 0 {
		c.DriveSpeedKmh = f.Speeds.DriveKmh
	}
	if f.Routing.Provider != "" {
		c.RoutingProvider = strings.ToLower(f.Routing.Provider)
	}
	if f.Routing.OSRMURL != "" {
		c.OSRMBaseURL = f.Routing.OSRMURL
	}
	return nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "sqlite", "redis", "none":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("config: DATABASE_URL is required for CACHE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("config: unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	switch c.RoutingProvider {
	case "osrm", "none":
	case "ors":
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			return fmt.Errorf("config: ORS_API_KEY is required for ROUTING_PROVIDER=ors")
		}
	default:
		return fmt.Errorf("config: unknown ROUTING_PROVIDER %q", c.RoutingProvider)
	}

	switch c.Geocoder {
	case "nominatim", "static":
	case "ors":
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			return fmt.Errorf("config: ORS_API_KEY is required for GEOCODER=ors")
		}
	default:
		return fmt.Errorf("config: unknown GEOCODER %q", c.Geocoder)
	}

	if c.DefaultThreshold < 0 || c.DefaultThreshold >= 1 {
		return fmt.Errorf("config: DEFAULT_THRESHOLD must be in [0, 1), got %v", c.DefaultThreshold)
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("config: ignoring malformed %s=%q", key, v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: ignoring malformed %s=%q", key, v)
	}
	return fallback
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("config: ignoring malformed %s=%q", key, v)
	return fallback
}
