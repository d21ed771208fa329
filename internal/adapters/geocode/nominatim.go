package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NominatimGeocoder resolves addresses with the OpenStreetMap Nominatim
// search API. The public instance allows one request per second and requires
// an identifying User-Agent.
type NominatimGeocoder struct {
	session   *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

func NewNominatimGeocoder(baseURL, userAgent string, perSecond float64) (*NominatimGeocoder, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("nominatim user agent is empty")
	}
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if perSecond <= 0 {
		perSecond = 1
	}

	return &NominatimGeocoder{
		session:   &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
	}, nil
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	query := normalize(address)
	if query == "" {
		return domain.Coordinates{}, errors.New("address must be non-empty")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search", nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Coordinates{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	c := domain.Coordinates{Lat: lat, Lon: lon}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("coordinate out of range for %q", query)
	}
	return c, nil
}

// normalize collapses whitespace so equivalent addresses share cache keys.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
