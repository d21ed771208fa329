package geocode

import (
	"context"
	"errors"
	"itinerary-planner-service/internal/domain"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNominatimGeocoder(t *testing.T) {
	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			http.NotFound(w, r)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")

		w.Header().Set("Content-Type", "application/json")
		if gotQuery == "Nowhere" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"35.6586","lon":"139.7454","display_name":"Tokyo Tower"}]`))
	}))
	defer srv.Close()

	g, err := NewNominatimGeocoder(srv.URL, "itinerary-planner-test", 100)
	require.NoError(t, err)

	c, err := g.Geocode(context.Background(), "  Tokyo   Tower ")
	require.NoError(t, err)
	require.InDelta(t, 35.6586, c.Lat, 1e-9)
	require.InDelta(t, 139.7454, c.Lon, 1e-9)
	require.Equal(t, "itinerary-planner-test", gotUA)
	require.Equal(t, "Tokyo Tower", gotQuery)

	_, err = g.Geocode(context.Background(), "Nowhere")
	require.Error(t, err)
}

func TestNominatimGeocoderRequiresUserAgent(t *testing.T) {
	_, err := NewNominatimGeocoder("", " ", 1)
	require.Error(t, err)
}

func TestNominatimGeocoderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	g, err := NewNominatimGeocoder(srv.URL, "ua", 100)
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "Tokyo Tower")
	require.ErrorContains(t, err, "403")
}

type memoryCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinates
}

func (c *memoryCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memoryCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

type countingGeocoder struct {
	calls atomic.Int64
	c     domain.Coordinates
	err   error
}

func (g *countingGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	g.calls.Add(1)
	return g.c, g.err
}

func TestCachingGeocoder(t *testing.T) {
	upstream := &countingGeocoder{c: domain.Coordinates{Lat: 35.71, Lon: 139.79}}
	cache := &memoryCache{m: map[string]domain.Coordinates{}}

	g, err := NewCachingGeocoder(upstream, cache)
	require.NoError(t, err)

	c1, err := g.Geocode(context.Background(), "Senso-ji")
	require.NoError(t, err)
	c2, err := g.Geocode(context.Background(), " Senso-ji ")
	require.NoError(t, err)

	require.Equal(t, c1, c2)
	require.EqualValues(t, 1, upstream.calls.Load())
	require.Contains(t, cache.m, "senso-ji")
}

func TestCachingGeocoderDoesNotCacheFailures(t *testing.T) {
	upstream := &countingGeocoder{err: errors.New("no results")}
	cache := &memoryCache{m: map[string]domain.Coordinates{}}

	g, err := NewCachingGeocoder(upstream, cache)
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "Atlantis")
	require.Error(t, err)
	_, err = g.Geocode(context.Background(), "Atlantis")
	require.Error(t, err)

	require.EqualValues(t, 2, upstream.calls.Load())
	require.Empty(t, cache.m)
}

func TestStaticGeocoderAndFallback(t *testing.T) {
	static := NewStaticGeocoder(map[string]domain.Coordinates{
		"Tokyo Station": {Lat: 35.6812, Lon: 139.7671},
	})

	c, err := static.Geocode(context.Background(), "tokyo  station")
	require.NoError(t, err)
	require.Equal(t, 35.6812, c.Lat)

	upstream := &countingGeocoder{c: domain.Coordinates{Lat: 1, Lon: 2}}
	chain := Fallback{static, upstream}

	c, err = chain.Geocode(context.Background(), "Tokyo Station")
	require.NoError(t, err)
	require.Equal(t, 139.7671, c.Lon)
	require.EqualValues(t, 0, upstream.calls.Load())

	c, err = chain.Geocode(context.Background(), "Elsewhere")
	require.NoError(t, err)
	require.Equal(t, domain.Coordinates{Lat: 1, Lon: 2}, c)

	_, err = Fallback{static}.Geocode(context.Background(), "Elsewhere")
	require.ErrorContains(t, err, "unknown place")
}
