package distance

import (
	"context"
	"encoding/json"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/ports"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	tokyoTower   = domain.Coordinates{Lat: 35.6586, Lon: 139.7454}
	tokyoStation = domain.Coordinates{Lat: 35.6812, Lon: 139.7671}
	sensoji      = domain.Coordinates{Lat: 35.7148, Lon: 139.7967}
)

type memoryDistanceCache struct {
	mu   sync.Mutex
	rows map[string]map[string]ports.DistanceResult
}

func newMemoryDistanceCache() *memoryDistanceCache {
	return &memoryDistanceCache{rows: map[string]map[string]ports.DistanceResult{}}
}

func (c *memoryDistanceCache) GetMany(ctx context.Context, profile, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]ports.DistanceResult)
	for _, d := range destinations {
		if r, ok := c.rows[profile+"|"+origin][d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *memoryDistanceCache) PutMany(ctx context.Context, profile, origin string, results map[string]ports.DistanceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.rows[profile+"|"+origin]
	if !ok {
		row = map[string]ports.DistanceResult{}
		c.rows[profile+"|"+origin] = row
	}
	for k, v := range results {
		row[k] = v
	}
	return nil
}

const orsMatrixBody = `{
  "distances": [[0, 2900.5, 6100], [2950, 0, 4200], [6050, 4100, 0]],
  "durations": [[0, 2100, 4400], [2120, 0, 3000], [4390, 2990, 0]]
}`

func TestORSMatrixProvider(t *testing.T) {
	var hits atomic.Int64
	var gotPath, gotAuth string
	var gotReq matrixRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(orsMatrixBody))
	}))
	defer srv.Close()

	client, err := NewORSClient("secret", srv.URL, 0)
	require.NoError(t, err)
	cache := newMemoryDistanceCache()
	p, err := NewORSMatrixProvider(client, cache)
	require.NoError(t, err)

	coords := []domain.Coordinates{tokyoTower, tokyoStation, sensoji}
	m, err := p.GetMatrix(context.Background(), coords, domain.ModePublicTransport)
	require.NoError(t, err)

	require.Equal(t, "/v2/matrix/foot-walking", gotPath)
	require.Equal(t, "secret", gotAuth)
	require.Len(t, gotReq.Locations, 3)
	require.Equal(t, []float64{139.7454, 35.6586}, gotReq.Locations[0])
	require.Equal(t, 3, m.Size())
	require.Equal(t, 2900.5, m.At(0, 1).DistanceMeters)
	require.Equal(t, 2990.0, m.At(2, 1).DurationSeconds)

	// Second call is served from the cache.
	again, err := p.GetMatrix(context.Background(), coords, domain.ModeWalk)
	require.NoError(t, err)
	require.EqualValues(t, 1, hits.Load())
	require.Equal(t, m.At(1, 2), again.At(1, 2))

	// A different profile is a cache miss.
	_, err = p.GetMatrix(context.Background(), coords, domain.ModeDriveWithTolls)
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())
	require.Equal(t, "/v2/matrix/driving-car", gotPath)
}

func TestORSMatrixProviderRejectsNullCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"distances":[[0,null],[10,0]],"durations":[[0,5],[5,0]]}`))
	}))
	defer srv.Close()

	client, err := NewORSClient("k", srv.URL, 0)
	require.NoError(t, err)
	p, err := NewORSMatrixProvider(client, nil)
	require.NoError(t, err)

	_, err = p.GetMatrix(context.Background(), []domain.Coordinates{tokyoTower, tokyoStation}, domain.ModeWalk)
	require.ErrorContains(t, err, "no value for 0 -> 1")
}

func TestORSClientRetriesTransientErrors(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"distances":[[0,10],[10,0]],"durations":[[0,5],[5,0]]}`))
	}))
	defer srv.Close()

	client, err := NewORSClient("k", srv.URL, 0)
	require.NoError(t, err)
	p, err := NewORSMatrixProvider(client, nil)
	require.NoError(t, err)

	m, err := p.GetMatrix(context.Background(), []domain.Coordinates{tokyoTower, tokyoStation}, domain.ModeWalk)
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())
	require.Equal(t, 10.0, m.At(1, 0).DistanceMeters)
}

func TestORSClientDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := NewORSClient("k", srv.URL, 0)
	require.NoError(t, err)
	p, err := NewORSMatrixProvider(client, nil)
	require.NoError(t, err)

	_, err = p.GetMatrix(context.Background(), []domain.Coordinates{tokyoTower, tokyoStation}, domain.ModeWalk)
	require.ErrorContains(t, err, "Code 403")
	require.EqualValues(t, 1, hits.Load())
}

func TestORSGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("text") != "Tokyo Tower" || r.URL.Query().Get("boundary.country") != "JP" {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[139.7454,35.6586]}}]}`))
	}))
	defer srv.Close()

	client, err := NewORSClient("k", srv.URL, 0)
	require.NoError(t, err)
	g, err := NewORSGeocoder(client, "JP")
	require.NoError(t, err)

	c, err := g.Geocode(context.Background(), "Tokyo  Tower")
	require.NoError(t, err)
	require.Equal(t, tokyoTower, c)

	_, err = g.Geocode(context.Background(), "Atlantis")
	require.ErrorContains(t, err, "no geocode results")
}

func TestOSRMTableProvider(t *testing.T) {
	var gotPath, gotExclude, gotAnnotations string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotExclude = r.URL.Query().Get("exclude")
		gotAnnotations = r.URL.Query().Get("annotations")
		_, _ = w.Write([]byte(`{"code":"Ok","distances":[[0,3100],[3050,0]],"durations":[[0,420],[410,0]]}`))
	}))
	defer srv.Close()

	p := NewOSRMTableProvider(srv.URL, 0, nil)
	m, err := p.GetMatrix(context.Background(), []domain.Coordinates{tokyoTower, tokyoStation}, domain.ModeDriveNoTolls)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(gotPath, "/table/v1/driving/139.745400,35.658600;"), gotPath)
	require.Equal(t, "toll", gotExclude)
	require.Equal(t, "distance,duration", gotAnnotations)
	require.Equal(t, 410.0, m.At(1, 0).DurationSeconds)

	_, err = p.GetMatrix(context.Background(), []domain.Coordinates{tokyoTower, tokyoStation}, domain.ModeWalk)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(gotPath, "/table/v1/foot/"), gotPath)
	require.Empty(t, gotExclude)
}

func TestOSRMTableProviderErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoTable","message":"no route"}`))
	}))
	defer srv.Close()

	p := NewOSRMTableProvider(srv.URL, 0, nil)
	_, err := p.GetMatrix(context.Background(), []domain.Coordinates{tokyoTower, tokyoStation}, domain.ModeWalk)
	require.ErrorContains(t, err, "NoTable")
}

func TestHaversine(t *testing.T) {
	d := HaversineMeters(tokyoTower, tokyoStation)
	require.InDelta(t, 3200, d, 500)

	d = HaversineMeters(domain.Coordinates{Lat: 0, Lon: 0}, domain.Coordinates{Lat: 0, Lon: 1})
	require.InDelta(t, 111195, d, 50)
}

func TestHaversineEstimator(t *testing.T) {
	e := NewHaversineEstimator(0, 60)
	coords := []domain.Coordinates{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 0}}

	m := e.Estimate(coords, domain.ModeDriveWithTolls)
	require.True(t, m.Estimated())
	require.NoError(t, m.Validate())
	require.InDelta(t, 111195/(60/3.6), m.At(0, 1).DurationSeconds, 1)
	require.Equal(t, m.At(0, 1).DistanceMeters, m.At(1, 0).DistanceMeters)

	walk := e.Estimate(coords, domain.ModePublicTransport)
	require.InDelta(t, 111195/(DefaultWalkSpeedKmh/3.6), walk.At(0, 1).DurationSeconds, 10)
}

func TestMockMatrixProvider(t *testing.T) {
	p := NewMockMatrixProvider(
		map[string]domain.Coordinates{"T": tokyoTower, "S": tokyoStation},
		[]MockPair{{From: "T", To: "S", Meters: 2900, Seconds: 2100}},
	)

	m, err := p.GetMatrix(context.Background(), []domain.Coordinates{tokyoStation, tokyoTower}, domain.ModeWalk)
	require.NoError(t, err)
	require.Equal(t, 2900.0, m.At(0, 1).DistanceMeters)
	require.Equal(t, 1, p.Calls())

	_, err = p.GetMatrix(context.Background(), []domain.Coordinates{tokyoStation, sensoji}, domain.ModeWalk)
	require.Error(t, err)
}
