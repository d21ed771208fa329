package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type osrmTableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// OSRMTableProvider implements ports.MatrixProvider with the OSRM table
// service. Drive-no-tolls adds exclude=toll, which the server's car profile
// must support.
type OSRMTableProvider struct {
	session *http.Client
	baseURL string
	limiter *rate.Limiter
	cache   ports.DistanceCache
}

// NewOSRMTableProvider targets baseURL ("" selects the public demo server).
func NewOSRMTableProvider(baseURL string, perSecond float64, cache ports.DistanceCache) *OSRMTableProvider {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	return &OSRMTableProvider{
		session: &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: newLimiter(perSecond),
		cache:   cache,
	}
}

func osrmProfile(mode domain.TransportMode) string {
	if mode.Driving() {
		return "driving"
	}
	return "foot"
}

// osrmCacheProfile keeps toll-free results apart from the plain car profile.
func osrmCacheProfile(mode domain.TransportMode) string {
	if mode == domain.ModeDriveNoTolls {
		return "osrm-driving-notoll"
	}
	return "osrm-" + osrmProfile(mode)
}

func (p *OSRMTableProvider) GetMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
	mode domain.TransportMode,
) (_ *domain.Matrix, err error) {
	defer obs.Time(ctx, "osrm.GetMatrix")(&err)

	if len(coords) == 0 {
		return nil, errors.New("OSRM table: no coordinates")
	}

	mode = mode.RoutingMode()
	cacheProfile := osrmCacheProfile(mode)

	if m, ok := cachedMatrix(ctx, p.cache, cacheProfile, coords); ok {
		return m, nil
	}

	locs := make([]string, len(coords))
	for i, c := range coords {
		locs[i] = strconv.FormatFloat(c.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lat, 'f', 6, 64)
	}
	endpoint := fmt.Sprintf("%s/table/v1/%s/%s", p.baseURL, osrmProfile(mode), strings.Join(locs, ";"))

	resp, err := doWithRetry(ctx, p.session, p.limiter, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		q := req.URL.Query()
		q.Set("annotations", "distance,duration")
		if mode == domain.ModeDriveNoTolls {
			q.Set("exclude", "toll")
		}
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("OSRM table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode OSRM table response: %w", err)
	}
	if tr.Code != "Ok" {
		return nil, fmt.Errorf("OSRM table: code %q: %s", tr.Code, tr.Message)
	}

	distances, err := denseRows("distances", tr.Distances, len(coords))
	if err != nil {
		return nil, fmt.Errorf("OSRM table: %w", err)
	}
	durations, err := denseRows("durations", tr.Durations, len(coords))
	if err != nil {
		return nil, fmt.Errorf("OSRM table: %w", err)
	}

	m, err := domain.MatrixFromRows(distances, durations)
	if err != nil {
		return nil, fmt.Errorf("OSRM table: %w", err)
	}

	storeMatrix(ctx, p.cache, cacheProfile, coords, m)
	return m, nil
}
