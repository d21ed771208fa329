package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
	Units     string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchMatrix retrieves the full N×N distance and duration tables for
// locations ([lon, lat] pairs) from the OpenRouteService matrix endpoint.
func (o *ORSClient) fetchMatrix(
	ctx context.Context,
	profile string,
	locations [][]float64,
) ([][]float64, [][]float64, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, profile)

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance", "duration"},
		Units:     "m",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, nil, fmt.Errorf("decode matrix response: %w", err)
	}

	distances, err := denseRows("distances", mr.Distances, len(locations))
	if err != nil {
		return nil, nil, err
	}
	durations, err := denseRows("durations", mr.Durations, len(locations))
	if err != nil {
		return nil, nil, err
	}

	return distances, durations, nil
}

// denseRows converts a nullable n×n table into plain floats. A null cell
// means the pair is unroutable, which makes the whole table unusable.
func denseRows(name string, rows [][]*float64, n int) ([][]float64, error) {
	if len(rows) != n {
		return nil, fmt.Errorf("%s: expected %d rows, got %d", name, n, len(rows))
	}

	out := make([][]float64, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%s: row %d has %d cells, want %d", name, i, len(row), n)
		}
		out[i] = make([]float64, n)
		for j, v := range row {
			if v == nil {
				if i == j {
					continue
				}
				return nil, fmt.Errorf("%s: no value for %d -> %d", name, i, j)
			}
			out[i][j] = *v
		}
	}
	return out, nil
}
