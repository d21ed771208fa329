package services

import (
	"context"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"log"
	"time"
)

// MatrixBuilder fetches the travel matrix for one planning run and falls back
// to the estimator when the provider fails, so routing outages degrade the
// plan instead of aborting it.
type MatrixBuilder struct {
	Provider  ports.MatrixProvider
	Estimator ports.MatrixEstimator
	Timeout   time.Duration
}

func NewMatrixBuilder(provider ports.MatrixProvider, estimator ports.MatrixEstimator, timeout time.Duration) *MatrixBuilder {
	return &MatrixBuilder{Provider: provider, Estimator: estimator, Timeout: timeout}
}

// Build returns a complete N×N matrix. A provider result is used only when it
// is whole and valid; otherwise the estimator fills the entire matrix.
func (b *MatrixBuilder) Build(
	ctx context.Context,
	coords []domain.Coordinates,
	mode domain.TransportMode,
) (_ *domain.Matrix, err error) {
	defer obs.Time(ctx, "matrix.Build")(&err)

	if b.Estimator == nil {
		return nil, errors.New("build matrix: estimator is nil")
	}

	routing := mode.RoutingMode()

	if b.Provider != nil {
		m, perr := b.fetch(ctx, coords, routing)
		if perr == nil {
			return m, nil
		}

		// A cancelled request is abandoned, not estimated.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("build matrix: %w", ctx.Err())
		}

		log.Printf("req_id=%s routing unavailable mode=%s stops=%d: %v",
			obs.RequestID(ctx), routing, len(coords), perr)
		obs.RoutingFallbacks.WithLabelValues(string(routing)).Inc()
	}

	m := b.Estimator.Estimate(coords, routing)
	m.Source = domain.SourceEstimated
	return m, nil
}

func (b *MatrixBuilder) fetch(
	ctx context.Context,
	coords []domain.Coordinates,
	mode domain.TransportMode,
) (*domain.Matrix, error) {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	m, err := b.Provider.GetMatrix(ctx, coords, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRoutingUnavailable, err)
	}
	if m == nil || m.Size() != len(coords) {
		return nil, fmt.Errorf("%w: provider returned an incomplete matrix", domain.ErrRoutingUnavailable)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRoutingUnavailable, err)
	}

	m.Source = domain.SourceProvider
	return m, nil
}
