package services

import (
	"context"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StopInput is one requested location before geocoding.
// Coord, when set, takes precedence over Address.
type StopInput struct {
	Name    string
	Address string
	Coord   *domain.Coordinates
	Stay    time.Duration
	Window  *domain.OpeningWindow
	Role    domain.Role
}

type PlanItineraryRequest struct {
	Stops     []StopInput
	Mode      domain.TransportMode
	DepartAt  time.Time
	Threshold float64
}

// Planner runs the planning pipeline: geocode, matrix, optimize, schedule.
// A Planner holds no per-request state and may serve requests concurrently.
type Planner struct {
	Geocoder           ports.Geocoder
	Matrix             *MatrixBuilder
	Tolls              ports.TollCalculator
	GeocodeConcurrency int
}

func NewPlanner(geocoder ports.Geocoder, matrix *MatrixBuilder, tolls ports.TollCalculator) *Planner {
	return &Planner{
		Geocoder:           geocoder,
		Matrix:             matrix,
		Tolls:              tolls,
		GeocodeConcurrency: 4,
	}
}

// Plan produces a complete itinerary or fails with domain.ErrInvalidInput or
// domain.ErrGeocodingFailed. Routing outages and opening-hour conflicts never
// fail the request; they surface as Plan.Estimated and schedule warnings.
func (p *Planner) Plan(ctx context.Context, req PlanItineraryRequest) (_ *domain.Plan, err error) {
	defer obs.Time(ctx, "planner.Plan")(&err)
	defer func() {
		if err != nil {
			obs.PlanFailures.WithLabelValues(failureKind(err)).Inc()
		}
	}()

	if err := req.Mode.Validate(); err != nil {
		return nil, fmt.Errorf("plan itinerary: %w", err)
	}
	if req.DepartAt.IsZero() {
		return nil, domain.InvalidInput("depart_at", "is required")
	}

	cost, err := NewCostModel(req.Threshold)
	if err != nil {
		return nil, err
	}

	stops := newStops(req.Stops)
	start, end, err := domain.Endpoints(stops)
	if err != nil {
		return nil, err
	}

	if err := p.resolveStops(ctx, stops, req.Stops); err != nil {
		return nil, err
	}

	coords := make([]domain.Coordinates, len(stops))
	for i, s := range stops {
		coords[i] = s.Coord
	}

	if p.Matrix == nil {
		return nil, errors.New("plan itinerary: matrix builder is nil")
	}
	m, err := p.Matrix.Build(ctx, coords, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("plan itinerary: build matrix: %w", err)
	}

	tour, err := NewOptimizer(cost).Optimize(m, start, end)
	if err != nil {
		return nil, fmt.Errorf("plan itinerary: optimize: %w", err)
	}

	schedule, err := BuildSchedule(tour, stops, req.DepartAt, m)
	if err != nil {
		return nil, fmt.Errorf("plan itinerary: schedule: %w", err)
	}

	toll := 0.0
	if req.Mode.UsesTolls() && p.Tolls != nil {
		toll, err = p.Tolls.Total(ctx, tour, tour.LegDistances(m))
		if err != nil {
			return nil, fmt.Errorf("plan itinerary: toll lookup: %w", err)
		}
		if toll < 0 {
			return nil, fmt.Errorf("plan itinerary: toll lookup returned negative total %v", toll)
		}
	}

	totals := tour.Totals(m)
	plan := &domain.Plan{
		ID:                   uuid.NewString(),
		DepartAt:             req.DepartAt,
		Mode:                 req.Mode,
		Threshold:            cost.Threshold,
		Stops:                stops,
		Tour:                 tour,
		Schedule:             schedule,
		TotalDistanceMeters:  totals.DistanceMeters,
		TotalDurationSeconds: totals.DurationSeconds,
		TollTotal:            toll,
		TotalCost:            toll,
		Estimated:            m.Estimated(),
		Notes:                planNotes(req.Mode, m),
	}

	for _, e := range plan.Warnings() {
		obs.ScheduleWarnings.WithLabelValues(string(e.Warning)).Inc()
	}
	obs.PlansTotal.WithLabelValues(string(req.Mode), string(m.Source)).Inc()

	return plan, nil
}

// newStops copies the request inputs into domain stops without coordinates.
func newStops(inputs []StopInput) []domain.Stop {
	stops := make([]domain.Stop, len(inputs))
	for i, in := range inputs {
		stops[i] = domain.Stop{
			Index:   i,
			Name:    strings.TrimSpace(in.Name),
			Address: strings.TrimSpace(in.Address),
			Stay:    in.Stay,
			Window:  in.Window,
			Role:    in.Role,
		}
	}
	return stops
}

// resolveStops fills in the coordinates of stops. Explicit coordinates are
// used as given; addresses are geocoded concurrently and, when several fail,
// the lowest stop index is reported.
func (p *Planner) resolveStops(ctx context.Context, stops []domain.Stop, inputs []StopInput) error {
	pending := make([]int, 0, len(stops))
	for i, in := range inputs {
		if in.Coord != nil {
			if !in.Coord.Valid() {
				return domain.InvalidInput(fmt.Sprintf("stops[%d].location", i), "coordinate out of range")
			}
			stops[i].Coord = *in.Coord
			continue
		}
		if stops[i].Address == "" {
			// A bare place name is looked up as its own address.
			stops[i].Address = stops[i].Name
		}
		if stops[i].Address == "" {
			return domain.InvalidInput(fmt.Sprintf("stops[%d]", i), "address, name or location is required")
		}
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return nil
	}
	if p.Geocoder == nil {
		return errors.New("plan itinerary: geocoder is nil")
	}

	limit := p.GeocodeConcurrency
	if limit <= 0 {
		limit = 1
	}

	errs := make([]error, len(stops))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, i := range pending {
		i := i
		g.Go(func() error {
			c, err := p.Geocoder.Geocode(gctx, stops[i].Address)
			if err != nil {
				errs[i] = &domain.GeocodingError{StopIndex: i, Address: stops[i].Address, Err: err}
				return nil
			}
			stops[i].Coord = c
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("plan itinerary: geocode stops: %w", err)
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func planNotes(mode domain.TransportMode, m *domain.Matrix) []string {
	notes := make([]string, 0, 2)
	if mode == domain.ModePublicTransport {
		notes = append(notes, "public transport routing is not available; walking times are used")
	}
	if m.Estimated() {
		notes = append(notes, "routing service unavailable; distances and times are straight-line estimates")
	}
	return notes
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrGeocodingFailed):
		return "geocoding_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "internal"
}
