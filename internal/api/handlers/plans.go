package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"itinerary-planner-service/internal/api/dto"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"itinerary-planner-service/internal/services"
	"log"
	"net/http"
	"strings"
	"time"
)

const maxBodyBytes = 1 << 20

// maxStayMinutes bounds a single visit to one day.
const maxStayMinutes = 24 * 60

type PlanHandler struct {
	Planner          *services.Planner
	Notifier         ports.Notifier
	Renderer         ports.PlanRenderer
	DefaultThreshold float64
	// Now defaults to time.Now; used when depart_at is omitted.
	Now func() time.Time
}

// Plan geocodes, optimizes and schedules the requested stops, then hands the
// itinerary text to the notifier when a recipient is given.
// ?format=geojson returns the rendered plan instead of the JSON summary.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" && format != "json" && format != "geojson" {
		writeError(w, r, http.StatusBadRequest, "format must be json or geojson")
		return
	}
	if format == "geojson" && h.Renderer == nil {
		writeError(w, r, http.StatusNotImplemented, "geojson rendering is not configured")
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	svcReq, err := h.toServiceRequest(req)
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	plan, err := h.Planner.Plan(r.Context(), svcReq)
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	delivery := dto.DeliveryResponse{Status: "sent"}
	if h.Notifier == nil || strings.TrimSpace(req.Recipient) == "" {
		delivery.Status = "skipped"
	}
	if err := services.DeliverItinerary(r.Context(), h.Notifier, req.Recipient, plan); err != nil {
		delivery = dto.DeliveryResponse{Status: "failed", Error: err.Error()}
	}

	if format == "geojson" {
		body, err := h.Renderer.Render(plan)
		if err != nil {
			log.Printf("req_id=%s plan_id=%s render failed: %v", obs.RequestID(r.Context()), plan.ID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		w.Header().Set("Content-Type", h.Renderer.ContentType())
		w.Header().Set("X-Delivery-Status", delivery.Status)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			log.Printf("write failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		}
		return
	}

	res := toPlanResponse(plan)
	res.Delivery = delivery
	writeJSON(w, r, http.StatusOK, res)
}

func (h *PlanHandler) toServiceRequest(req dto.PlanRequest) (services.PlanItineraryRequest, error) {
	mode, err := domain.ParseTransportMode(req.Mode)
	if err != nil {
		return services.PlanItineraryRequest{}, err
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	depart := now()
	if s := strings.TrimSpace(req.DepartAt); s != "" {
		depart, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return services.PlanItineraryRequest{}, domain.InvalidInput("depart_at", "expected RFC 3339 timestamp, got %q", s)
		}
	}

	threshold := h.DefaultThreshold
	switch {
	case req.Threshold != nil && req.ThresholdPct != nil:
		return services.PlanItineraryRequest{}, domain.InvalidInput("threshold", "give either threshold or threshold_pct, not both")
	case req.ThresholdPct != nil:
		pct := *req.ThresholdPct
		if pct < 0 || pct > 50 {
			return services.PlanItineraryRequest{}, domain.InvalidInput("threshold_pct", "must be between 0 and 50, got %v", pct)
		}
		threshold = pct / 100
	case req.Threshold != nil:
		threshold = *req.Threshold
	}

	stops := make([]services.StopInput, 0, len(req.Stops))
	for i, s := range req.Stops {
		if s.StayMinutes < 0 || s.StayMinutes > maxStayMinutes {
			return services.PlanItineraryRequest{}, domain.InvalidInput(
				fmt.Sprintf("stops[%d].stay_minutes", i), "must be between 0 and %d, got %v", maxStayMinutes, s.StayMinutes)
		}
		in := services.StopInput{
			Name:    strings.TrimSpace(s.Name),
			Address: strings.TrimSpace(s.Address),
			Stay:    time.Duration(s.StayMinutes * float64(time.Minute)),
			Window:  domain.ParseOpeningWindow(s.Open, s.Close),
			Role:    domain.Role(strings.ToLower(strings.TrimSpace(s.Role))),
		}
		switch {
		case s.Lat != nil && s.Lon != nil:
			in.Coord = &domain.Coordinates{Lat: *s.Lat, Lon: *s.Lon}
		case s.Lat != nil || s.Lon != nil:
			return services.PlanItineraryRequest{}, domain.InvalidInput(fmt.Sprintf("stops[%d]", i), "lat and lon must be given together")
		}
		stops = append(stops, in)
	}

	return services.PlanItineraryRequest{
		Stops:     stops,
		Mode:      mode,
		DepartAt:  depart,
		Threshold: threshold,
	}, nil
}

func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	var inputErr *domain.InputError
	var geoErr *domain.GeocodingError

	switch {
	case errors.As(err, &geoErr):
		idx := geoErr.StopIndex
		writeJSON(w, r, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:     "could not geocode stop",
			StopIndex: &idx,
			Address:   geoErr.Address,
			RequestID: obs.RequestID(r.Context()),
		})
	case errors.As(err, &inputErr):
		writeJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{
			Error:     inputErr.Error(),
			Field:     inputErr.Field,
			RequestID: obs.RequestID(r.Context()),
		})
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Printf("req_id=%s plan itinerary failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func toPlanResponse(plan *domain.Plan) dto.PlanResponse {
	schedule := make([]dto.ScheduleEntryResponse, 0, len(plan.Schedule))
	for order, e := range plan.Schedule {
		s := plan.Stops[e.StopIndex]
		entry := dto.ScheduleEntryResponse{
			Order:         order + 1,
			StopIndex:     e.StopIndex,
			Name:          s.Label(),
			Address:       s.Address,
			Lat:           s.Coord.Lat,
			Lon:           s.Coord.Lon,
			Role:          string(s.Role),
			Arrival:       e.Arrival,
			Departure:     e.Departure,
			WaitMinutes:   e.Wait.Minutes(),
			TravelSeconds: e.TravelSeconds,
			Warning:       string(e.Warning),
		}
		if entry.Role == "" {
			entry.Role = string(domain.RoleIntermediate)
		}
		if s.Window != nil {
			entry.Window = s.Window.String()
		}
		schedule = append(schedule, entry)
	}

	return dto.PlanResponse{
		ID:                   plan.ID,
		Mode:                 string(plan.Mode),
		DepartAt:             plan.DepartAt,
		FinishAt:             plan.FinishAt(),
		Threshold:            plan.Threshold,
		Estimated:            plan.Estimated,
		Tour:                 append([]int(nil), plan.Tour...),
		Schedule:             schedule,
		TotalDistanceMeters:  plan.TotalDistanceMeters,
		TotalDurationSeconds: plan.TotalDurationSeconds,
		TollTotal:            plan.TollTotal,
		TotalCost:            plan.TotalCost,
		WarningCount:         len(plan.Warnings()),
		Notes:                append([]string{}, plan.Notes...),
		Itinerary:            services.FormatItinerary(plan),
	}
}
