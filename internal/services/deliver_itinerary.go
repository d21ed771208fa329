package services

import (
	"context"
	"fmt"
	"itinerary-planner-service/internal/domain"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"log"
	"strings"
)

// DeliverItinerary sends the text form of plan to recipient. A failure is
// returned wrapped in domain.ErrDeliveryFailed; the plan itself stays valid.
func DeliverItinerary(ctx context.Context, n ports.Notifier, recipient string, plan *domain.Plan) (err error) {
	defer obs.Time(ctx, "notify.Deliver")(&err)

	recipient = strings.TrimSpace(recipient)
	if n == nil || recipient == "" {
		obs.Deliveries.WithLabelValues("skipped").Inc()
		return nil
	}

	if err := n.Send(ctx, recipient, FormatItinerary(plan)); err != nil {
		log.Printf("req_id=%s plan_id=%s delivery failed: %v", obs.RequestID(ctx), plan.ID, err)
		obs.Deliveries.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	obs.Deliveries.WithLabelValues("sent").Inc()
	return nil
}
