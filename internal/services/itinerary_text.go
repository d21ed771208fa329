package services

import (
	"fmt"
	"itinerary-planner-service/internal/domain"
	"math"
	"strings"
)

// FormatItinerary renders plan as the plain-text message sent to users.
func FormatItinerary(plan *domain.Plan) string {
	var b strings.Builder
	b.WriteString("Your itinerary:\n\n")

	for i, e := range plan.Schedule {
		name := fmt.Sprintf("Stop %d", e.StopIndex+1)
		if e.StopIndex >= 0 && e.StopIndex < len(plan.Stops) {
			name = plan.Stops[e.StopIndex].Label()
		}

		fmt.Fprintf(&b, "%d. %s: arrive %s, depart %s",
			i+1, name, e.Arrival.Format("15:04"), e.Departure.Format("15:04"))
		if e.HasWarning() {
			fmt.Fprintf(&b, " (%s)", e.Warning)
		}
		b.WriteByte('\n')
	}

	total := int64(math.Max(plan.TotalDurationSeconds, 0))
	fmt.Fprintf(&b, "\nTotal travel time: %dh %dm", total/3600, (total%3600)/60)

	if plan.TollTotal > 0 {
		fmt.Fprintf(&b, "\nTotal toll cost: ¥%d", int64(plan.TollTotal))
	}
	for _, n := range plan.Notes {
		fmt.Fprintf(&b, "\nNote: %s", n)
	}

	return b.String()
}
