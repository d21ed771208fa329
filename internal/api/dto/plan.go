package dto

import "time"

// StopRequest is one location of a planning request. Either Address (or
// Name) or both Lat and Lon must be given.
type StopRequest struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	StayMinutes float64  `json:"stay_minutes"`
	Open        string   `json:"open"`
	Close       string   `json:"close"`
	Role        string   `json:"role"`
}

type PlanRequest struct {
	Stops        []StopRequest `json:"stops"`
	Mode         string        `json:"mode"`
	DepartAt     string        `json:"depart_at"`
	Threshold    *float64      `json:"threshold"`
	ThresholdPct *float64      `json:"threshold_pct"`
	Recipient    string        `json:"recipient"`
}

type ScheduleEntryResponse struct {
	Order         int       `json:"order"`
	StopIndex     int       `json:"stop_index"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	Role          string    `json:"role"`
	Arrival       time.Time `json:"arrival"`
	Departure     time.Time `json:"departure"`
	WaitMinutes   float64   `json:"wait_minutes"`
	TravelSeconds float64   `json:"travel_seconds"`
	Window        string    `json:"window,omitempty"`
	Warning       string    `json:"warning,omitempty"`
}

type DeliveryResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type PlanResponse struct {
	ID                   string                  `json:"id"`
	Mode                 string                  `json:"mode"`
	DepartAt             time.Time               `json:"depart_at"`
	FinishAt             time.Time               `json:"finish_at"`
	Threshold            float64                 `json:"threshold"`
	Estimated            bool                    `json:"estimated"`
	Tour                 []int                   `json:"tour"`
	Schedule             []ScheduleEntryResponse `json:"schedule"`
	TotalDistanceMeters  float64                 `json:"total_distance_meters"`
	TotalDurationSeconds float64                 `json:"total_duration_seconds"`
	TollTotal            float64                 `json:"toll_total"`
	TotalCost            float64                 `json:"total_cost"`
	WarningCount         int                     `json:"warning_count"`
	Notes                []string                `json:"notes"`
	Itinerary            string                  `json:"itinerary"`
	Delivery             DeliveryResponse        `json:"delivery"`
}

// ErrorResponse carries the failing stop for geocoding errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	StopIndex *int   `json:"stop_index,omitempty"`
	Address   string `json:"address,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
