package model

import "fmt"

// EventStats is read-only telemetry about an event's seat usage.
type EventStats struct {
	EventID                string `json:"event_id"`
	Capacity               int    `json:"capacity"`
	TotalRegistrations     int    `json:"total_registrations"`
	RemainingCapacity      int    `json:"remaining_capacity"`
	CapacityUsedPercentage string `json:"capacity_used_percentage"`
}

// NewEventStats derives stats from a capacity and a registration count.
// A zero capacity reports 0.00% rather than dividing by zero.
func NewEventStats(eventID string, capacity, registered int) EventStats {
	var used float64
	if capacity > 0 {
		used = float64(registered) / float64(capacity) * 100
	}
	return EventStats{
		EventID:                eventID,
		Capacity:               capacity,
		TotalRegistrations:     registered,
		RemainingCapacity:      capacity - registered,
		CapacityUsedPercentage: fmt.Sprintf("%.2f%%", used),
	}
}
