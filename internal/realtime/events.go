package realtime

import "time"

// Event names pushed to subscribed clients.
const (
	EventScheduleUpdate      = "scheduleUpdate"
	EventWorkOrderReassigned = "workOrderReassignment"
	EventScheduleConflict    = "scheduleConflict"
)

// Event is the wire envelope for every broadcast.
type Event struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomSchedules is the global room receiving every schedule event.
const RoomSchedules = "schedules"

// RoomWorkOrder names the per-work-order room.
func RoomWorkOrder(id string) string {
	return "workorder:" + id
}

// RoomTechnicianSchedule names the per-technician schedule room.
func RoomTechnicianSchedule(technicianID string) string {
	return "technician-schedule:" + technicianID
}

// RoomDateSchedule names the per-day schedule room.
func RoomDateSchedule(day string) string {
	return "date-schedule:" + day
}
