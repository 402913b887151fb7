package models

import "time"

// EntryEvent is one step in an entry's history, also pushed to live dashboards
type EntryEvent struct {
	ID        int64       `json:"id"`
	EntryID   string      `json:"entryId"`
	EventType string      `json:"eventType"`
	Status    EntryStatus `json:"status"`
	MillID    string      `json:"millId,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	ActorID   string      `json:"actorId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Event type constants
const (
	EventTypeRegistered      = "REGISTERED"
	EventTypeArrivalAttached = "ARRIVAL_ATTACHED"
	EventTypeApproved        = "APPROVED"
	EventTypeRejected        = "REJECTED"
)
