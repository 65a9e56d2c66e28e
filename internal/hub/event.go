package hub

import "time"

// ReloadType is the only message type the notification protocol defines.
// Clients reload unconditionally on receipt.
const ReloadType = "TRIGGER_FULL_RELOAD"

// ReloadEvent is the wire payload broadcast to every connected browser when a
// rebuild completes.
type ReloadEvent struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// NewReloadEvent stamps a reload event with the given wall-clock time.
func NewReloadEvent(now time.Time) ReloadEvent {
	return ReloadEvent{Type: ReloadType, Data: now.Format(time.RFC3339)}
}
