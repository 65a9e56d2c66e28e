package engine

import "time"

// EventType captures lifecycle notifications emitted by supervisors and the
// orchestrator. Child process output does not travel through events; relays
// write it straight to the console to keep line bytes and ordering intact.
type EventType string

const (
	EventTypeStarting  EventType = "starting"
	EventTypeReady     EventType = "ready"
	EventTypeBroadcast EventType = "broadcast"
	EventTypeExited    EventType = "exited"
	EventTypeStopping  EventType = "stopping"
	EventTypeError     EventType = "error"
)

// Event represents a single lifecycle notification.
type Event struct {
	Timestamp time.Time
	Role      string
	Type      EventType
	Message   string
	Err       error
}

func sendEvent(events chan<- Event, role string, t EventType, message string, err error) {
	if events == nil {
		return
	}
	events <- Event{
		Timestamp: time.Now(),
		Role:      role,
		Type:      t,
		Message:   message,
		Err:       err,
	}
}
