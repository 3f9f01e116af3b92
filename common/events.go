package common

// EventType identifies the kind of window or input event delivered by an event source.
type EventType int

const (
	// EventTypeClosed is emitted when the user asks the window to close.
	EventTypeClosed EventType = iota

	// EventTypeResized is emitted when the framebuffer size changes. Width and Height are set.
	EventTypeResized

	// EventTypeKeyDown is emitted on key press or repeat. Key is set.
	EventTypeKeyDown

	// EventTypeKeyUp is emitted on key release. Key is set.
	EventTypeKeyUp
)

// Event is one window or input event collected during a poll.
type Event struct {
	Type   EventType
	Width  int
	Height int
	Key    uint32
}

// ContainsClose reports whether any event in events is a close request.
//
// Parameters:
//   - events: the events returned by one poll
//
// Returns:
//   - bool: true if a Closed event is present
func ContainsClose(events []Event) bool {
	for _, e := range events {
		if e.Type == EventTypeClosed {
			return true
		}
	}
	return false
}
