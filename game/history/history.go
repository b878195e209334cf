package history

import (
	"fmt"
	"io"
	"strings"
)

// Event is one visit to a location.
type Event struct {
	LocationID  int    `json:"location_id"`
	Description string `json:"description"`
	// NextCommand is the command that led away from this location.
	// It is empty for the most recent event.
	NextCommand string `json:"next_command,omitempty"`
}

// History is an ordered log of events. The zero value is an empty history.
type History struct {
	events []Event
}

// New returns an empty history.
func New() *History {
	return &History{}
}

// Add appends an event. The command is recorded as the outbound command of
// the current last event and ignored when the history is empty. Any outbound
// command already set on the new event is cleared.
func (h *History) Add(event Event, command string) {
	event.NextCommand = ""
	if n := len(h.events); n > 0 {
		h.events[n-1].NextCommand = command
	}
	h.events = append(h.events, event)
}

// RemoveLast drops the most recent event and clears the outbound command of
// the one before it. It is a no-op on an empty history.
func (h *History) RemoveLast() {
	n := len(h.events)
	if n == 0 {
		return
	}
	h.events = h.events[:n-1]
	if n > 1 {
		h.events[n-2].NextCommand = ""
	}
}

// Len returns the number of events.
func (h *History) Len() int {
	return len(h.events)
}

// IsEmpty reports whether no event has been recorded.
func (h *History) IsEmpty() bool {
	return len(h.events) == 0
}

// First returns the oldest event.
func (h *History) First() (Event, bool) {
	if len(h.events) == 0 {
		return Event{}, false
	}
	return h.events[0], true
}

// Last returns the most recent event.
func (h *History) Last() (Event, bool) {
	if len(h.events) == 0 {
		return Event{}, false
	}
	return h.events[len(h.events)-1], true
}

// At returns the event at index i, oldest first.
func (h *History) At(i int) (Event, bool) {
	if i < 0 || i >= len(h.events) {
		return Event{}, false
	}
	return h.events[i], true
}

// Events returns a copy of all events, oldest first.
func (h *History) Events() []Event {
	return append([]Event(nil), h.events...)
}

// IDs returns the location ids from oldest to newest.
func (h *History) IDs() []int {
	ids := make([]int, len(h.events))
	for i, e := range h.events {
		ids[i] = e.LocationID
	}
	return ids
}

// ReverseIDs returns the location ids from newest to oldest.
func (h *History) ReverseIDs() []int {
	ids := make([]int, len(h.events))
	for i := range h.events {
		ids[i] = h.events[len(h.events)-1-i].LocationID
	}
	return ids
}

// Clear removes every event.
func (h *History) Clear() {
	h.events = nil
}

// String renders one line per event with its outbound command.
func (h *History) String() string {
	var b strings.Builder
	_ = h.Display(&b)
	return b.String()
}

// Display writes the transcript to w one event at a time.
func (h *History) Display(w io.Writer) error {
	for _, e := range h.events {
		command := e.NextCommand
		if command == "" {
			command = "None"
		}
		if _, err := fmt.Fprintf(w, "Location: %d, Command: %s\n", e.LocationID, command); err != nil {
			return err
		}
	}
	return nil
}
