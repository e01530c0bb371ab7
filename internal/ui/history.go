package ui

import "github.com/abelbrown/peopledesk/internal/collection"

// maxHistory bounds the back stack.
const maxHistory = 100

// History is the client's navigation stack of screen locations.
type History struct {
	entries []collection.Location
}

// Push records loc unless it equals the current location.
func (h *History) Push(loc collection.Location) {
	if cur, ok := h.Current(); ok && cur.String() == loc.String() {
		return
	}
	h.entries = append(h.entries, loc)
	if len(h.entries) > maxHistory {
		h.entries = h.entries[len(h.entries)-maxHistory:]
	}
}

// Current returns the top of the stack.
func (h *History) Current() (collection.Location, bool) {
	if len(h.entries) == 0 {
		return collection.Location{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Back pops the current location and returns the one before it.
func (h *History) Back() (collection.Location, bool) {
	if len(h.entries) < 2 {
		return collection.Location{}, false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Len returns the stack depth.
func (h *History) Len() int { return len(h.entries) }
