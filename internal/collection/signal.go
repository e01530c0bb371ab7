package collection

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/peopledesk/internal/otel"
)

// ErrAlreadyObserved is returned when a second view tries to observe a kind
// whose signal already has an observer.
var ErrAlreadyObserved = errors.New("collection: refetch signal already observed")

// RefetchMsg wakes the observer of a kind's signal.
type RefetchMsg struct{ Kind string }

// Signal is a level-triggered reload request. Any number of goroutines may
// call Request; one observer calls Take, which reads and resets the flag.
// Requests made before Take collapse into a single reload.
type Signal struct {
	mu   sync.Mutex
	flag bool
	wake chan struct{} // capacity 1
}

// NewSignal returns an unset signal.
func NewSignal() *Signal {
	return &Signal{wake: make(chan struct{}, 1)}
}

// Request sets the flag and wakes the observer.
func (s *Signal) Request() {
	s.mu.Lock()
	s.flag = true
	s.mu.Unlock()
	s.notify()
}

func (s *Signal) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether a request is waiting to be taken.
func (s *Signal) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flag
}

// Take returns the flag and resets it to false.
func (s *Signal) Take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.flag
	s.flag = false
	return was
}

// Listen returns a command that blocks until the signal is woken (yielding
// RefetchMsg{kind}) or done is closed (yielding nil). A wake does not
// guarantee the flag is set; the observer must still Take.
func (s *Signal) Listen(kind string, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.wake:
			return RefetchMsg{Kind: kind}
		case <-done:
			return nil
		}
	}
}

// Registry hands out one Signal per list kind and enforces a single
// observer per signal.
type Registry struct {
	mu       sync.Mutex
	signals  map[string]*Signal
	observed map[string]bool
	events   *otel.Logger
}

// NewRegistry returns an empty registry. events may be nil.
func NewRegistry(events *otel.Logger) *Registry {
	return &Registry{
		signals:  make(map[string]*Signal),
		observed: make(map[string]bool),
		events:   events,
	}
}

// Signal returns the signal for kind, creating it on first use. Callers get
// the writer role only; observing goes through Observe.
func (r *Registry) Signal(kind string) *Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.signalLocked(kind)
}

func (r *Registry) signalLocked(kind string) *Signal {
	s, ok := r.signals[kind]
	if !ok {
		s = NewSignal()
		r.signals[kind] = s
	}
	return s
}

// Request asks the observer of kind to reload.
func (r *Registry) Request(kind string) {
	r.Signal(kind).Request()
	if otel.TraceEnabled() {
		r.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindRefetchRequest, Comp: "collection", View: kind})
	}
}

// Observe grants the observer role for kind. A request left pending by a
// previous observer re-wakes the signal so it is not lost.
func (r *Registry) Observe(kind string) (*Signal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.observed[kind] {
		return nil, ErrAlreadyObserved
	}
	r.observed[kind] = true
	s := r.signalLocked(kind)
	if s.Pending() {
		s.notify()
	}
	return s, nil
}

// Release gives up the observer role for kind.
func (r *Registry) Release(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observed, kind)
}

// Observed reports whether kind currently has an observer.
func (r *Registry) Observed(kind string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observed[kind]
}
