// Package status tracks the engine lifecycle.
package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/chatsim/internal/bus"
)

// State represents an engine lifecycle state.
type State string

const (
	Booting  State = "BOOTING"
	Loading  State = "LOADING"
	Ready    State = "READY"
	Degraded State = "DEGRADED"
	Stopped  State = "STOPPED"
)

// validTransitions defines allowed state transitions. DEGRADED means the last
// persistence write failed; the next successful flush returns to READY.
var validTransitions = map[State][]State{
	Booting:  {Loading, Stopped},
	Loading:  {Ready, Degraded, Stopped},
	Ready:    {Degraded, Stopped},
	Degraded: {Ready, Stopped},
	Stopped:  {},
}

// Machine tracks and enforces lifecycle transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	since   time.Time
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Booting,
		since:   time.Now(),
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Since returns when the current state was entered.
func (m *Machine) Since() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.since
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.since = time.Now()
	m.bus.Emit(bus.StatusChanged, m.since, StatusChange{From: from, To: to})
	return nil
}

// Ensure moves to the target state unless already there.
func (m *Machine) Ensure(to State) error {
	if m.Current() == to {
		return nil
	}
	return m.Transition(to)
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
