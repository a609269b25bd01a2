package status

import (
	"testing"

	"github.com/matheus3301/chatsim/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, Loading},
		{Booting, Stopped},
		{Loading, Ready},
		{Loading, Degraded},
		{Ready, Degraded},
		{Ready, Stopped},
		{Degraded, Ready},
		{Degraded, Stopped},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, Ready},
		{Ready, Loading},
		{Stopped, Booting},
		{Stopped, Ready},
	}
	for _, tt := range tests {
		m := NewMachine(nil)
		walkTo(t, m, tt.from)
		if err := m.Transition(tt.to); err == nil {
			t.Errorf("Transition(%s -> %s) should fail", tt.from, tt.to)
		}
		if m.Current() != tt.from {
			t.Errorf("state changed to %s on a rejected transition", m.Current())
		}
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("engine.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Loading); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.StatusChanged {
		t.Errorf("event kind = %q, want %s", evt.Kind, bus.StatusChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Booting || change.To != Loading {
		t.Errorf("change = %v -> %v, want BOOTING -> LOADING", change.From, change.To)
	}
}

// TestPersistFailureRecovery walks the write-failure loop:
// READY -> DEGRADED -> READY, with Ensure tolerating repeats.
func TestPersistFailureRecovery(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Ready)

	for _, s := range []State{Degraded, Degraded, Ready, Ready} {
		if err := m.Ensure(s); err != nil {
			t.Fatalf("Ensure(%s): %v (current: %s)", s, err, m.Current())
		}
	}
	if m.Current() != Ready {
		t.Errorf("final state = %s, want READY", m.Current())
	}
}

// walkTo is a helper that transitions the machine to a target state.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Booting:  {},
		Loading:  {Loading},
		Ready:    {Loading, Ready},
		Degraded: {Loading, Degraded},
		Stopped:  {Stopped},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
