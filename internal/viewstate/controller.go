// Package viewstate holds the UI-facing selection state: which collection is
// shown, which conversation is active and the list filter.
package viewstate

import (
	"encoding/json"
	"fmt"

	"github.com/matheus3301/chatsim/internal/domain"
)

// State is the persisted view-state blob.
type State struct {
	View     domain.Kind `json:"currentView"`
	ActiveID string      `json:"activeConversationId"`
	Filter   string      `json:"listFilter"`
}

// Default returns the state used when nothing is persisted.
func Default() State {
	return State{View: domain.KindChat}
}

// Decode parses a view-state blob. An unknown view falls back to chat.
func Decode(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return Default(), fmt.Errorf("decode view state: %w", err)
	}
	if !st.View.Valid() {
		st.View = domain.KindChat
	}
	return st, nil
}

// Encode serialises the state.
func (s State) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Lister returns the conversations of a kind in collection order.
type Lister func(domain.Kind) []domain.Conversation

// Controller applies the selection rules. It is not safe for concurrent use.
type Controller struct {
	state State
	list  Lister
}

// New creates a controller from a restored state and resolves the active
// conversation against the current view.
func New(st State, list Lister) *Controller {
	if !st.View.Valid() {
		st.View = domain.KindChat
	}
	c := &Controller{state: st, list: list}
	if !c.Contains(st.ActiveID) {
		c.state.ActiveID = InitialSelection(list(st.View))
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// View returns the current view.
func (c *Controller) View() domain.Kind { return c.state.View }

// ActiveID returns the active conversation id or "".
func (c *Controller) ActiveID() string { return c.state.ActiveID }

// Filter returns the raw filter text.
func (c *Controller) Filter() string { return c.state.Filter }

// Contains reports whether id is a conversation of the current view.
func (c *Controller) Contains(id string) bool {
	if id == "" {
		return false
	}
	for _, conv := range c.list(c.state.View) {
		if conv.Info().ID == id {
			return true
		}
	}
	return false
}

// SwitchView changes the view, clears the filter and re-selects. It reports
// false when view is already current.
func (c *Controller) SwitchView(view domain.Kind) bool {
	if view == c.state.View {
		return false
	}
	c.state.View = view
	c.state.Filter = ""
	c.state.ActiveID = InitialSelection(c.list(view))
	return true
}

// SetActive makes id the active conversation. It reports false when id is
// already active.
func (c *Controller) SetActive(id string) bool {
	if id == c.state.ActiveID {
		return false
	}
	c.state.ActiveID = id
	return true
}

// SetFilter stores text as typed. It reports false when unchanged.
func (c *Controller) SetFilter(text string) bool {
	if text == c.state.Filter {
		return false
	}
	c.state.Filter = text
	return true
}

// InitialSelection picks the first unpinned conversation, else the first one,
// else none.
func InitialSelection(convs []domain.Conversation) string {
	for _, conv := range convs {
		if chat, ok := conv.(domain.Chat); ok && chat.Pinned {
			continue
		}
		return conv.Info().ID
	}
	if len(convs) > 0 {
		return convs[0].Info().ID
	}
	return ""
}
