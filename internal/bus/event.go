package bus

import "time"

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds. Subscribers filter by the namespace before the dot.
const (
	ConversationCreated   = "conversation.created"
	ConversationActivated = "conversation.activated"
	UnreadChanged         = "conversation.unread_changed"

	MessageAdded    = "message.added"
	ReceiptsUpdated = "message.receipts_updated"

	TypingStarted = "typing.started"
	TypingStopped = "typing.stopped"

	ViewSwitched  = "view.switched"
	FilterChanged = "view.filter_changed"

	StatusChanged = "engine.status_changed"
	PersistFailed = "engine.persist_failed"
)

// ConversationPayload identifies a conversation.
type ConversationPayload struct {
	ConversationID string
	Kind           string
}

// MessagePayload identifies a message or, for receipt sweeps, the number of
// messages changed.
type MessagePayload struct {
	ConversationID string
	MessageID      string
	Count          int
}

// TypingPayload names who is typing.
type TypingPayload struct {
	ConversationID string
	Name           string
}

// ViewPayload carries the view state after a change.
type ViewPayload struct {
	View     string
	ActiveID string
	Filter   string
}
