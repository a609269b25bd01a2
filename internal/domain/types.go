package domain

// Kind distinguishes the two conversation collections. The values double as
// view names.
type Kind string

const (
	KindChat  Kind = "chat"
	KindTeams Kind = "teams"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindChat || k == KindTeams
}

// Presence is the cosmetic availability status of a chat partner.
type Presence string

const (
	PresenceAvailable Presence = "available"
	PresenceAway      Presence = "away"
	PresenceBusy      Presence = "busy"
	PresenceOffline   Presence = "offline"
)

// Direction records who authored a message.
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// LocalSender is the reserved sender name for outgoing messages.
const LocalSender = "You"

// Header holds the fields shared by every conversation variant.
type Header struct {
	ID        string
	Name      string
	AvatarRef string
}

// Info returns the common conversation fields.
func (h Header) Info() Header { return h }

// Conversation is either a Chat or a Team.
type Conversation interface {
	Info() Header
	Kind() Kind
	sealed()
}

// Chat is a one-to-one or group chat with message history.
type Chat struct {
	Header
	// LastMessagePreview and LastActivity mirror the latest message and are
	// only written by Store.AddMessage (or at creation).
	LastMessagePreview string
	LastActivity       int64
	Pinned             bool
	Presence           Presence
	UnreadCount        int
}

func (Chat) Kind() Kind { return KindChat }
func (Chat) sealed()    {}

// Team is a team channel. It carries no chat-only state.
type Team struct {
	Header
}

func (Team) Kind() Kind { return KindTeams }
func (Team) sealed()    {}

// Reaction aggregates one reaction kind on a message.
type Reaction struct {
	Kind     string
	Count    int
	Reactors []string
}

// Message is a single chat message.
type Message struct {
	ID             string
	ConversationID string
	Sender         string
	Body           string
	CreatedAt      int64
	Direction      Direction
	// Read means "seen by the remote party" for sent messages. For received
	// messages it keeps its creation-time value.
	Read      bool
	Reactions []Reaction
}

func (m Message) clone() Message {
	if m.Reactions != nil {
		rs := make([]Reaction, len(m.Reactions))
		for i, r := range m.Reactions {
			r.Reactors = append([]string(nil), r.Reactors...)
			rs[i] = r
		}
		m.Reactions = rs
	}
	return m
}
