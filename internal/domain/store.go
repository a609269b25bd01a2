// Package domain owns the canonical conversation and message collections and
// keeps the fields derived from messages consistent.
package domain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/matheus3301/chatsim/internal/markup"
)

// DefaultPreviewLength is the number of body runes kept in a chat preview.
const DefaultPreviewLength = 40

var (
	ErrNotFound    = errors.New("conversation not found")
	ErrDuplicateID = errors.New("duplicate conversation id")
	ErrInvalid     = errors.New("invalid conversation")
)

// Store holds chats, teams and per-chat message lists.
// It is not safe for concurrent use; callers serialise access.
type Store struct {
	chats    []*Chat
	teams    []*Team
	messages map[string][]*Message

	previewLength int
}

// NewStore creates an empty store. previewLength <= 0 selects the default.
func NewStore(previewLength int) *Store {
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	return &Store{
		messages:      make(map[string][]*Message),
		previewLength: previewLength,
	}
}

// ListConversations returns copies of the conversations of a kind in
// insertion order.
func (s *Store) ListConversations(kind Kind) []Conversation {
	var out []Conversation
	switch kind {
	case KindChat:
		out = make([]Conversation, 0, len(s.chats))
		for _, c := range s.chats {
			out = append(out, *c)
		}
	case KindTeams:
		out = make([]Conversation, 0, len(s.teams))
		for _, t := range s.teams {
			out = append(out, *t)
		}
	}
	return out
}

// FindConversation looks up a conversation of either kind.
func (s *Store) FindConversation(id string) (Conversation, bool) {
	if c := s.chat(id); c != nil {
		return *c, true
	}
	for _, t := range s.teams {
		if t.ID == id {
			return *t, true
		}
	}
	return nil, false
}

// FindChat looks up a chat by id.
func (s *Store) FindChat(id string) (Chat, bool) {
	if c := s.chat(id); c != nil {
		return *c, true
	}
	return Chat{}, false
}

// ListMessages returns copies of a chat's messages in insertion order.
func (s *Store) ListMessages(conversationID string) []Message {
	list := s.messages[conversationID]
	out := make([]Message, 0, len(list))
	for _, m := range list {
		out = append(out, m.clone())
	}
	return out
}

// AddConversation inserts a Chat or Team. Adding a chat also creates its
// empty message list.
func (s *Store) AddConversation(seed Conversation) error {
	if seed.Info().Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	return s.insert(seed)
}

// insert adds a conversation that only needs a unique id.
func (s *Store) insert(seed Conversation) error {
	info := seed.Info()
	if info.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	if _, exists := s.FindConversation(info.ID); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, info.ID)
	}
	switch c := seed.(type) {
	case Chat:
		if c.UnreadCount < 0 {
			c.UnreadCount = 0
		}
		s.chats = append(s.chats, &c)
		if _, ok := s.messages[c.ID]; !ok {
			s.messages[c.ID] = nil
		}
	case Team:
		s.teams = append(s.teams, &c)
	default:
		return fmt.Errorf("%w: unknown kind %T", ErrInvalid, seed)
	}
	return nil
}

// AddMessage appends a message to its chat and re-derives the chat's preview
// and last activity. It never touches the unread counter.
func (s *Store) AddMessage(m Message) error {
	c := s.chat(m.ConversationID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, m.ConversationID)
	}
	latest, hasLatest := s.latest(c.ID)

	m = m.clone()
	if m.Reactions == nil {
		m.Reactions = []Reaction{}
	}
	s.messages[c.ID] = append(s.messages[c.ID], &m)

	if !hasLatest || m.CreatedAt >= latest.CreatedAt {
		c.LastMessagePreview = Preview(m.Sender, m.Body, s.previewLength)
		c.LastActivity = m.CreatedAt
	}
	return nil
}

// SetUnreadCount sets a chat's unread counter, clamped at zero.
func (s *Store) SetUnreadCount(id string, n int) error {
	c := s.chat(id)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.UnreadCount = max(n, 0)
	return nil
}

// MarkSentRead flips every unread sent message of a chat to read and returns
// how many changed. Received messages are left as they are.
func (s *Store) MarkSentRead(id string) (int, error) {
	if s.chat(id) == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	changed := 0
	for _, m := range s.messages[id] {
		if m.Direction == Sent && !m.Read {
			m.Read = true
			changed++
		}
	}
	return changed, nil
}

// Preview renders "<sender>: <body>" with the body stripped of markup and cut
// to n runes, suffixed with "..." when cut.
func Preview(sender, body string, n int) string {
	text, cut := markup.Truncate(markup.Strip(body), n)
	if cut {
		text += "..."
	}
	return sender + ": " + text
}

// SortByCreatedAt orders messages by creation time, keeping insertion order
// for equal timestamps.
func SortByCreatedAt(msgs []Message) {
	slices.SortStableFunc(msgs, func(a, b Message) int {
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})
}

func (s *Store) chat(id string) *Chat {
	for _, c := range s.chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) latest(id string) (*Message, bool) {
	var latest *Message
	for _, m := range s.messages[id] {
		if latest == nil || m.CreatedAt >= latest.CreatedAt {
			latest = m
		}
	}
	return latest, latest != nil
}
