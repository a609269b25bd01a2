package engine

import (
	"fmt"
	"time"

	"github.com/matheus3301/chatsim/internal/domain"
	"github.com/matheus3301/chatsim/internal/listing"
	"github.com/matheus3301/chatsim/internal/status"
	"github.com/matheus3301/chatsim/internal/timefmt"
)

// Content placeholders.
const (
	PlaceholderNoSelection = "Select an item from the list on the left."
	PlaceholderNoMessages  = "No messages yet. Start the conversation!"
	InputPlaceholder       = "Type a new message"
)

// Snapshot is a read-only projection of the model for renderers.
type Snapshot struct {
	Status status.State
	Now    time.Time
	View   domain.Kind
	Filter string
	List   listing.List

	// Active is nil when nothing is selected.
	Active   *ActiveConversation
	Messages []MessageView
	// Typing is nil when nobody is typing.
	Typing *Typing

	Title              string
	ContentPlaceholder string
	InputEnabled       bool
	InputPlaceholder   string
}

// ActiveConversation is the content-pane header.
type ActiveConversation struct {
	ID          string
	Kind        domain.Kind
	Name        string
	AvatarRef   string
	Presence    domain.Presence
	Pinned      bool
	UnreadCount int
	Messages    int
}

// MessageView is a message with its display annotations.
type MessageView struct {
	domain.Message
	TimeLabel string
	// DateSeparator is set on the first message of each calendar day.
	DateSeparator bool
	DateLabel     string
}

// Typing describes the visible typing indicator.
type Typing struct {
	ConversationID string
	Name           string
	Until          time.Time
}

// Snapshot returns the current projection.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.cfg.Clock.Now().In(e.cfg.Location)
	st := e.view.State()
	snap := Snapshot{
		Status: e.status.Current(),
		Now:    now,
		View:   st.View,
		Filter: st.Filter,
		List:   listing.Build(st.View, e.store.ListConversations(st.View), st.Filter, st.ActiveID, now),
	}

	if conv, ok := e.store.FindConversation(st.ActiveID); ok && conv.Kind() == st.View {
		h := conv.Info()
		snap.Active = &ActiveConversation{ID: h.ID, Kind: conv.Kind(), Name: h.Name, AvatarRef: h.AvatarRef}
		snap.Title = h.Name
		switch c := conv.(type) {
		case domain.Chat:
			snap.Active.Presence = c.Presence
			snap.Active.Pinned = c.Pinned
			snap.Active.UnreadCount = c.UnreadCount
			snap.Messages = messageViews(e.store.ListMessages(c.ID), e.cfg.Location)
			snap.Active.Messages = len(snap.Messages)
			if len(snap.Messages) == 0 {
				snap.ContentPlaceholder = PlaceholderNoMessages
			}
		case domain.Team:
			snap.ContentPlaceholder = fmt.Sprintf("Team channel content for **%s** (e.g., posts, files). Not implemented.", h.Name)
		}
	} else {
		snap.Title = "Select a " + viewNoun(st.View)
		snap.ContentPlaceholder = PlaceholderNoSelection
	}

	if e.typing.active() {
		snap.Typing = &Typing{
			ConversationID: e.typing.conversationID,
			Name:           e.typing.name,
			Until:          e.typing.until,
		}
	}

	snap.InputEnabled = st.View == domain.KindChat && snap.Active != nil
	snap.InputPlaceholder = InputPlaceholder
	if !snap.InputEnabled {
		snap.InputPlaceholder = "Cannot send messages in " + string(st.View)
	}
	return snap
}

// messageViews orders msgs by creation time and marks day boundaries.
func messageViews(msgs []domain.Message, loc *time.Location) []MessageView {
	domain.SortByCreatedAt(msgs)
	out := make([]MessageView, 0, len(msgs))
	for i, m := range msgs {
		v := MessageView{Message: m, TimeLabel: timefmt.Clock(m.CreatedAt, loc)}
		if i == 0 || !timefmt.SameDay(msgs[i-1].CreatedAt, m.CreatedAt, loc) {
			v.DateSeparator = true
			v.DateLabel = timefmt.FullDate(m.CreatedAt, loc)
		}
		out = append(out, v)
	}
	return out
}

func viewNoun(k domain.Kind) string {
	if k == domain.KindTeams {
		return "team"
	}
	return "chat"
}

// Counts summarises both collections.
type Counts struct {
	Chats  int
	Teams  int
	Unread int
}

// Counts returns collection sizes and the total unread count.
func (e *Engine) Counts() Counts {
	e.mu.Lock()
	defer e.mu.Unlock()

	var c Counts
	for _, conv := range e.store.ListConversations(domain.KindChat) {
		c.Chats++
		if ch, ok := conv.(domain.Chat); ok {
			c.Unread += ch.UnreadCount
		}
	}
	c.Teams = len(e.store.ListConversations(domain.KindTeams))
	return c
}
