package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/matheus3301/chatsim/internal/bus"
	"github.com/matheus3301/chatsim/internal/domain"
)

// commit flushes dirty blobs. Write failures are already logged and reflected
// in the lifecycle state, so callers never see them.
func (e *Engine) commit() {
	_ = e.flushLocked()
}

// activeChat returns the active chat when messages can be sent to it.
func (e *Engine) activeChat() (domain.Chat, error) {
	if e.view.View() != domain.KindChat || e.view.ActiveID() == "" {
		return domain.Chat{}, ErrUnavailable
	}
	c, ok := e.store.FindChat(e.view.ActiveID())
	if !ok {
		return domain.Chat{}, ErrUnavailable
	}
	return c, nil
}

// SendMessage appends a sent message from the local user to the active chat.
func (e *Engine) SendMessage(text string) (domain.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.Message{}, ErrClosed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, ErrEmptyInput
	}
	c, err := e.activeChat()
	if err != nil {
		return domain.Message{}, err
	}

	m := domain.Message{
		ID:             domain.NewID(),
		ConversationID: c.ID,
		Sender:         e.cfg.LocalSender,
		Body:           text,
		CreatedAt:      e.now(),
		Direction:      domain.Sent,
	}
	if err := e.store.AddMessage(m); err != nil {
		return domain.Message{}, fmt.Errorf("send message: %w", err)
	}
	e.dirtyData = true
	e.commit()
	e.emit(bus.MessageAdded, bus.MessagePayload{ConversationID: c.ID, MessageID: m.ID})
	e.logger.Debug("message sent", zap.String("conversation", c.ID), zap.String("msg_id", m.ID))
	return m, nil
}

// SimulateReceive starts the typing indicator for the active chat and
// schedules a reply into it. The target is fixed at call time.
func (e *Engine) SimulateReceive() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	c, err := e.activeChat()
	if err != nil {
		return err
	}
	e.startTypingLocked(c.ID, c.Name)
	e.scheduleArrivalLocked(c.ID, c.Name)
	return nil
}

// CreateConversation adds a chat or team and makes it active, switching view
// first when kind differs from the current one. It returns the new id.
func (e *Engine) CreateConversation(kind domain.Kind, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", ErrClosed
	}

	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownView, kind)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyInput
	}

	h := domain.Header{ID: domain.NewID(), Name: name, AvatarRef: domain.AvatarPlaceholder(name)}
	var conv domain.Conversation = domain.Team{Header: h}
	if kind == domain.KindChat {
		conv = domain.Chat{
			Header:             h,
			LastMessagePreview: "Chat created.",
			LastActivity:       e.now(),
			Presence:           domain.PresenceOffline,
		}
	}
	if err := e.store.AddConversation(conv); err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	e.dirtyData = true

	if e.view.SwitchView(kind) {
		e.dirtyView = true
		e.emit(bus.ViewSwitched, e.viewPayload())
	}
	e.activateLocked(h.ID)
	e.commit()
	e.emit(bus.ConversationCreated, bus.ConversationPayload{ConversationID: h.ID, Kind: string(kind)})
	e.logger.Info("conversation created", zap.String("kind", string(kind)), zap.String("id", h.ID))
	return h.ID, nil
}

// SetActive selects a conversation of the current view. Selecting a chat
// clears its unread counter and runs the read-receipt sweep.
func (e *Engine) SetActive(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	if !e.view.Contains(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if id == e.view.ActiveID() {
		return nil
	}
	e.activateLocked(id)
	e.commit()
	return nil
}

func (e *Engine) activateLocked(id string) {
	if !e.view.SetActive(id) {
		return
	}
	e.dirtyView = true
	if e.view.View() == domain.KindChat {
		if c, ok := e.store.FindChat(id); ok && c.UnreadCount != 0 {
			_ = e.store.SetUnreadCount(id, 0)
			e.dirtyData = true
			e.emit(bus.UnreadChanged, bus.ConversationPayload{ConversationID: id, Kind: string(domain.KindChat)})
		}
		e.sweepLocked(id)
	}
	e.emit(bus.ConversationActivated, bus.ConversationPayload{ConversationID: id, Kind: string(e.view.View())})
}

// SwitchView changes the shown collection.
func (e *Engine) SwitchView(view domain.Kind) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	if !view.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	if !e.view.SwitchView(view) {
		return nil
	}
	e.dirtyView = true
	e.commit()
	e.emit(bus.ViewSwitched, e.viewPayload())
	return nil
}

// ChangeFilter stores the list filter text.
func (e *Engine) ChangeFilter(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.view.SetFilter(text) {
		return
	}
	e.dirtyView = true
	e.commit()
	e.emit(bus.FilterChanged, e.viewPayload())
}

// ClearFilter empties the list filter.
func (e *Engine) ClearFilter() {
	e.ChangeFilter("")
}

// MarkConversationMessagesConsidered flips the chat's unread sent messages to
// read. Received messages keep their flag. It returns how many changed.
func (e *Engine) MarkConversationMessagesConsidered(id string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}

	if _, ok := e.store.FindChat(id); !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	n := e.sweepLocked(id)
	e.commit()
	return n, nil
}

func (e *Engine) sweepLocked(id string) int {
	n, err := e.store.MarkSentRead(id)
	if err != nil || n == 0 {
		return 0
	}
	e.dirtyData = true
	e.emit(bus.ReceiptsUpdated, bus.MessagePayload{ConversationID: id, Count: n})
	return n
}

func (e *Engine) viewPayload() bus.ViewPayload {
	st := e.view.State()
	return bus.ViewPayload{View: string(st.View), ActiveID: st.ActiveID, Filter: st.Filter}
}
