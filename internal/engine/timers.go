package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/chatsim/internal/bus"
	"github.com/matheus3301/chatsim/internal/clock"
	"github.com/matheus3301/chatsim/internal/domain"
	"github.com/matheus3301/chatsim/internal/timefmt"
)

// typingState is the single typing indicator. gen is bumped on every start so
// a superseded hide callback that already fired does nothing.
type typingState struct {
	conversationID string
	name           string
	until          time.Time
	gen            uint64
	timer          clock.Timer
}

func (t typingState) active() bool { return t.name != "" }

func (e *Engine) startTypingLocked(conversationID, name string) {
	if e.typing.timer != nil {
		e.typing.timer.Stop()
	}
	e.typing.gen++
	gen := e.typing.gen
	e.typing.conversationID = conversationID
	e.typing.name = name
	e.typing.until = e.cfg.Clock.Now().Add(e.cfg.TypingDuration)
	e.typing.timer = e.cfg.Clock.AfterFunc(e.cfg.TypingDuration, func() {
		e.stopTyping(gen)
	})
	e.emit(bus.TypingStarted, bus.TypingPayload{ConversationID: conversationID, Name: name})
}

func (e *Engine) stopTyping(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.typing.gen || !e.typing.active() {
		return
	}
	p := bus.TypingPayload{ConversationID: e.typing.conversationID, Name: e.typing.name}
	e.typing = typingState{gen: e.typing.gen}
	e.emit(bus.TypingStopped, p)
}

func (e *Engine) scheduleArrivalLocked(conversationID, sender string) {
	e.nextID++
	id := e.nextID
	e.arrivals[id] = e.cfg.Clock.AfterFunc(e.cfg.ReceiveDelay, func() {
		e.arrive(id, conversationID, sender)
	})
}

// arrive appends a simulated reply. Whether it counts as read, and whether it
// bumps the unread counter, depends on what is active when it lands.
func (e *Engine) arrive(id uint64, conversationID, sender string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, pending := e.arrivals[id]; !pending || e.closed {
		return
	}
	delete(e.arrivals, id)

	now := e.cfg.Clock.Now()
	active := e.view.ActiveID() == conversationID
	m := domain.Message{
		ID:             domain.NewID(),
		ConversationID: conversationID,
		Sender:         sender,
		Body:           SimulatedBody(now, e.cfg.Location),
		CreatedAt:      now.UnixMilli(),
		Direction:      domain.Received,
		Read:           active,
	}
	if err := e.store.AddMessage(m); err != nil {
		e.logger.Warn("simulated arrival dropped", zap.String("conversation", conversationID), zap.Error(err))
		return
	}
	e.dirtyData = true

	if active {
		e.sweepLocked(conversationID)
	} else {
		c, _ := e.store.FindChat(conversationID)
		_ = e.store.SetUnreadCount(conversationID, c.UnreadCount+1)
		e.emit(bus.UnreadChanged, bus.ConversationPayload{ConversationID: conversationID, Kind: string(domain.KindChat)})
	}
	e.commit()
	e.emit(bus.MessageAdded, bus.MessagePayload{ConversationID: conversationID, MessageID: m.ID})
}

// SimulatedBody is the templated text of a simulated reply.
func SimulatedBody(now time.Time, loc *time.Location) string {
	return fmt.Sprintf("Simulated reply at %s. *Sometimes* using markdown!", timefmt.Clock(now.UnixMilli(), loc))
}
