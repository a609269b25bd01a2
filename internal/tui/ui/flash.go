package ui

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/matheus3301/chatsim/internal/clock"
)

// FlashLevel represents the severity of a flash message.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashWarn
	FlashErr
)

// Flash display durations per level.
const (
	infoTTL = 5 * time.Second
	warnTTL = 8 * time.Second
	errTTL  = 10 * time.Second
)

// FlashMessage is a flash notification with a level and expiry.
type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

// FlashModel holds the single transient notification shown in the status bar.
// Watch fires when a message is set and again when it expires.
type FlashModel struct {
	clock clock.Clock

	mu      sync.Mutex
	current FlashMessage
	expiry  clock.Timer
	watchCh chan struct{}
}

// NewFlashModel creates a flash model timed by c.
func NewFlashModel(c clock.Clock) *FlashModel {
	return &FlashModel{
		clock:   c,
		watchCh: make(chan struct{}, 8),
	}
}

// Info sets an info-level flash message.
func (f *FlashModel) Info(msg string) {
	f.set(msg, FlashInfo, infoTTL)
}

// Warn sets a warn-level flash message.
func (f *FlashModel) Warn(msg string) {
	f.set(msg, FlashWarn, warnTTL)
}

// Err sets an error-level flash message.
func (f *FlashModel) Err(err error) {
	f.set(err.Error(), FlashErr, errTTL)
}

func (f *FlashModel) set(msg string, level FlashLevel, ttl time.Duration) {
	f.mu.Lock()
	if f.expiry != nil {
		f.expiry.Stop()
	}
	f.current = FlashMessage{Text: msg, Level: level, Expires: f.clock.Now().Add(ttl)}
	f.expiry = f.clock.AfterFunc(ttl, f.notify)
	f.mu.Unlock()
	f.notify()
}

func (f *FlashModel) notify() {
	select {
	case f.watchCh <- struct{}{}:
	default:
	}
}

// Clear drops the current message.
func (f *FlashModel) Clear() {
	f.mu.Lock()
	if f.expiry != nil {
		f.expiry.Stop()
		f.expiry = nil
	}
	f.current = FlashMessage{}
	f.mu.Unlock()
	f.notify()
}

// GetMessage returns the current flash message, or nil if none or expired.
func (f *FlashModel) GetMessage() *FlashMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current.Text == "" || !f.clock.Now().Before(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// Watch returns a channel signalled whenever the visible message changes.
func (f *FlashModel) Watch() <-chan struct{} {
	return f.watchCh
}

// FlashColor returns the theme color for a flash level.
func (t *Theme) FlashColor(level FlashLevel) tcell.Color {
	switch level {
	case FlashWarn:
		return t.FlashWarnColor
	case FlashErr:
		return t.FlashErrColor
	default:
		return t.FlashInfoColor
	}
}
