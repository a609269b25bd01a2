// Package engine owns the simulator model and serialises every mutation
// against it. Each operation updates the domain store and view state, flushes
// the blobs it dirtied and announces the change on the bus.
package engine

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/chatsim/internal/bus"
	"github.com/matheus3301/chatsim/internal/clock"
	"github.com/matheus3301/chatsim/internal/domain"
	"github.com/matheus3301/chatsim/internal/status"
	"github.com/matheus3301/chatsim/internal/viewstate"
)

// Gateway keys.
const (
	KeyViewState  = "view_state"
	KeyDomainData = "domain_data"
)

// Gateway is the opaque blob store the engine loads from and flushes to.
type Gateway interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

var (
	ErrEmptyInput  = errors.New("empty input")
	ErrUnavailable = errors.New("no active chat")
	ErrUnknownView = errors.New("unknown view")
	ErrNotFound    = domain.ErrNotFound
	ErrClosed      = errors.New("engine closed")
)

// Config tunes the simulation.
type Config struct {
	TypingDuration time.Duration
	ReceiveDelay   time.Duration
	PreviewLength  int
	LocalSender    string
	Clock          clock.Clock
	Location       *time.Location
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		TypingDuration: 1500 * time.Millisecond,
		ReceiveDelay:   800 * time.Millisecond,
		PreviewLength:  domain.DefaultPreviewLength,
		LocalSender:    domain.LocalSender,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TypingDuration <= 0 {
		c.TypingDuration = d.TypingDuration
	}
	if c.ReceiveDelay <= 0 {
		c.ReceiveDelay = d.ReceiveDelay
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = d.PreviewLength
	}
	if c.LocalSender == "" {
		c.LocalSender = d.LocalSender
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

// Engine is the single writer over the model.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	gw     Gateway
	bus    *bus.Bus
	status *status.Machine
	logger *zap.Logger

	store *domain.Store
	view  *viewstate.Controller

	dirtyView bool
	dirtyData bool

	typing   typingState
	arrivals map[uint64]clock.Timer
	nextID   uint64
	closed   bool
}

// New loads the model from gw and returns a ready engine. Load problems are
// logged and repaired, never returned. b, st and logger may be nil.
func New(gw Gateway, b *bus.Bus, st *status.Machine, logger *zap.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if st == nil {
		st = status.NewMachine(b)
	}
	e := &Engine{
		cfg:      cfg.withDefaults(),
		gw:       gw,
		bus:      b,
		status:   st,
		logger:   logger,
		arrivals: make(map[uint64]clock.Timer),
	}
	e.load()
	return e
}

func (e *Engine) load() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.status.Transition(status.Loading); err != nil {
		e.logger.Warn("status transition failed", zap.Error(err))
	}
	e.store = e.loadDomain()
	e.view = e.loadView()
	_ = e.flushLocked()
	if e.status.Current() == status.Loading {
		_ = e.status.Transition(status.Ready)
	}
	e.logger.Info("engine loaded",
		zap.Int("chats", len(e.store.ListConversations(domain.KindChat))),
		zap.Int("teams", len(e.store.ListConversations(domain.KindTeams))),
		zap.String("view", string(e.view.View())),
		zap.String("active", e.view.ActiveID()),
	)
}

func (e *Engine) loadDomain() *domain.Store {
	seed := func(reason string) *domain.Store {
		e.logger.Info("seeding demonstration data", zap.String("reason", reason))
		e.dirtyData = true
		return domain.Seed(e.cfg.Clock.Now(), e.cfg.PreviewLength)
	}

	raw, ok, err := e.gw.Get(KeyDomainData)
	if err != nil {
		e.logger.Warn("read domain data failed", zap.Error(err))
		return seed("read_failed")
	}
	if !ok {
		return seed("missing")
	}
	s, rep, err := domain.Decode([]byte(raw), e.cfg.PreviewLength)
	if err != nil {
		e.logger.Warn("domain data corrupt", zap.Error(err))
		return seed("corrupt")
	}
	if !rep.Empty() {
		e.logger.Info("domain data repaired",
			zap.Int("backfilled", rep.Backfilled),
			zap.Strings("missing_lists", rep.MissingLists),
			zap.Strings("orphan_lists", rep.OrphanLists),
			zap.Int("skipped", rep.SkippedRecords),
			zap.Int("derived_refreshed", rep.DerivedRefreshed),
		)
		e.dirtyData = true
	}
	return s
}

func (e *Engine) loadView() *viewstate.Controller {
	st := viewstate.Default()
	raw, ok, err := e.gw.Get(KeyViewState)
	switch {
	case err != nil:
		e.logger.Warn("read view state failed", zap.Error(err))
	case ok:
		decoded, derr := viewstate.Decode([]byte(raw))
		if derr != nil {
			e.logger.Warn("view state corrupt", zap.Error(derr))
		}
		st = decoded
	}
	c := viewstate.New(st, e.store.ListConversations)
	if !ok || c.State() != st {
		e.dirtyView = true
	}
	return c
}

// Close stops pending timers, flushes anything still dirty and marks the
// engine stopped. Pending simulated arrivals are dropped.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	if e.typing.timer != nil {
		e.typing.timer.Stop()
	}
	dropped := 0
	for id, t := range e.arrivals {
		if t.Stop() {
			dropped++
		}
		delete(e.arrivals, id)
	}
	if dropped > 0 {
		e.logger.Info("dropped pending arrivals", zap.Int("count", dropped))
	}

	err := e.flushLocked()
	if serr := e.status.Ensure(status.Stopped); serr != nil {
		e.logger.Warn("status transition failed", zap.Error(serr))
	}
	return err
}

// Status returns the lifecycle state.
func (e *Engine) Status() status.State {
	return e.status.Current()
}

// flushLocked writes the dirty blobs. A failed write keeps its blob dirty so
// the next flush retries it.
func (e *Engine) flushLocked() error {
	var errs []error
	if e.dirtyData {
		data, err := e.store.Encode()
		if err == nil {
			err = e.gw.Set(KeyDomainData, string(data))
		}
		if err != nil {
			errs = append(errs, e.persistFailed(KeyDomainData, err))
		} else {
			e.dirtyData = false
		}
	}
	if e.dirtyView {
		data, err := e.view.State().Encode()
		if err == nil {
			err = e.gw.Set(KeyViewState, string(data))
		}
		if err != nil {
			errs = append(errs, e.persistFailed(KeyViewState, err))
		} else {
			e.dirtyView = false
		}
	}
	if len(errs) > 0 {
		if err := e.status.Ensure(status.Degraded); err != nil {
			e.logger.Warn("status transition failed", zap.Error(err))
		}
		return errors.Join(errs...)
	}
	if e.status.Current() == status.Degraded {
		if err := e.status.Transition(status.Ready); err == nil {
			e.logger.Info("persistence recovered")
		}
	}
	return nil
}

func (e *Engine) persistFailed(key string, err error) error {
	e.logger.Error("persist failed", zap.String("key", key), zap.Error(err))
	e.emit(bus.PersistFailed, key)
	return err
}

func (e *Engine) emit(kind string, payload any) {
	e.bus.Emit(kind, e.cfg.Clock.Now(), payload)
}

func (e *Engine) now() int64 {
	return e.cfg.Clock.Now().UnixMilli()
}
