package model

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"google.golang.org/grpc"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
)

// Engine is the subset of the daemon client the view model drives.
type Engine interface {
	GetStatus(ctx context.Context, in *apiv1.Empty, opts ...grpc.CallOption) (*apiv1.StatusResponse, error)
	GetSnapshot(ctx context.Context, in *apiv1.Empty, opts ...grpc.CallOption) (*apiv1.Snapshot, error)
	SendMessage(ctx context.Context, in *apiv1.SendMessageRequest, opts ...grpc.CallOption) (*apiv1.SendMessageResponse, error)
	SimulateReceive(ctx context.Context, in *apiv1.Empty, opts ...grpc.CallOption) (*apiv1.Empty, error)
	CreateConversation(ctx context.Context, in *apiv1.CreateConversationRequest, opts ...grpc.CallOption) (*apiv1.CreateConversationResponse, error)
	SetActive(ctx context.Context, in *apiv1.SetActiveRequest, opts ...grpc.CallOption) (*apiv1.Empty, error)
	SwitchView(ctx context.Context, in *apiv1.SwitchViewRequest, opts ...grpc.CallOption) (*apiv1.Empty, error)
	ChangeFilter(ctx context.Context, in *apiv1.ChangeFilterRequest, opts ...grpc.CallOption) (*apiv1.Empty, error)
	ClearFilter(ctx context.Context, in *apiv1.Empty, opts ...grpc.CallOption) (*apiv1.Empty, error)
	MarkRead(ctx context.Context, in *apiv1.MarkReadRequest, opts ...grpc.CallOption) (*apiv1.MarkReadResponse, error)
	WatchEvents(ctx context.Context, in *apiv1.WatchEventsRequest, opts ...grpc.CallOption) (*apiv1.EventReceiver, error)
}

// ViewModel caches the daemon snapshot and signals UI refreshes.
type ViewModel struct {
	mu sync.RWMutex

	engine   Engine
	status   *apiv1.StatusResponse
	snapshot *apiv1.Snapshot

	refreshCh chan struct{}
}

// NewViewModel creates a new view model connected to the daemon client.
func NewViewModel(e Engine) *ViewModel {
	return &ViewModel{
		engine:    e,
		snapshot:  &apiv1.Snapshot{},
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// Refresh reloads the snapshot and status.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	snap, err := vm.engine.GetSnapshot(ctx, &apiv1.Empty{})
	if err != nil {
		return err
	}
	st, err := vm.engine.GetStatus(ctx, &apiv1.Empty{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.snapshot = snap
	vm.status = st
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// Snapshot returns the last loaded snapshot. Never nil.
func (vm *ViewModel) Snapshot() *apiv1.Snapshot {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.snapshot
}

// Status returns the last loaded daemon status, or nil before the first load.
func (vm *ViewModel) Status() *apiv1.StatusResponse {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// Send posts text to the active chat. Blank text is ignored.
func (vm *ViewModel) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, err := vm.engine.SendMessage(ctx, &apiv1.SendMessageRequest{Text: text}); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// Receive asks the daemon to simulate a reply into the active chat.
func (vm *ViewModel) Receive(ctx context.Context) error {
	if _, err := vm.engine.SimulateReceive(ctx, &apiv1.Empty{}); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// Open makes id the active conversation.
func (vm *ViewModel) Open(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := vm.engine.SetActive(ctx, &apiv1.SetActiveRequest{ID: id}); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// SwitchView shows the chat or teams collection.
func (vm *ViewModel) SwitchView(ctx context.Context, view string) error {
	if _, err := vm.engine.SwitchView(ctx, &apiv1.SwitchViewRequest{View: view}); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// ToggleView flips between the two collections.
func (vm *ViewModel) ToggleView(ctx context.Context) error {
	next := "teams"
	if vm.Snapshot().View == "teams" {
		next = "chat"
	}
	return vm.SwitchView(ctx, next)
}

// SetFilter stores the list filter. An empty text clears it.
func (vm *ViewModel) SetFilter(ctx context.Context, text string) error {
	var err error
	if text == "" {
		_, err = vm.engine.ClearFilter(ctx, &apiv1.Empty{})
	} else {
		_, err = vm.engine.ChangeFilter(ctx, &apiv1.ChangeFilterRequest{Text: text})
	}
	if err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// Create adds a conversation of kind and returns its id.
func (vm *ViewModel) Create(ctx context.Context, kind, name string) (string, error) {
	resp, err := vm.engine.CreateConversation(ctx, &apiv1.CreateConversationRequest{Kind: kind, Name: name})
	if err != nil {
		return "", err
	}
	return resp.ID, vm.Refresh(ctx)
}

// MarkRead flips the active chat's sent messages to read.
func (vm *ViewModel) MarkRead(ctx context.Context) (int, error) {
	active := vm.Snapshot().Active
	if active == nil || active.Kind != "chat" {
		return 0, nil
	}
	resp, err := vm.engine.MarkRead(ctx, &apiv1.MarkReadRequest{ID: active.ID})
	if err != nil {
		return 0, err
	}
	return resp.Changed, vm.Refresh(ctx)
}

// FindItem looks up a listed conversation by id, exact name or name prefix,
// ignoring case.
func (vm *ViewModel) FindItem(query string) (apiv1.ListItem, bool) {
	items := vm.Snapshot().Items()
	for _, it := range items {
		if it.ID == query || strings.EqualFold(it.Name, query) {
			return it, true
		}
	}
	q := strings.ToLower(query)
	for _, it := range items {
		if strings.HasPrefix(strings.ToLower(it.Name), q) {
			return it, true
		}
	}
	return apiv1.ListItem{}, false
}

// Watch streams daemon events and refreshes after each one. It returns when
// ctx is cancelled or the stream breaks.
func (vm *ViewModel) Watch(ctx context.Context, onEvent func(*apiv1.Event)) error {
	stream, err := vm.engine.WatchEvents(ctx, &apiv1.WatchEventsRequest{})
	if err != nil {
		return err
	}
	for {
		evt, err := stream.Recv()
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		if err := vm.Refresh(ctx); err != nil {
			return err
		}
		if onEvent != nil {
			onEvent(evt)
		}
	}
}
