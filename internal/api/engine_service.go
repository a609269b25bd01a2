// Package api exposes the engine over gRPC.
package api

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
	"github.com/matheus3301/chatsim/internal/bus"
	"github.com/matheus3301/chatsim/internal/domain"
	"github.com/matheus3301/chatsim/internal/engine"
	"github.com/matheus3301/chatsim/internal/listing"
	"github.com/matheus3301/chatsim/internal/status"
)

// EngineService implements apiv1.EngineServer on top of an engine.
type EngineService struct {
	profile    string
	socketPath string
	startedAt  time.Time
	engine     *engine.Engine
	machine    *status.Machine
	bus        *bus.Bus
	logger     *zap.Logger
}

// NewEngineService creates the service for one profile.
func NewEngineService(profile, socketPath string, eng *engine.Engine, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *EngineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngineService{
		profile:    profile,
		socketPath: socketPath,
		startedAt:  time.Now(),
		engine:     eng,
		machine:    machine,
		bus:        b,
		logger:     logger,
	}
}

var _ apiv1.EngineServer = (*EngineService)(nil)

func (s *EngineService) GetStatus(_ context.Context, _ *apiv1.Empty) (*apiv1.StatusResponse, error) {
	counts := s.engine.Counts()
	return &apiv1.StatusResponse{
		Profile:    s.profile,
		State:      string(s.machine.Current()),
		Since:      s.machine.Since().UnixMilli(),
		Chats:      counts.Chats,
		Teams:      counts.Teams,
		Unread:     counts.Unread,
		DaemonPID:  os.Getpid(),
		StartedAt:  s.startedAt.UnixMilli(),
		SocketPath: s.socketPath,
	}, nil
}

func (s *EngineService) GetSnapshot(_ context.Context, _ *apiv1.Empty) (*apiv1.Snapshot, error) {
	snap := s.engine.Snapshot()
	return SnapshotToWire(&snap), nil
}

func (s *EngineService) SendMessage(_ context.Context, req *apiv1.SendMessageRequest) (*apiv1.SendMessageResponse, error) {
	msg, err := s.engine.SendMessage(req.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return &apiv1.SendMessageResponse{Message: messageToWire(msg)}, nil
}

func (s *EngineService) SimulateReceive(_ context.Context, _ *apiv1.Empty) (*apiv1.Empty, error) {
	if err := s.engine.SimulateReceive(); err != nil {
		return nil, toStatus(err)
	}
	return &apiv1.Empty{}, nil
}

func (s *EngineService) CreateConversation(_ context.Context, req *apiv1.CreateConversationRequest) (*apiv1.CreateConversationResponse, error) {
	kind := domain.Kind(req.Kind)
	if !kind.Valid() {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "unknown kind %q", req.Kind)
	}
	id, err := s.engine.CreateConversation(kind, req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return &apiv1.CreateConversationResponse{ID: id}, nil
}

func (s *EngineService) SetActive(_ context.Context, req *apiv1.SetActiveRequest) (*apiv1.Empty, error) {
	if err := s.engine.SetActive(req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &apiv1.Empty{}, nil
}

func (s *EngineService) SwitchView(_ context.Context, req *apiv1.SwitchViewRequest) (*apiv1.Empty, error) {
	if err := s.engine.SwitchView(domain.Kind(req.View)); err != nil {
		return nil, toStatus(err)
	}
	return &apiv1.Empty{}, nil
}

func (s *EngineService) ChangeFilter(_ context.Context, req *apiv1.ChangeFilterRequest) (*apiv1.Empty, error) {
	s.engine.ChangeFilter(req.Text)
	return &apiv1.Empty{}, nil
}

func (s *EngineService) ClearFilter(_ context.Context, _ *apiv1.Empty) (*apiv1.Empty, error) {
	s.engine.ClearFilter()
	return &apiv1.Empty{}, nil
}

func (s *EngineService) MarkRead(_ context.Context, req *apiv1.MarkReadRequest) (*apiv1.MarkReadResponse, error) {
	n, err := s.engine.MarkConversationMessagesConsidered(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &apiv1.MarkReadResponse{Changed: n}, nil
}

func (s *EngineService) WatchEvents(req *apiv1.WatchEventsRequest, stream apiv1.EventStream) error {
	ch, unsub := s.bus.Subscribe(req.Namespace, 256)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			if err := stream.Send(EventToWire(evt)); err != nil {
				return err
			}
		case <-stream.Context().Done():
			s.logger.Debug("event watcher gone", zap.String("namespace", req.Namespace))
			return nil
		}
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, engine.ErrEmptyInput), errors.Is(err, engine.ErrUnknownView), errors.Is(err, domain.ErrInvalid):
		return grpcstatus.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, engine.ErrNotFound):
		return grpcstatus.Error(codes.NotFound, err.Error())
	case errors.Is(err, engine.ErrUnavailable), errors.Is(err, engine.ErrClosed):
		return grpcstatus.Error(codes.FailedPrecondition, err.Error())
	default:
		return grpcstatus.Error(codes.Internal, err.Error())
	}
}

// EventToWire flattens a bus event into the stream message.
func EventToWire(evt bus.Event) *apiv1.Event {
	out := &apiv1.Event{
		ID:        uuid.NewString(),
		Kind:      evt.Kind,
		Timestamp: evt.Timestamp.UnixMilli(),
	}
	switch p := evt.Payload.(type) {
	case bus.ConversationPayload:
		out.ConversationID = p.ConversationID
		out.View = p.Kind
	case bus.MessagePayload:
		out.ConversationID = p.ConversationID
		out.MessageID = p.MessageID
		out.Count = p.Count
	case bus.TypingPayload:
		out.ConversationID = p.ConversationID
		out.Name = p.Name
	case bus.ViewPayload:
		out.View = p.View
		out.ActiveID = p.ActiveID
		out.Filter = p.Filter
	case status.StatusChange:
		out.From = string(p.From)
		out.To = string(p.To)
	case string:
		// persist failures carry the blob key
		out.Name = p
	}
	return out
}

// SnapshotToWire converts an engine snapshot to its wire form.
func SnapshotToWire(snap *engine.Snapshot) *apiv1.Snapshot {
	out := &apiv1.Snapshot{
		Status:             string(snap.Status),
		Now:                snap.Now.UnixMilli(),
		View:               string(snap.View),
		Filter:             snap.Filter,
		Sections:           make([]apiv1.Section, 0, len(snap.List.Sections)),
		Messages:           make([]apiv1.Message, 0, len(snap.Messages)),
		Title:              snap.Title,
		ContentPlaceholder: snap.ContentPlaceholder,
		InputEnabled:       snap.InputEnabled,
		InputPlaceholder:   snap.InputPlaceholder,
	}
	for _, sec := range snap.List.Sections {
		ws := apiv1.Section{Label: sec.Label, Items: make([]apiv1.ListItem, 0, len(sec.Items))}
		for _, it := range sec.Items {
			ws.Items = append(ws.Items, apiv1.ListItem{
				ID:        it.ID,
				Name:      it.Name,
				AvatarRef: it.AvatarRef,
				Preview:   it.Preview,
				TimeLabel: it.TimeLabel,
				Badge:     it.Badge,
				Available: it.Available,
				Pinned:    it.Pinned,
				Active:    it.Active,
			})
		}
		out.Sections = append(out.Sections, ws)
	}
	if snap.List.Empty != listing.NotEmpty {
		out.Empty = snap.List.Empty.String()
		out.EmptyLabel = snap.List.EmptyLabel
	}
	if a := snap.Active; a != nil {
		out.Active = &apiv1.Conversation{
			ID:          a.ID,
			Kind:        string(a.Kind),
			Name:        a.Name,
			AvatarRef:   a.AvatarRef,
			Presence:    string(a.Presence),
			Pinned:      a.Pinned,
			UnreadCount: a.UnreadCount,
			Messages:    a.Messages,
		}
	}
	for _, mv := range snap.Messages {
		m := messageToWire(mv.Message)
		m.TimeLabel = mv.TimeLabel
		m.DateSeparator = mv.DateSeparator
		m.DateLabel = mv.DateLabel
		out.Messages = append(out.Messages, m)
	}
	if t := snap.Typing; t != nil {
		out.Typing = &apiv1.Typing{ConversationID: t.ConversationID, Name: t.Name, Until: t.Until.UnixMilli()}
	}
	return out
}

func messageToWire(m domain.Message) apiv1.Message {
	out := apiv1.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         m.Sender,
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
		Direction:      string(m.Direction),
		Read:           m.Read,
	}
	for _, r := range m.Reactions {
		out.Reactions = append(out.Reactions, apiv1.Reaction{Kind: r.Kind, Count: r.Count, Reactors: r.Reactors})
	}
	return out
}
