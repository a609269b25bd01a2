package apiv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "chatsim.v1.Engine"

// EngineServer is implemented by the daemon.
type EngineServer interface {
	GetStatus(context.Context, *Empty) (*StatusResponse, error)
	GetSnapshot(context.Context, *Empty) (*Snapshot, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	SimulateReceive(context.Context, *Empty) (*Empty, error)
	CreateConversation(context.Context, *CreateConversationRequest) (*CreateConversationResponse, error)
	SetActive(context.Context, *SetActiveRequest) (*Empty, error)
	SwitchView(context.Context, *SwitchViewRequest) (*Empty, error)
	ChangeFilter(context.Context, *ChangeFilterRequest) (*Empty, error)
	ClearFilter(context.Context, *Empty) (*Empty, error)
	MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error)
	WatchEvents(*WatchEventsRequest, EventStream) error
}

// EventStream is the server side of WatchEvents.
type EventStream interface {
	Send(*Event) error
	Context() context.Context
}

// RegisterEngineServer registers srv on s.
func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](call func(EngineServer, context.Context, *Req) (*Resp, error), method string) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EngineServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EngineServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type eventStream struct {
	grpc.ServerStream
}

func (s eventStream) Send(e *Event) error { return s.SendMsg(e) }

// ServiceDesc describes chatsim.v1.Engine.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(EngineServer.GetStatus, "GetStatus"),
		unary(EngineServer.GetSnapshot, "GetSnapshot"),
		unary(EngineServer.SendMessage, "SendMessage"),
		unary(EngineServer.SimulateReceive, "SimulateReceive"),
		unary(EngineServer.CreateConversation, "CreateConversation"),
		unary(EngineServer.SetActive, "SetActive"),
		unary(EngineServer.SwitchView, "SwitchView"),
		unary(EngineServer.ChangeFilter, "ChangeFilter"),
		unary(EngineServer.ClearFilter, "ClearFilter"),
		unary(EngineServer.MarkRead, "MarkRead"),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(WatchEventsRequest)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(EngineServer).WatchEvents(in, eventStream{stream})
			},
		},
	},
	Metadata: "chatsim/v1/engine",
}
