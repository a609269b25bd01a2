package apiv1

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial connects to a daemon's Unix socket.
func Dial(socketPath string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socketPath, err)
	}
	return conn, nil
}

// EngineClient calls chatsim.v1.Engine.
type EngineClient struct {
	cc grpc.ClientConnInterface
}

// NewEngineClient wraps a connection.
func NewEngineClient(cc grpc.ClientConnInterface) *EngineClient {
	return &EngineClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *EngineClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngineClient) GetStatus(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c, "GetStatus", in, opts)
}

func (c *EngineClient) GetSnapshot(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Snapshot, error) {
	return invoke[Snapshot](ctx, c, "GetSnapshot", in, opts)
}

func (c *EngineClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c, "SendMessage", in, opts)
}

func (c *EngineClient) SimulateReceive(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "SimulateReceive", in, opts)
}

func (c *EngineClient) CreateConversation(ctx context.Context, in *CreateConversationRequest, opts ...grpc.CallOption) (*CreateConversationResponse, error) {
	return invoke[CreateConversationResponse](ctx, c, "CreateConversation", in, opts)
}

func (c *EngineClient) SetActive(ctx context.Context, in *SetActiveRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "SetActive", in, opts)
}

func (c *EngineClient) SwitchView(ctx context.Context, in *SwitchViewRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "SwitchView", in, opts)
}

func (c *EngineClient) ChangeFilter(ctx context.Context, in *ChangeFilterRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "ChangeFilter", in, opts)
}

func (c *EngineClient) ClearFilter(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "ClearFilter", in, opts)
}

func (c *EngineClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error) {
	return invoke[MarkReadResponse](ctx, c, "MarkRead", in, opts)
}

// EventReceiver is the client side of WatchEvents.
type EventReceiver struct {
	grpc.ClientStream
}

// Recv blocks for the next event.
func (r *EventReceiver) Recv() (*Event, error) {
	e := new(Event)
	if err := r.RecvMsg(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (c *EngineClient) WatchEvents(ctx context.Context, in *WatchEventsRequest, opts ...grpc.CallOption) (*EventReceiver, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/WatchEvents", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &EventReceiver{stream}, nil
}
