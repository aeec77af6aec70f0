package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "eventfeed.EventService"

// Method names of EventService.
const (
	MethodRegister    = "Register"
	MethodLogin       = "Login"
	MethodPing        = "Ping"
	MethodListEvents  = "ListEvents"
	MethodCreateEvent = "CreateEvent"
	MethodUpdateEvent = "UpdateEvent"
	MethodDeleteEvent = "DeleteEvent"
	MethodListHobbies = "ListHobbies"
)

// FullMethod returns "/eventfeed.EventService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// EventServiceServer is implemented by the server handler.
type EventServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	ListEvents(context.Context, *ListEventsRequest) (*ListEventsResponse, error)
	CreateEvent(context.Context, *CreateEventRequest) (*EventResponse, error)
	UpdateEvent(context.Context, *UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(context.Context, *DeleteEventRequest) (*DeleteEventResponse, error)
	ListHobbies(context.Context, *ListHobbiesRequest) (*ListHobbiesResponse, error)
}

// EventServiceClient is the client stub; tests substitute fakes for it.
type EventServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	ListEvents(ctx context.Context, in *ListEventsRequest, opts ...grpc.CallOption) (*ListEventsResponse, error)
	CreateEvent(ctx context.Context, in *CreateEventRequest, opts ...grpc.CallOption) (*EventResponse, error)
	UpdateEvent(ctx context.Context, in *UpdateEventRequest, opts ...grpc.CallOption) (*EventResponse, error)
	DeleteEvent(ctx context.Context, in *DeleteEventRequest, opts ...grpc.CallOption) (*DeleteEventResponse, error)
	ListHobbies(ctx context.Context, in *ListHobbiesRequest, opts ...grpc.CallOption) (*ListHobbiesResponse, error)
}

type eventServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEventServiceClient(cc grpc.ClientConnInterface) EventServiceClient {
	return &eventServiceClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *eventServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterRequest, RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *eventServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginRequest, LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *eventServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *eventServiceClient) ListEvents(ctx context.Context, in *ListEventsRequest, opts ...grpc.CallOption) (*ListEventsResponse, error) {
	return invoke[ListEventsRequest, ListEventsResponse](ctx, c.cc, MethodListEvents, in, opts)
}

func (c *eventServiceClient) CreateEvent(ctx context.Context, in *CreateEventRequest, opts ...grpc.CallOption) (*EventResponse, error) {
	return invoke[CreateEventRequest, EventResponse](ctx, c.cc, MethodCreateEvent, in, opts)
}

func (c *eventServiceClient) UpdateEvent(ctx context.Context, in *UpdateEventRequest, opts ...grpc.CallOption) (*EventResponse, error) {
	return invoke[UpdateEventRequest, EventResponse](ctx, c.cc, MethodUpdateEvent, in, opts)
}

func (c *eventServiceClient) DeleteEvent(ctx context.Context, in *DeleteEventRequest, opts ...grpc.CallOption) (*DeleteEventResponse, error) {
	return invoke[DeleteEventRequest, DeleteEventResponse](ctx, c.cc, MethodDeleteEvent, in, opts)
}

func (c *eventServiceClient) ListHobbies(ctx context.Context, in *ListHobbiesRequest, opts ...grpc.CallOption) (*ListHobbiesResponse, error) {
	return invoke[ListHobbiesRequest, ListHobbiesResponse](ctx, c.cc, MethodListHobbies, in, opts)
}

func unary[Req, Resp any](method string, call func(EventServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(EventServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes EventService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EventServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, EventServiceServer.Register),
		unary(MethodLogin, EventServiceServer.Login),
		unary(MethodPing, EventServiceServer.Ping),
		unary(MethodListEvents, EventServiceServer.ListEvents),
		unary(MethodCreateEvent, EventServiceServer.CreateEvent),
		unary(MethodUpdateEvent, EventServiceServer.UpdateEvent),
		unary(MethodDeleteEvent, EventServiceServer.DeleteEvent),
		unary(MethodListHobbies, EventServiceServer.ListHobbies),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eventfeed/rpc",
}

// RegisterEventServiceServer attaches srv to a gRPC server.
func RegisterEventServiceServer(s grpc.ServiceRegistrar, srv EventServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
