// Package grpc exposes the event services over gRPC with the JSON codec
// from the rpc package.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/dmitrijs2005/eventfeed/internal/rpc"
	"github.com/dmitrijs2005/eventfeed/internal/server/models"
	"google.golang.org/grpc"
)

type userSvc interface {
	Register(ctx context.Context, username, password, bio string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, int64, error)
}

type eventSvc interface {
	List(ctx context.Context, filter models.EventFilter) ([]*models.Event, int, error)
	Create(ctx context.Context, userID int64, in models.CreateEventInput) (*models.Event, error)
	Update(ctx context.Context, userID, id int64, in models.UpdateEventInput) (*models.Event, error)
	Delete(ctx context.Context, userID, id int64) error
	Hobbies(ctx context.Context) ([]string, error)
}

type GRPCServer struct {
	address   string
	users     userSvc
	events    eventSvc
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.EventServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, us userSvc, es eventSvc, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		events:    es,
		jwtSecret: []byte(secretKey),
	}
}

// maxMessageSize leaves room for base64 image payloads in JSON requests.
const maxMessageSize = 16 << 20

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
	)
	rpc.RegisterEventServiceServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
