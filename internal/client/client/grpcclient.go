package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/common"
	"github.com/dmitrijs2005/eventfeed/internal/rpc"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const defaultTimeout = 12 * time.Second

type GRPCClient struct {
	endpointURL string
	pageSize    int
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      rpc.EventServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, common.BearerPrefix+token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx = withAccessToken(ctx, s.token())
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewEventFeedClient dials endpointURL lazily; no request is made until
// the first call.
func NewEventFeedClient(endpointURL string, pageSize int, timeout time.Duration) (*GRPCClient, error) {
	if pageSize <= 0 {
		pageSize = common.DefaultPageSize
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &GRPCClient{endpointURL: endpointURL, pageSize: pageSize, timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(rpc.CallOption()),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewEventServiceClient(conn)
	return nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, username, password, bio string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Register(ctx, &rpc.RegisterRequest{Username: username, Password: password, Bio: bio})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.UserID, nil
}

// Login stores the returned token for subsequent calls and returns it so
// the caller can persist it.
func (s *GRPCClient) Login(ctx context.Context, username, password string) (string, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: username, Password: password})
	if err != nil {
		return "", 0, s.mapError(err)
	}
	s.SetAccessToken(resp.AccessToken)
	return resp.AccessToken, resp.UserID, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrNetwork
	}
	return nil
}

func (s *GRPCClient) FetchPage(ctx context.Context, filter models.Filter, cursor string) (models.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := &rpc.ListEventsRequest{
		Location: filter.Location,
		Hobby:    filter.Hobby,
		Official: filter.Official,
		Cursor:   cursor,
		Limit:    s.pageSize,
	}
	resp, err := s.client.ListEvents(ctx, req)
	if err != nil {
		return models.Page{}, s.mapError(err)
	}

	page := models.Page{NextCursor: resp.NextCursor, Events: make([]models.Event, 0, len(resp.Events))}
	for _, e := range resp.Events {
		page.Events = append(page.Events, eventFromRPC(e))
	}
	return page, nil
}

func (s *GRPCClient) CreateEvent(ctx context.Context, in models.CreateInput) (models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	hobbies := in.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}
	req := &rpc.CreateEventRequest{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		Hobbies:     hobbies,
		Image:       imageToRPC(in.Image),
	}
	resp, err := s.client.CreateEvent(ctx, req)
	if err != nil {
		return models.Event{}, s.mapError(err)
	}
	return eventFromRPC(resp.Event), nil
}

func (s *GRPCClient) UpdateEvent(ctx context.Context, in models.UpdateInput) (models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := &rpc.UpdateEventRequest{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		Image:       imageToRPC(in.Image),
	}
	resp, err := s.client.UpdateEvent(ctx, req)
	if err != nil {
		return models.Event{}, s.mapError(err)
	}
	return eventFromRPC(resp.Event), nil
}

func (s *GRPCClient) DeleteEvent(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.client.DeleteEvent(ctx, &rpc.DeleteEventRequest{ID: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListHobbies(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.ListHobbies(ctx, &rpc.ListHobbiesRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Hobbies, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrNetwork, context.Canceled)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrNetwork, context.DeadlineExceeded)
	}
	st, ok := status.FromError(err)
	if !ok {
		return &ServerError{Status: codes.Unknown, Message: err.Error()}
	}
	// grpc reports a cancelled or expired call context as a bare status.
	switch st.Code() {
	case codes.Canceled:
		return fmt.Errorf("%w: %w", ErrNetwork, context.Canceled)
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", ErrNetwork, context.DeadlineExceeded)
	case codes.Unavailable:
		return ErrNetwork
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return validationFromStatus(st)
	default:
		return &ServerError{Status: st.Code(), Message: st.Message()}
	}
}

func validationFromStatus(st *status.Status) error {
	fields := models.FieldErrors{}
	for _, d := range st.Details() {
		br, ok := d.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range br.GetFieldViolations() {
			fields[v.GetField()] = append(fields[v.GetField()], v.GetDescription())
		}
	}
	if len(fields) == 0 {
		fields["body"] = []string{st.Message()}
	}
	return &ValidationError{Fields: fields}
}
