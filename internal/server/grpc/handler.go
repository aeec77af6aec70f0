package grpc

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/dmitrijs2005/eventfeed/internal/common"
	"github.com/dmitrijs2005/eventfeed/internal/rpc"
	"github.com/dmitrijs2005/eventfeed/internal/server/models"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request")

	user, err := s.users.Register(ctx, req.Username, req.Password, req.Bio)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username, "id", user.ID)
	return &rpc.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {

	token, userID, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.LoginResponse{AccessToken: token, UserID: userID}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

// ListEvents reads the cursor as a page number; empty means the first
// page.
func (s *GRPCServer) ListEvents(ctx context.Context, req *rpc.ListEventsRequest) (*rpc.ListEventsResponse, error) {
	page := 1
	if req.Cursor != "" {
		p, err := strconv.Atoi(req.Cursor)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid cursor")
		}
		page = p
	}

	events, next, err := s.events.List(ctx, models.EventFilter{
		Location: req.Location,
		Hobby:    req.Hobby,
		Official: req.Official,
		Page:     page,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &rpc.ListEventsResponse{Events: make([]rpc.Event, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, e.ToRPC())
	}
	if next > 0 {
		resp.NextCursor = strconv.Itoa(next)
	}
	return resp, nil
}

func (s *GRPCServer) CreateEvent(ctx context.Context, req *rpc.CreateEventRequest) (*rpc.EventResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	event, err := s.events.Create(ctx, userID, models.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Hobbies:     req.Hobbies,
		Image:       imageFromRPC(req.Image),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Event created", "id", event.ID, "user", userID)
	return &rpc.EventResponse{Event: event.ToRPC()}, nil
}

func (s *GRPCServer) UpdateEvent(ctx context.Context, req *rpc.UpdateEventRequest) (*rpc.EventResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	if req.ID <= 0 {
		return nil, s.toStatus(ctx, models.FieldErrors{"id": {"must be positive"}}.Err())
	}

	event, err := s.events.Update(ctx, userID, req.ID, models.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Image:       imageFromRPC(req.Image),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &rpc.EventResponse{Event: event.ToRPC()}, nil
}

func (s *GRPCServer) DeleteEvent(ctx context.Context, req *rpc.DeleteEventRequest) (*rpc.DeleteEventResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	if err := s.events.Delete(ctx, userID, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Event deleted", "id", req.ID, "user", userID)
	return &rpc.DeleteEventResponse{}, nil
}

func (s *GRPCServer) ListHobbies(ctx context.Context, req *rpc.ListHobbiesRequest) (*rpc.ListHobbiesResponse, error) {
	names, err := s.events.Hobbies(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if names == nil {
		names = []string{}
	}
	return &rpc.ListHobbiesResponse{Hobbies: names}, nil
}

func imageFromRPC(img *rpc.Image) *models.Image {
	if img == nil {
		return nil
	}
	return &models.Image{Filename: img.Filename, ContentType: img.ContentType, Data: img.Data}
}

// toStatus maps service errors to gRPC status codes. Unknown errors are
// logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return validationStatus(ve)
	case errors.Is(err, common.ErrorNoChanges):
		return status.Error(codes.InvalidArgument, "No fields to update")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "Event not found")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "Forbidden")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "Invalid credentials")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "Username already taken")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// validationStatus carries field messages as errdetails.BadRequest
// violations, one per message, fields in name order.
func validationStatus(ve *models.ValidationError) error {
	fields := make([]string, 0, len(ve.Fields))
	for f := range ve.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	br := &errdetails.BadRequest{}
	for _, f := range fields {
		for _, msg := range ve.Fields[f] {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       f,
				Description: msg,
			})
		}
	}

	st := status.New(codes.InvalidArgument, "Validation failed")
	withDetails, err := st.WithDetails(br)
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}
