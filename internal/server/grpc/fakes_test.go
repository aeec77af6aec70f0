package grpc

import (
	"context"

	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/dmitrijs2005/eventfeed/internal/server/models"
)

type fakeUsers struct {
	regOut *models.User
	regErr error

	token    string
	userID   int64
	loginErr error
}

func (f *fakeUsers) Register(context.Context, string, string, string) (*models.User, error) {
	return f.regOut, f.regErr
}

func (f *fakeUsers) Login(context.Context, string, string) (string, int64, error) {
	return f.token, f.userID, f.loginErr
}

type fakeEvents struct {
	lastFilter models.EventFilter
	lastUser   int64
	lastID     int64
	lastCreate models.CreateEventInput
	lastUpdate models.UpdateEventInput

	listOut []*models.Event
	next    int
	out     *models.Event
	hobbies []string
	err     error
}

func (f *fakeEvents) List(_ context.Context, filter models.EventFilter) ([]*models.Event, int, error) {
	f.lastFilter = filter
	return f.listOut, f.next, f.err
}

func (f *fakeEvents) Create(_ context.Context, userID int64, in models.CreateEventInput) (*models.Event, error) {
	f.lastUser, f.lastCreate = userID, in
	return f.out, f.err
}

func (f *fakeEvents) Update(_ context.Context, userID, id int64, in models.UpdateEventInput) (*models.Event, error) {
	f.lastUser, f.lastID, f.lastUpdate = userID, id, in
	return f.out, f.err
}

func (f *fakeEvents) Delete(_ context.Context, userID, id int64) error {
	f.lastUser, f.lastID = userID, id
	return f.err
}

func (f *fakeEvents) Hobbies(context.Context) ([]string, error) {
	return f.hobbies, f.err
}

func newServer(u userSvc, e eventSvc) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), u, e, "k")
}

func asUser(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
