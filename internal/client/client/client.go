package client

import (
	"context"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
)

// Client is the remote collaborator of the feed: authentication, paginated
// listing and the three event mutations.
type Client interface {
	Close() error
	Register(ctx context.Context, username, password, bio string) (int64, error)
	Login(ctx context.Context, username, password string) (token string, userID int64, err error)
	SetAccessToken(token string)
	Ping(ctx context.Context) error
	FetchPage(ctx context.Context, filter models.Filter, cursor string) (models.Page, error)
	CreateEvent(ctx context.Context, in models.CreateInput) (models.Event, error)
	UpdateEvent(ctx context.Context, in models.UpdateInput) (models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	ListHobbies(ctx context.Context) ([]string, error)
}
