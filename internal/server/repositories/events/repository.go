package events

import (
	"context"

	"github.com/dmitrijs2005/eventfeed/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, filter models.EventFilter) ([]*models.Event, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Update(ctx context.Context, id int64, patch models.EventPatch) error
	Delete(ctx context.Context, id int64) error
}
