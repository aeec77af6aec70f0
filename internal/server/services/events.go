package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eventfeed/internal/common"
	"github.com/dmitrijs2005/eventfeed/internal/dbx"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/dmitrijs2005/eventfeed/internal/server/images"
	"github.com/dmitrijs2005/eventfeed/internal/server/models"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/repomanager"
)

// Notifier broadcasts a successful write to connected clients.
type Notifier interface {
	Publish(ctx context.Context, n models.Notification)
}

type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      images.Store
	notifier    Notifier
	logger      logging.Logger
}

func NewEventService(db *sql.DB, m repomanager.RepositoryManager, store images.Store, n Notifier, logger logging.Logger) *EventService {
	return &EventService{
		db:          db,
		repomanager: m,
		images:      store,
		notifier:    n,
		logger:      logger,
	}
}

// ClampPage normalizes a page request: page is at least 1 and limit lies
// in [1, common.MaxPageSize], zero meaning common.DefaultPageSize.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = common.DefaultPageSize
	case limit > common.MaxPageSize:
		limit = common.MaxPageSize
	}
	return page, limit
}

// List returns one page of events ordered by date. next is the following
// page number, or 0 when this page was not full.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) (events []*models.Event, next int, err error) {
	filter.Page, filter.Limit = ClampPage(filter.Page, filter.Limit)

	events, err = s.repomanager.Events(s.db).List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing events: %w", err)
	}

	for _, e := range events {
		s.fillImageURL(e)
	}

	if len(events) == filter.Limit {
		next = filter.Page + 1
	}
	return events, next, nil
}

func (s *EventService) Hobbies(ctx context.Context) ([]string, error) {
	names, err := s.repomanager.Hobbies(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing hobbies: %w", err)
	}
	return names, nil
}

// Create stores a new event owned by userID and links the named hobbies.
// Unknown hobby names are ignored.
func (s *EventService) Create(ctx context.Context, userID int64, in models.CreateEventInput) (*models.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// Only operators mark events official, directly in the database.
	event := &models.Event{
		Title:       in.Title,
		Description: &in.Description,
		Date:        in.Date,
		Location:    &in.Location,
		CreatorID:   userID,
		Official:    false,
	}

	if in.Image != nil {
		key, err := s.images.Put(ctx, *in.Image)
		if err != nil {
			return nil, fmt.Errorf("error storing image: %w", err)
		}
		event.ImageKey = &key
	}

	var created *models.Event
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		events := s.repomanager.Events(tx)

		e, err := events.Create(ctx, event)
		if err != nil {
			return fmt.Errorf("error creating event: %w", err)
		}

		if len(in.Hobbies) > 0 {
			if err := s.repomanager.Hobbies(tx).Link(ctx, e.ID, in.Hobbies); err != nil {
				return fmt.Errorf("error linking hobbies: %w", err)
			}
		}

		created, err = events.Get(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("error reading event: %w", err)
		}
		return nil
	})
	if err != nil {
		if event.ImageKey != nil {
			s.dropImage(ctx, *event.ImageKey)
		}
		return nil, err
	}

	s.fillImageURL(created)
	s.notifier.Publish(ctx, models.Notification{Kind: models.NotificationCreated, Event: created})
	return created, nil
}

// owned loads event id and checks it belongs to userID.
func (s *EventService) owned(ctx context.Context, userID, id int64) (*models.Event, error) {
	event, err := s.repomanager.Events(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != userID {
		return nil, common.ErrorForbidden
	}
	return event, nil
}

// Update applies a partial change to an event owned by userID. A new
// image replaces the stored one.
func (s *EventService) Update(ctx context.Context, userID, id int64, in models.UpdateEventInput) (*models.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch := in.Patch()
	if in.Image != nil {
		key, err := s.images.Put(ctx, *in.Image)
		if err != nil {
			return nil, fmt.Errorf("error storing image: %w", err)
		}
		patch.ImageKey = &key
	}

	var updated *models.Event
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		events := s.repomanager.Events(tx)

		if err := events.Update(ctx, id, patch); err != nil {
			return fmt.Errorf("error updating event: %w", err)
		}

		e, err := events.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("error reading event: %w", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		if patch.ImageKey != nil {
			s.dropImage(ctx, *patch.ImageKey)
		}
		return nil, err
	}

	if patch.ImageKey != nil && current.ImageKey != nil {
		s.dropImage(ctx, *current.ImageKey)
	}

	s.fillImageURL(updated)
	s.notifier.Publish(ctx, models.Notification{Kind: models.NotificationUpdated, Event: updated})
	return updated, nil
}

// Delete removes an event owned by userID together with its image.
func (s *EventService) Delete(ctx context.Context, userID, id int64) error {
	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repomanager.Events(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}

	if current.ImageKey != nil {
		s.dropImage(ctx, *current.ImageKey)
	}

	s.notifier.Publish(ctx, models.Notification{Kind: models.NotificationDeleted, EventID: id})
	return nil
}

func (s *EventService) fillImageURL(e *models.Event) {
	if e.ImageKey == nil || *e.ImageKey == "" {
		e.ImageURL = nil
		return
	}
	url := s.images.URL(*e.ImageKey)
	e.ImageURL = &url
}

// dropImage removes an orphaned object. Failures are logged only.
func (s *EventService) dropImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "image delete failed", "key", key, "error", err)
	}
}
