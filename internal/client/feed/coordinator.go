package feed

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
)

// Remote is the write side of the backend.
type Remote interface {
	CreateEvent(ctx context.Context, in models.CreateInput) (models.Event, error)
	UpdateEvent(ctx context.Context, in models.UpdateInput) (models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// Refetcher controls background refetches of a fingerprint.
type Refetcher interface {
	CancelRefetch(fp models.Fingerprint)
	Invalidate(fp models.Fingerprint)
}

// CreateResult is the outcome of Coordinator.Create. Err is set on failure;
// FieldErrors is filled when the failure is a validation error.
type CreateResult struct {
	Event       models.Event
	Err         error
	FieldErrors models.FieldErrors
}

func (r CreateResult) OK() bool { return r.Err == nil }

const imageVersionParam = "?v="

// Coordinator runs mutations with an optimistic projection, a snapshot for
// rollback and settlement against the remote.
type Coordinator struct {
	store   *Store
	pending *Pending
	remote  Remote
	refetch Refetcher
	logger  logging.Logger
	now     func() time.Time

	creating atomic.Int32

	bustMu   sync.Mutex
	lastBust int64
}

type CoordinatorOption func(*Coordinator)

// WithRefetcher sets the refetch controller; without one, cancellation and
// invalidation are no-ops.
func WithRefetcher(r Refetcher) CoordinatorOption {
	return func(c *Coordinator) { c.refetch = r }
}

// WithClock overrides time.Now for the image cache-busting token.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

func NewCoordinator(store *Store, pending *Pending, remote Remote, logger logging.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:   store,
		pending: pending,
		remote:  remote,
		logger:  logger,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// IsCreating reports whether any Create is in flight.
func (c *Coordinator) IsCreating() bool {
	return c.creating.Load() > 0
}

// Create sends in to the remote and, on success, puts the returned event at
// the front of fp's first page. Nothing is written before the server
// answers, so a failure leaves the cache untouched.
func (c *Coordinator) Create(ctx context.Context, fp models.Fingerprint, in models.CreateInput) CreateResult {
	if err := in.Validate(); err != nil {
		return failed(err)
	}

	c.creating.Add(1)
	defer c.creating.Add(-1)

	e, err := c.remote.CreateEvent(ctx, in)
	if err != nil {
		c.logger.Warn(ctx, "create failed", "error", err)
		return failed(err)
	}
	e = e.Normalize()
	if !c.store.Insert(fp, e) {
		c.logger.Debug(ctx, "created event not cached, no page loaded yet", "id", e.ID)
	}
	return CreateResult{Event: e}
}

func failed(err error) CreateResult {
	r := CreateResult{Err: err}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		r.FieldErrors = ve.Fields
	}
	return r
}

// Update merges in into the cached event immediately, then reconciles with
// the server's copy or rolls back to the pre-update snapshot.
func (c *Coordinator) Update(ctx context.Context, fp models.Fingerprint, in models.UpdateInput) (models.Event, error) {
	if err := in.Validate(); err != nil {
		return models.Event{}, err
	}

	c.cancelRefetch(fp)
	c.pending.Mark(in.ID, KindUpdate)
	defer c.settle(fp, in.ID, KindUpdate)

	snap := c.store.Snapshot(fp)
	if !c.store.Update(fp, in.ID, func(e models.Event) models.Event { return c.project(e, in) }) {
		c.logger.Debug(ctx, "updated event not cached", "id", in.ID)
	}

	updated, err := c.remote.UpdateEvent(ctx, in)
	if err != nil {
		c.store.Restore(snap)
		c.logger.Warn(ctx, "update failed, rolled back", "id", in.ID, "error", err)
		return models.Event{}, err
	}

	updated = updated.Normalize()
	c.store.Replace(fp, updated)
	return updated, nil
}

// Delete removes the event from the cache immediately and restores it if
// the server refuses.
func (c *Coordinator) Delete(ctx context.Context, fp models.Fingerprint, id int64) error {
	c.cancelRefetch(fp)
	c.pending.Mark(id, KindDelete)
	defer c.settle(fp, id, KindDelete)

	snap := c.store.Snapshot(fp)
	c.store.Remove(fp, id)

	if err := c.remote.DeleteEvent(ctx, id); err != nil {
		c.store.Restore(snap)
		c.logger.Warn(ctx, "delete failed, rolled back", "id", id, "error", err)
		return err
	}
	return nil
}

func (c *Coordinator) settle(fp models.Fingerprint, id int64, kind Kind) {
	if c.refetch != nil {
		c.refetch.Invalidate(fp)
	}
	c.pending.Unmark(id, kind)
}

func (c *Coordinator) cancelRefetch(fp models.Fingerprint) {
	if c.refetch != nil {
		c.refetch.CancelRefetch(fp)
	}
}

// project is the optimistic guess of the updated event. Hobbies are kept
// since the server computes them.
func (c *Coordinator) project(e models.Event, in models.UpdateInput) models.Event {
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.Description != nil {
		e.Description = models.StringPtr(*in.Description)
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
	if in.Location != nil {
		e.Location = models.StringPtr(*in.Location)
	}
	if in.Image != nil {
		base := in.Image.Filename
		if e.Image != nil && *e.Image != "" {
			base = *e.Image
		}
		e.Image = models.StringPtr(c.bust(base))
	}
	return e
}

// bust appends a version token that strictly increases across calls, even
// when the clock does not move.
func (c *Coordinator) bust(image string) string {
	if i := strings.Index(image, imageVersionParam); i >= 0 {
		image = image[:i]
	}

	c.bustMu.Lock()
	v := max(c.lastBust+1, c.now().UnixMilli())
	c.lastBust = v
	c.bustMu.Unlock()

	return image + imageVersionParam + strconv.FormatInt(v, 10)
}
