package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
)

// Fetcher reads one page of a filtered listing. An empty cursor is the
// first page.
type Fetcher interface {
	FetchPage(ctx context.Context, filter models.Filter, cursor string) (models.Page, error)
}

// Backend is everything the controller needs from the server.
type Backend interface {
	Fetcher
	Remote
}

// Controller is the view-facing feed for one filter.
type Controller struct {
	filter  models.Filter
	fp      models.Fingerprint
	store   *Store
	pending *Pending
	backend Backend
	coord   *Coordinator
	sub     *Subscription
	logger  logging.Logger

	listener   *Listener
	coordOpts  []CoordinatorOption
	lifetime   context.Context
	stopAll    context.CancelFunc
	background sync.WaitGroup

	mu            sync.Mutex
	fetching      bool
	refetching    bool
	refetchGen    uint64
	refetchCancel context.CancelFunc
	err           error
	closed        bool
}

type ControllerOption func(*Controller)

// WithStore shares a cache between controllers; the default is private.
func WithStore(s *Store) ControllerOption {
	return func(c *Controller) { c.store = s }
}

// WithPending shares the pending set, normally with the Listener.
func WithPending(p *Pending) ControllerOption {
	return func(c *Controller) { c.pending = p }
}

// WithListener subscribes the controller's fingerprint to live updates for
// the controller's lifetime.
func WithListener(l *Listener) ControllerOption {
	return func(c *Controller) { c.listener = l }
}

func WithLogger(l logging.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

func WithCoordinatorOptions(opts ...CoordinatorOption) ControllerOption {
	return func(c *Controller) { c.coordOpts = append(c.coordOpts, opts...) }
}

func NewController(filter models.Filter, backend Backend, opts ...ControllerOption) *Controller {
	c := &Controller{
		filter:  filter,
		fp:      filter.Fingerprint(),
		backend: backend,
		logger:  logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.store == nil {
		c.store = NewStore()
	}
	if c.pending == nil {
		c.pending = NewPending()
	}
	c.lifetime, c.stopAll = context.WithCancel(context.Background())
	c.coord = NewCoordinator(c.store, c.pending, backend, c.logger,
		append([]CoordinatorOption{WithRefetcher(c)}, c.coordOpts...)...)
	if c.listener != nil {
		c.sub = c.listener.Subscribe(c.fp)
	}
	return c
}

func (c *Controller) Filter() models.Filter { return c.filter }

func (c *Controller) Fingerprint() models.Fingerprint { return c.fp }

// List is the flattened visible list.
func (c *Controller) List() []models.Event { return c.store.Flatten(c.fp) }

func (c *Controller) PendingIDs() []int64 { return c.pending.IDs() }

func (c *Controller) IsPending(id int64) bool { return c.pending.IsPending(id) }

func (c *Controller) IsCreating() bool { return c.coord.IsCreating() }

// IsLoading reports an in-flight load of the first page.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching && c.store.PageCount(c.fp) == 0
}

func (c *Controller) IsFetchingNextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching && c.store.PageCount(c.fp) > 0
}

func (c *Controller) IsError() bool { return c.Err() != nil }

// Err is the error of the last page load or refetch, cleared by the next
// successful one.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// HasNextPage is false before the first page is loaded and after the last.
func (c *Controller) HasNextPage() bool {
	cursor, ok := c.store.LastCursor(c.fp)
	return ok && cursor != ""
}

// LoadNextPage fetches the first page when nothing is cached and the next
// one otherwise. It does nothing when the listing is exhausted or a load
// or refetch is already running.
func (c *Controller) LoadNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.fetching || c.refetching {
		c.mu.Unlock()
		return nil
	}
	cursor, ok := c.store.LastCursor(c.fp)
	if ok && cursor == "" {
		c.mu.Unlock()
		return nil
	}
	c.fetching = true
	c.mu.Unlock()

	page, err := c.backend.FetchPage(ctx, c.filter, cursor)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching = false
	if err != nil {
		// the caller gave up; the listing itself has not failed
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.err = err
		c.logger.Warn(ctx, "page load failed", "filter", c.filter.String(), "cursor", cursor, "error", err)
		return err
	}
	c.err = nil
	c.store.AppendPage(c.fp, page)
	if c.refetching && !c.closed {
		// the running refetch was sized before this page existed
		c.startRefetchLocked()
	}
	return nil
}

func (c *Controller) Create(ctx context.Context, in models.CreateInput) CreateResult {
	return c.coord.Create(ctx, c.fp, in)
}

func (c *Controller) Update(ctx context.Context, in models.UpdateInput) (models.Event, error) {
	return c.coord.Update(ctx, c.fp, in)
}

func (c *Controller) Delete(ctx context.Context, id int64) error {
	return c.coord.Delete(ctx, c.fp, id)
}

// CancelRefetch abandons a running refetch of fp; its result is discarded.
func (c *Controller) CancelRefetch(fp models.Fingerprint) {
	if fp != c.fp {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelRefetchLocked()
}

func (c *Controller) cancelRefetchLocked() {
	if c.refetchCancel != nil {
		c.refetchCancel()
		c.refetchCancel = nil
	}
	c.refetching = false
	c.refetchGen++
}

// Invalidate refetches every cached page of fp in the background and
// replaces them in one step. A newer Invalidate or CancelRefetch
// supersedes it.
func (c *Controller) Invalidate(fp models.Fingerprint) {
	if fp != c.fp {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startRefetchLocked()
}

// startRefetchLocked supersedes any running refetch with one covering
// every cached page.
func (c *Controller) startRefetchLocked() {
	c.cancelRefetchLocked()

	n := c.store.PageCount(c.fp)
	if n == 0 {
		return
	}
	gen := c.refetchGen
	ctx, cancel := context.WithCancel(c.lifetime)
	c.refetchCancel = cancel
	c.refetching = true

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		pages, err := c.fetchPages(ctx, n)
		c.finishRefetch(ctx, gen, pages, err)
	}()
}

func (c *Controller) fetchPages(ctx context.Context, n int) ([]models.Page, error) {
	pages := make([]models.Page, 0, n)
	cursor := ""
	for range n {
		p, err := c.backend.FetchPage(ctx, c.filter, cursor)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
		if p.NextCursor == "" {
			break
		}
		cursor = p.NextCursor
	}
	return pages, nil
}

func (c *Controller) finishRefetch(ctx context.Context, gen uint64, pages []models.Page, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.refetchGen {
		return
	}
	c.refetchCancel()
	c.refetchCancel = nil
	c.refetching = false

	if err != nil {
		c.err = err
		c.logger.Warn(ctx, "refetch failed", "filter", c.filter.String(), "error", err)
		return
	}
	c.err = nil
	c.store.ReplacePages(c.fp, c.overlayPending(pages))
}

// overlayPending keeps local state for ids whose mutation has not settled:
// the cached copy of a pending update and the absence of a pending delete.
func (c *Controller) overlayPending(pages []models.Page) []models.Page {
	for i := range pages {
		events := make([]models.Event, 0, len(pages[i].Events))
		for _, e := range pages[i].Events {
			if c.pending.Has(e.ID, KindDelete) {
				continue
			}
			if c.pending.Has(e.ID, KindUpdate) {
				if cached, ok := c.store.Get(c.fp, e.ID); ok {
					e = cached
				}
			}
			events = append(events, e)
		}
		pages[i].Events = events
	}
	return pages
}

// Wait blocks until background refetches finish.
func (c *Controller) Wait() {
	c.background.Wait()
}

// Close releases the live-update subscription and stops background work.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelRefetchLocked()
	c.mu.Unlock()

	c.stopAll()
	c.background.Wait()
	if c.sub != nil {
		c.sub.Release()
	}
}
