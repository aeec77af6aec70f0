package feed

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
)

// Source delivers notifications to handle, one at a time, until ctx is
// done. push.Subscriber is the production Source.
type Source interface {
	Run(ctx context.Context, handle func(models.Notification)) error
}

// Listener merges push notifications into the Store for every subscribed
// fingerprint. The Source runs while at least one subscription is held
// and there is never more than one Source run active.
type Listener struct {
	store   *Store
	pending *Pending
	source  Source
	logger  logging.Logger
	notify  func(models.Notification, bool)

	// lifecycle serializes source start and stop
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	mu   sync.Mutex
	subs map[models.Fingerprint]int
}

type ListenerOption func(*Listener)

// WithNotify registers a callback run after each notification with
// whether it changed the cache.
func WithNotify(f func(n models.Notification, applied bool)) ListenerOption {
	return func(l *Listener) { l.notify = f }
}

func NewListener(store *Store, pending *Pending, source Source, logger logging.Logger, opts ...ListenerOption) *Listener {
	l := &Listener{
		store:   store,
		pending: pending,
		source:  source,
		logger:  logger,
		subs:    make(map[models.Fingerprint]int),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Subscription is a scoped registration of one fingerprint. Release is
// idempotent.
type Subscription struct {
	l    *Listener
	fp   models.Fingerprint
	once sync.Once
}

func (s *Subscription) Fingerprint() models.Fingerprint { return s.fp }

func (s *Subscription) Release() {
	s.once.Do(func() { s.l.release(s.fp) })
}

// Subscribe starts routing notifications into fp's cache.
func (l *Listener) Subscribe(fp models.Fingerprint) *Subscription {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	l.mu.Lock()
	l.subs[fp]++
	first := len(l.subs) == 1 && l.subs[fp] == 1
	l.mu.Unlock()

	if first {
		l.start()
	}
	return &Subscription{l: l, fp: fp}
}

func (l *Listener) release(fp models.Fingerprint) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	l.mu.Lock()
	if l.subs[fp] <= 1 {
		delete(l.subs, fp)
	} else {
		l.subs[fp]--
	}
	last := len(l.subs) == 0
	l.mu.Unlock()

	if last {
		l.stop()
	}
}

func (l *Listener) start() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.cancel, l.done = cancel, done

	go func() {
		defer close(done)
		l.logger.Debug(ctx, "live updates started")
		if err := l.source.Run(ctx, l.Apply); err != nil {
			l.logger.Error(ctx, "live updates stopped", "error", err)
		}
	}()
}

func (l *Listener) stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel, l.done = nil, nil
}

// Active reports the subscribed fingerprints.
func (l *Listener) Active() []models.Fingerprint {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Fingerprint, 0, len(l.subs))
	for fp := range l.subs {
		out = append(out, fp)
	}
	return out
}

// Apply merges one notification. Updates for an id with a pending local
// update are dropped; creates and deletes always apply.
func (l *Listener) Apply(n models.Notification) {
	applied := false
	switch n.Kind {
	case models.NotificationCreated:
		if n.Event == nil {
			break
		}
		for _, fp := range l.Active() {
			applied = l.store.Insert(fp, *n.Event) || applied
		}
	case models.NotificationDeleted:
		for _, fp := range l.Active() {
			applied = l.store.Remove(fp, n.TargetID()) || applied
		}
	case models.NotificationUpdated:
		if n.Event == nil {
			break
		}
		if l.pending.Has(n.Event.ID, KindUpdate) {
			l.logger.Debug(context.Background(), "update notification suppressed, local update pending", "id", n.Event.ID)
			break
		}
		for _, fp := range l.Active() {
			applied = l.store.Replace(fp, *n.Event) || applied
		}
	}
	if l.notify != nil {
		l.notify(n, applied)
	}
}
