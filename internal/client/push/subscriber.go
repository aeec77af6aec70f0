// Package push receives live event notifications over a websocket and
// reconnects with exponential backoff when the channel drops.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/eventfeed/internal/client/client"
	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/common"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/dmitrijs2005/eventfeed/internal/rpc"
	"github.com/gorilla/websocket"
)

// dedupWindow is how many recent notification ids are remembered for
// duplicate suppression.
const dedupWindow = 512

// Handler consumes notifications. It is never called concurrently with
// itself and sees notifications in receipt order.
type Handler = func(models.Notification)

type Subscriber struct {
	url        string
	dialer     *websocket.Dialer
	logger     logging.Logger
	token      func() string
	newBackOff func() backoff.BackOff

	mu     sync.Mutex
	seen   map[string]struct{}
	recent []string
}

type Option func(*Subscriber)

// WithToken sets the bearer token source sent on every dial.
func WithToken(f func() string) Option {
	return func(s *Subscriber) { s.token = f }
}

func WithBackOff(f func() backoff.BackOff) Option {
	return func(s *Subscriber) { s.newBackOff = f }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(s *Subscriber) { s.dialer = d }
}

func NewSubscriber(url string, logger logging.Logger, opts ...Option) *Subscriber {
	s := &Subscriber{
		url:    url,
		seen:   make(map[string]struct{}),
		dialer: websocket.DefaultDialer,
		logger: logger,
		token:  func() string { return "" },
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run delivers notifications to handle until ctx is done. A cancelled ctx
// is a clean stop and returns nil; otherwise Run returns only when the
// backoff policy gives up.
func (s *Subscriber) Run(ctx context.Context, handle Handler) error {
	b := s.newBackOff()
	for {
		connected, err := s.session(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			b.Reset()
		}
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		s.logger.Warn(ctx, "push channel disconnected", "url", s.url, "error", err, "retry_in", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (s *Subscriber) header() http.Header {
	h := http.Header{}
	if tok := s.token(); tok != "" {
		h.Set(common.AccessTokenHeaderName, common.BearerPrefix+tok)
	}
	return h
}

// session runs one connection to completion. connected reports whether
// the dial succeeded.
func (s *Subscriber) session(ctx context.Context, handle Handler) (connected bool, err error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header())
	if err != nil {
		return false, err
	}
	s.logger.Info(ctx, "push channel connected", "url", s.url)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		n, err := decode(data)
		if err != nil {
			s.logger.Warn(ctx, "dropping malformed notification", "error", err)
			continue
		}
		if !s.fresh(n.ID) {
			s.logger.Debug(ctx, "dropping duplicate notification", "id", n.ID)
			continue
		}
		handle(n)
	}
}

// fresh reports whether id was not among the last dedupWindow ids
// delivered. Arrival order is not checked: an older id that has not been
// seen is still delivered. Empty ids are always delivered.
func (s *Subscriber) fresh(id string) bool {
	if id == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.recent = append(s.recent, id)
	if len(s.recent) > dedupWindow {
		delete(s.seen, s.recent[0])
		s.recent = s.recent[1:]
	}
	return true
}

var ErrMalformed = errors.New("malformed notification")

func decode(data []byte) (models.Notification, error) {
	var w rpc.Notification
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Notification{}, err
	}
	n := models.Notification{ID: w.ID, Kind: models.NotificationKind(w.Kind), EventID: w.EventID}
	switch n.Kind {
	case models.NotificationCreated, models.NotificationUpdated:
		if w.Event == nil {
			return models.Notification{}, ErrMalformed
		}
		e := client.EventFromRPC(*w.Event)
		n.Event = &e
	case models.NotificationDeleted:
		if w.EventID == 0 {
			return models.Notification{}, ErrMalformed
		}
	default:
		return models.Notification{}, ErrMalformed
	}
	return n, nil
}
