package feed

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serverPages is a tiny paginated "server": cursor is the page number.
type serverPages struct {
	mu     sync.Mutex
	events []models.Event
	limit  int
}

func (s *serverPages) fetch(_ context.Context, _ models.Filter, cursor string) (models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 1
	if cursor != "" {
		n, _ = strconv.Atoi(cursor)
	}
	from := min((n-1)*s.limit, len(s.events))
	to := min(from+s.limit, len(s.events))
	p := models.Page{Events: append([]models.Event{}, s.events[from:to]...)}
	if to-from == s.limit {
		p.NextCursor = strconv.Itoa(n + 1)
	}
	return p, nil
}

func (s *serverPages) set(events ...models.Event) {
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
}

var riga = models.Filter{Location: "Riga"}

func TestController_LoadNextPageUntilExhausted(t *testing.T) {
	calls := 0
	b := &fakeBackend{fetch: func(_ context.Context, _ models.Filter, cursor string) (models.Page, error) {
		calls++
		if cursor == "" {
			return page("p2", ev(5, "five")), nil
		}
		return page("", ev(6, "six")), nil
	}}
	c := NewController(riga, b)
	defer c.Close()

	assert.False(t, c.HasNextPage())
	require.NoError(t, c.LoadNextPage(context.Background()))
	assert.True(t, c.HasNextPage())
	assert.Equal(t, []int64{5}, ids(c.List()))

	require.NoError(t, c.LoadNextPage(context.Background()))
	assert.False(t, c.HasNextPage())
	assert.Equal(t, []int64{5, 6}, ids(c.List()))

	require.NoError(t, c.LoadNextPage(context.Background()))
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"", "p2"}, b.cursors())
}

func TestController_RapidLoadNextPageAppendsOnce(t *testing.T) {
	g := newGate()
	b := &fakeBackend{fetch: func(ctx context.Context, _ models.Filter, cursor string) (models.Page, error) {
		if cursor == "" {
			return page("2", ev(1, "a")), nil
		}
		if err := g.wait(ctx); err != nil {
			return models.Page{}, err
		}
		return page("3", ev(2, "b")), nil
	}}
	c := NewController(riga, b)
	defer c.Close()
	require.NoError(t, c.LoadNextPage(context.Background()))

	done := make(chan error, 1)
	go func() { done <- c.LoadNextPage(context.Background()) }()
	<-g.started
	assert.True(t, c.IsFetchingNextPage())
	assert.False(t, c.IsLoading())

	require.NoError(t, c.LoadNextPage(context.Background()))
	close(g.release)
	require.NoError(t, <-done)

	assert.Equal(t, []int64{1, 2}, ids(c.List()))
	assert.Len(t, b.cursors(), 2)
}

func TestController_IsLoadingAndErrors(t *testing.T) {
	g := newGate()
	fail := true
	b := &fakeBackend{fetch: func(ctx context.Context, _ models.Filter, _ string) (models.Page, error) {
		if err := g.wait(ctx); err != nil {
			return models.Page{}, err
		}
		if fail {
			return models.Page{}, errServer
		}
		return page("", ev(1, "a")), nil
	}}
	c := NewController(riga, b)
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.LoadNextPage(context.Background()) }()
	<-g.started
	assert.True(t, c.IsLoading())
	g.release <- struct{}{}
	require.ErrorIs(t, <-done, errServer)
	assert.True(t, c.IsError())
	assert.False(t, c.IsLoading())
	assert.False(t, c.HasNextPage())

	fail = false
	go func() { done <- c.LoadNextPage(context.Background()) }()
	<-g.started
	g.release <- struct{}{}
	require.NoError(t, <-done)
	assert.False(t, c.IsError())
	assert.NoError(t, c.Err())
}

func TestController_UpdateScenario(t *testing.T) {
	srv := &serverPages{limit: 10}
	srv.set(ev(1, "Old"))
	g := newGate()
	b := &fakeBackend{
		fetch: srv.fetch,
		update: func(ctx context.Context, in models.UpdateInput) (models.Event, error) {
			if err := g.wait(ctx); err != nil {
				return models.Event{}, err
			}
			srv.set(ev(1, "Server"))
			return ev(1, "Server"), nil
		},
	}
	c := NewController(riga, b)
	defer c.Close()
	require.NoError(t, c.LoadNextPage(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := c.Update(context.Background(), models.UpdateInput{ID: 1, Title: models.StringPtr("New")})
		done <- err
	}()
	<-g.started
	assert.Equal(t, []int64{1}, c.PendingIDs())
	assert.True(t, c.IsPending(1))
	assert.Equal(t, "New", c.List()[0].Title)

	close(g.release)
	require.NoError(t, <-done)
	c.Wait()

	assert.Equal(t, "Server", c.List()[0].Title)
	assert.Empty(t, c.PendingIDs())
	assert.False(t, c.IsPending(1))
}

func TestController_UpdateFailureScenario(t *testing.T) {
	srv := &serverPages{limit: 10}
	srv.set(ev(1, "Old"))
	b := &fakeBackend{
		fetch:  srv.fetch,
		update: func(context.Context, models.UpdateInput) (models.Event, error) { return models.Event{}, errServer },
	}
	c := NewController(riga, b)
	defer c.Close()
	require.NoError(t, c.LoadNextPage(context.Background()))

	_, err := c.Update(context.Background(), models.UpdateInput{ID: 1, Title: models.StringPtr("New")})
	require.ErrorIs(t, err, errServer)
	c.Wait()

	assert.Equal(t, "Old", c.List()[0].Title)
	assert.Empty(t, c.PendingIDs())
}

func TestController_InvalidateRefetchesAllCachedPages(t *testing.T) {
	srv := &serverPages{limit: 2}
	srv.set(ev(1, "a"), ev(2, "b"), ev(3, "c"), ev(4, "d"), ev(5, "e"))
	b := &fakeBackend{fetch: srv.fetch}
	c := NewController(riga, b)
	defer c.Close()
	require.NoError(t, c.LoadNextPage(context.Background()))
	require.NoError(t, c.LoadNextPage(context.Background()))

	srv.set(ev(9, "z"), ev(1, "a"), ev(2, "b"), ev(3, "c"), ev(4, "d"), ev(5, "e"))
	c.Invalidate(c.Fingerprint())
	c.Wait()

	assert.Equal(t, []int64{9, 1, 2, 3}, ids(c.List()))
	assert.True(t, c.HasNextPage())
	assert.Equal(t, []string{"", "2", "", "2"}, b.cursors())

	// other fingerprints are ignored
	c.Invalidate("location=Tallinn")
	c.Wait()
	assert.Len(t, b.cursors(), 4)
}

func TestController_PageLoadedDuringRefetchIsKept(t *testing.T) {
	srv := &serverPages{limit: 2}
	srv.set(ev(1, "a"), ev(2, "b"), ev(3, "c"), ev(4, "d"), ev(5, "e"))
	load, refetch := newGate(), newGate()
	var mu sync.Mutex
	calls := map[string]int{}
	b := &fakeBackend{fetch: func(ctx context.Context, f models.Filter, cursor string) (models.Page, error) {
		mu.Lock()
		calls[cursor]++
		n := calls[cursor]
		mu.Unlock()
		switch {
		case cursor == "2" && n == 1:
			if err := load.wait(ctx); err != nil {
				return models.Page{}, err
			}
		case cursor == "" && n > 1:
			if err := refetch.wait(ctx); err != nil {
				return models.Page{}, err
			}
		}
		return srv.fetch(ctx, f, cursor)
	}}
	c := NewController(riga, b)
	defer c.Close()
	require.NoError(t, c.LoadNextPage(context.Background()))

	done := make(chan error, 1)
	go func() { done <- c.LoadNextPage(context.Background()) }()
	<-load.started

	c.Invalidate(c.Fingerprint())
	<-refetch.started

	load.release <- struct{}{}
	require.NoError(t, <-done)
	close(refetch.release)
	c.Wait()

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(c.List()))
	assert.True(t, c.HasNextPage())
	assert.NoError(t, c.Err())
}

func TestController_CancelledLoadIsNotAnError(t *testing.T) {
	g := newGate()
	b := &fakeBackend{fetch: func(ctx context.Context, _ models.Filter, _ string) (models.Page, error) {
		if err := g.wait(ctx); err != nil {
			// the remote client reports cancellation as a wrapped network error
			return models.Page{}, fmt.Errorf("%w: %w", errServer, err)
		}
		return page("", ev(1, "a")), nil
	}}
	c := NewController(riga, b)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.LoadNextPage(ctx) }()
	<-g.started
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.IsError())
	assert.False(t, c.IsLoading())

	go func() { done <- c.LoadNextPage(context.Background()) }()
	<-g.started
	g.release <- struct{}{}
	require.NoError(t, <-done)
	assert.Equal(t, []int64{1}, ids(c.List()))
}

func TestController_MutationCancelsRefetch(t *testing.T) {
	srv := &serverPages{limit: 10}
	srv.set(ev(1, "Old"), ev(2, "b"))
	g := newGate()
	refetching := false
	var mu sync.Mutex
	b := &fakeBackend{
		fetch: func(ctx context.Context, f models.Filter, cursor string) (models.Page, error) {
			mu.Lock()
			block := refetching
			mu.Unlock()
			if block {
				if err := g.wait(ctx); err != nil {
					return models.Page{}, err
				}
			}
			return srv.fetch(ctx, f, cursor)
		},
		del: func(context.Context, int64) error { return nil },
	}
	c := NewController(riga, b)
	defer c.Close()
	require.NoError(t, c.LoadNextPage(context.Background()))

	mu.Lock()
	refetching = true
	mu.Unlock()
	c.Invalidate(c.Fingerprint())
	<-g.started

	// a refetch blocks page loads
	require.NoError(t, c.LoadNextPage(context.Background()))

	mu.Lock()
	refetching = false
	mu.Unlock()
	srv.set(ev(1, "Old"))
	require.NoError(t, c.Delete(context.Background(), 2))
	c.Wait()

	assert.Equal(t, []int64{1}, ids(c.List()))
}

func TestController_RefetchKeepsPendingLocalState(t *testing.T) {
	srv := &serverPages{limit: 10}
	srv.set(ev(1, "Old"), ev(2, "b"))
	g := newGate()
	b := &fakeBackend{
		fetch: srv.fetch,
		update: func(ctx context.Context, in models.UpdateInput) (models.Event, error) {
			if err := g.wait(ctx); err != nil {
				return models.Event{}, err
			}
			return ev(1, "Server"), nil
		},
		del: func(context.Context, int64) error { return nil },
	}
	c := NewController(riga, b)
	defer c.Close()
	require.NoError(t, c.LoadNextPage(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := c.Update(context.Background(), models.UpdateInput{ID: 1, Title: models.StringPtr("New")})
		done <- err
	}()
	<-g.started

	// another mutation settles and triggers a refetch with stale data
	require.NoError(t, c.Delete(context.Background(), 2))
	c.Wait()
	assert.Equal(t, "New", c.List()[0].Title)

	close(g.release)
	require.NoError(t, <-done)
	c.Wait()
}

func TestController_CreateAndDelete(t *testing.T) {
	srv := &serverPages{limit: 2}
	srv.set(ev(1, "a"), ev(2, "b"), ev(3, "c"))
	b := &fakeBackend{
		fetch: srv.fetch,
		create: func(_ context.Context, in models.CreateInput) (models.Event, error) {
			return ev(10, in.Title), nil
		},
		del: func(context.Context, int64) error { return errServer },
	}
	c := NewController(riga, b)
	defer c.Close()
	require.NoError(t, c.LoadNextPage(context.Background()))
	require.NoError(t, c.LoadNextPage(context.Background()))

	res := c.Create(context.Background(), models.CreateInput{Title: "new", Description: "d", Date: "2025-03-03", Location: "Riga"})
	require.True(t, res.OK())
	assert.Equal(t, int64(10), c.List()[0].ID)
	assert.False(t, c.IsCreating())

	require.ErrorIs(t, c.Delete(context.Background(), 3), errServer)
	c.Wait()
	assertUnique(t, c.List())
}

func TestController_CloseReleasesSubscription(t *testing.T) {
	store, pending := NewStore(), NewPending()
	src := newFakeSource()
	l := NewListener(store, pending, src, logging.Nop())
	srv := &serverPages{limit: 10}
	srv.set(ev(1, "a"))
	b := &fakeBackend{fetch: srv.fetch}

	c := NewController(riga, b, WithStore(store), WithPending(pending), WithListener(l), WithLogger(logging.Nop()))
	require.NoError(t, c.LoadNextPage(context.Background()))
	assert.Equal(t, []models.Fingerprint{riga.Fingerprint()}, l.Active())

	e := ev(2, "pushed")
	src.in <- models.Notification{Kind: models.NotificationCreated, Event: &e}
	require.Eventually(t, func() bool { return len(c.List()) == 2 }, time.Second, time.Millisecond)

	c.Close()
	c.Close()
	assert.Empty(t, l.Active())
	_, active, _ := src.stats()
	assert.Equal(t, 0, active)

	require.NoError(t, c.LoadNextPage(context.Background()))
	c.Invalidate(c.Fingerprint())
	c.Wait()
}
