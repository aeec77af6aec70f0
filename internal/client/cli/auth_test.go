package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/client/client"
	"github.com/dmitrijs2005/eventfeed/internal/client/feed"
	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestApp_Register(t *testing.T) {
	auth := &fakeAuth{}
	a, out := newTestApp(t, &fakeAPI{}, auth)
	stubText(t, "alice", "likes hiking")
	stubPassword(t, "secret1")

	require.NoError(t, a.Register(context.Background()))
	require.Equal(t, "alice", auth.regUser)
	require.Equal(t, "secret1", auth.regPass)
	require.Equal(t, "likes hiking", auth.regBio)
	require.Contains(t, out.String(), "Success!")
}

func TestApp_RegisterValidationError(t *testing.T) {
	auth := &fakeAuth{regErr: &models.ValidationError{Fields: models.FieldErrors{"password": {"must be at least 6 characters"}}}}
	a, out := newTestApp(t, &fakeAPI{}, auth)
	stubText(t, "alice", "")
	stubPassword(t, "123")

	require.Error(t, a.Register(context.Background()))
	require.Contains(t, out.String(), "password: must be at least 6 characters")
}

func TestApp_LoginOpensFeed(t *testing.T) {
	auth := &fakeAuth{session: metadata.Session{AccessToken: "tok", Username: "alice", UserID: 7}}
	api := &fakeAPI{events: []models.Event{ev(1, "one")}}
	a, _ := newTestApp(t, api, auth)
	stubText(t, "alice")
	stubPassword(t, "secret1")

	require.NoError(t, a.Login(context.Background()))
	require.True(t, a.isLoggedIn())
	require.Equal(t, ModeOnline, a.Mode)
	require.Equal(t, "tok", a.accessToken())
	require.NotNil(t, a.feed)
	require.Equal(t, []int64{1}, ids(a.feed.List()))
	require.Equal(t, "(alice online [all])", a.getStatus())
}

func TestApp_LoginServerUnavailable(t *testing.T) {
	auth := &fakeAuth{loginErr: client.ErrNetwork}
	a, out := newTestApp(t, &fakeAPI{}, auth)
	stubText(t, "alice")
	stubPassword(t, "secret1")

	require.ErrorIs(t, a.Login(context.Background()), client.ErrNetwork)
	require.False(t, a.isLoggedIn())
	require.Equal(t, ModeOffline, a.Mode)
	require.Nil(t, a.feed)
	require.Contains(t, out.String(), "Server unavailable")
}

func TestApp_Logout(t *testing.T) {
	auth := &fakeAuth{session: metadata.Session{AccessToken: "tok", Username: "alice", UserID: 7}}
	a, out := newTestApp(t, &fakeAPI{}, auth)
	stubText(t, "alice")
	stubPassword(t, "secret1")
	require.NoError(t, a.Login(context.Background()))

	require.NoError(t, a.Logout(context.Background()))
	require.True(t, auth.logoutCalled)
	require.False(t, a.isLoggedIn())
	require.Empty(t, a.accessToken())
	require.Nil(t, a.feed)
	require.Contains(t, out.String(), "Logged out")
}

func TestApp_OnNotification(t *testing.T) {
	api := &fakeAPI{events: []models.Event{ev(1, "one")}}
	a, out := newTestApp(t, api, &fakeAuth{})

	created := ev(5, "party")
	a.onNotification(models.Notification{Kind: models.NotificationCreated, Event: &created}, true)
	require.Empty(t, out.String(), "nothing is printed without an open feed")

	require.NoError(t, a.openFeed(context.Background(), models.Filter{}))
	a.onNotification(models.Notification{Kind: models.NotificationCreated, Event: &created}, true)
	a.onNotification(models.Notification{Kind: models.NotificationDeleted, EventID: 1}, true)
	a.onNotification(models.Notification{Kind: models.NotificationUpdated, Event: &created}, false)

	require.Contains(t, out.String(), "new event #5: party")
	require.Contains(t, out.String(), "event #1 was deleted")
	require.NotContains(t, out.String(), "was updated")
}

// streamSource emits the same created notification until stopped.
type streamSource struct {
	event models.Event
}

func (s *streamSource) Run(ctx context.Context, handle func(models.Notification)) error {
	for {
		e := s.event
		handle(models.Notification{Kind: models.NotificationCreated, Event: &e})
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Millisecond):
		}
	}
}

func TestApp_NotificationsWhileSwitchingFeeds(t *testing.T) {
	api := &fakeAPI{events: []models.Event{ev(1, "one"), ev(2, "two")}}
	a, out := newTestApp(t, api, &fakeAuth{})
	a.listener = feed.NewListener(a.store, a.pending, &streamSource{event: ev(9, "gig")}, logging.Nop(),
		feed.WithNotify(a.onNotification))

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		require.NoError(t, a.openFeed(ctx, models.Filter{}))
		require.NoError(t, a.List(ctx))
	}

	w := a.out.(*syncWriter)
	printed := func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return strings.Contains(out.String(), "new event #9: gig")
	}
	require.Eventually(t, printed, 2*time.Second, 5*time.Millisecond)

	a.closeFeed()
	require.Nil(t, a.feed)
	require.Empty(t, a.listener.Active())
}
