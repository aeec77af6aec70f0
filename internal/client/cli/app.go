package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/eventfeed/internal/client/client"
	"github.com/dmitrijs2005/eventfeed/internal/client/config"
	"github.com/dmitrijs2005/eventfeed/internal/client/feed"
	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/client/push"
	"github.com/dmitrijs2005/eventfeed/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/eventfeed/internal/client/services"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService services.AuthService
	api         client.Client
	store       *feed.Store
	pending     *feed.Pending
	listener    *feed.Listener
	feed        *feed.Controller
	feedOpen    atomic.Bool
	session     metadata.Session
	token       atomic.Pointer[string]
	Mode        Mode
	reader      *bufio.Reader
	out         io.Writer
	closeDB     func() error
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewEventFeedClient(c.ServerEndpointAddr, c.PageSize, c.RequestTimeout)
	if err != nil {
		repos.Close()
		return nil, err
	}

	a := &App{
		config:      c,
		logger:      logger,
		authService: services.NewAuthService(apiClient, repos.DB),
		api:         apiClient,
		store:       feed.NewStore(),
		pending:     feed.NewPending(),
		reader:      bufio.NewReader(os.Stdin),
		out:         &syncWriter{w: os.Stdout},
		closeDB:     repos.Close,
	}

	sub := push.NewSubscriber(c.PushURL, logger.With("component", "push"),
		push.WithToken(a.accessToken))
	a.listener = feed.NewListener(a.store, a.pending, sub, logger.With("component", "listener"),
		feed.WithNotify(a.onNotification))

	return a, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		a.closeFeed()
		_ = a.authService.Close(ctx)
		if a.closeDB != nil {
			_ = a.closeDB()
		}
	}()
	a.Root(ctx)
}

// setSession records the session and publishes its token to the push
// subscriber goroutine.
func (a *App) setSession(s metadata.Session) {
	a.session = s
	tok := s.AccessToken
	a.token.Store(&tok)
}

func (a *App) accessToken() string {
	if p := a.token.Load(); p != nil {
		return *p
	}
	return ""
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

// openFeed replaces the active controller with one for filter and loads
// its first page.
func (a *App) openFeed(ctx context.Context, filter models.Filter) error {
	a.closeFeed()
	opts := []feed.ControllerOption{
		feed.WithStore(a.store),
		feed.WithPending(a.pending),
		feed.WithLogger(a.logger.With("component", "feed")),
	}
	if a.listener != nil {
		opts = append(opts, feed.WithListener(a.listener))
	}
	a.feed = feed.NewController(filter, a.api, opts...)
	a.feedOpen.Store(true)
	return a.feed.LoadNextPage(ctx)
}

func (a *App) closeFeed() {
	if a.feed == nil {
		return
	}
	a.feedOpen.Store(false)
	a.feed.Close()
	a.store.Drop(a.feed.Fingerprint())
	a.feed = nil
}

// onNotification runs on the listener goroutine. It must not touch a.feed,
// which belongs to the REPL goroutine.
func (a *App) onNotification(n models.Notification, applied bool) {
	if !applied || !a.feedOpen.Load() {
		return
	}
	switch n.Kind {
	case models.NotificationCreated:
		fmt.Fprintf(a.out, "\n* new event #%d: %s\n", n.TargetID(), n.Event.Title)
	case models.NotificationUpdated:
		fmt.Fprintf(a.out, "\n* event #%d was updated\n", n.TargetID())
	case models.NotificationDeleted:
		fmt.Fprintf(a.out, "\n* event #%d was deleted\n", n.TargetID())
	}
}

// syncWriter serializes writes from the REPL and the listener goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
