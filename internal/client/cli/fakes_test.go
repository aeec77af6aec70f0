package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/eventfeed/internal/client/client"
	"github.com/dmitrijs2005/eventfeed/internal/client/feed"
	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/eventfeed/internal/logging"
)

type fakeAuth struct {
	loginUser string
	loginPass string
	session   metadata.Session
	loginErr  error

	regUser string
	regPass string
	regBio  string
	regErr  error

	logoutCalled bool
	logoutErr    error
	pingErr      error
}

func (f *fakeAuth) Login(_ context.Context, u, p string) (metadata.Session, error) {
	f.loginUser, f.loginPass = u, p
	return f.session, f.loginErr
}
func (f *fakeAuth) Restore(context.Context) (metadata.Session, error) { return f.session, nil }
func (f *fakeAuth) Register(_ context.Context, u, p, bio string) error {
	f.regUser, f.regPass, f.regBio = u, p, bio
	return f.regErr
}
func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}
func (f *fakeAuth) Ping(context.Context) error  { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error { return nil }

// fakeAPI serves a fixed list of events in pages of two.
type fakeAPI struct {
	client.Client

	mu        sync.Mutex
	events    []models.Event
	fetchErr  error
	createErr error
	updateErr error
	deleteErr error
	created   []models.CreateInput
	updated   []models.UpdateInput
	deleted   []int64
	hobbies   []string
}

func (f *fakeAPI) FetchPage(_ context.Context, filter models.Filter, cursor string) (models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return models.Page{}, f.fetchErr
	}
	start := 0
	if cursor != "" {
		start = int(cursor[0] - '0')
	}
	end := min(start+2, len(f.events))
	p := models.Page{Events: make([]models.Event, 0, end-start)}
	for _, e := range f.events[start:end] {
		p.Events = append(p.Events, e.Clone())
	}
	if end < len(f.events) {
		p.NextCursor = string(rune('0' + end))
	}
	return p, nil
}

func (f *fakeAPI) CreateEvent(_ context.Context, in models.CreateInput) (models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.createErr != nil {
		return models.Event{}, f.createErr
	}
	e := models.Event{ID: 100, Title: in.Title, Date: in.Date, Location: models.StringPtr(in.Location), Hobbies: in.Hobbies}
	f.events = append([]models.Event{e}, f.events...)
	return e, nil
}

func (f *fakeAPI) UpdateEvent(_ context.Context, in models.UpdateInput) (models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, in)
	if f.updateErr != nil {
		return models.Event{}, f.updateErr
	}
	for i, e := range f.events {
		if e.ID == in.ID {
			if in.Title != nil {
				e.Title = *in.Title
			}
			f.events[i] = e
			return e.Clone(), nil
		}
	}
	return models.Event{}, client.ErrNotFound
}

func (f *fakeAPI) DeleteEvent(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, e := range f.events {
		if e.ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func (f *fakeAPI) ListHobbies(context.Context) ([]string, error) { return f.hobbies, nil }

func ev(id int64, title string) models.Event {
	return models.Event{ID: id, Title: title, Date: "2025-06-01", Location: models.StringPtr("Riga"), Hobbies: []string{}}
}

func newTestApp(t *testing.T, api *fakeAPI, auth *fakeAuth) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	a := &App{
		logger:      logging.Nop(),
		authService: auth,
		api:         api,
		store:       feed.NewStore(),
		pending:     feed.NewPending(),
		reader:      bufio.NewReader(strings.NewReader("")),
		out:         &syncWriter{w: out},
	}
	t.Cleanup(a.closeFeed)
	return a, out
}

// stubText feeds answers to the getSimpleText seam in order.
func stubText(t *testing.T, answers ...string) {
	t.Helper()
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
