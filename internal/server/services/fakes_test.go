package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/eventfeed/internal/common"
	"github.com/dmitrijs2005/eventfeed/internal/dbx"
	"github.com/dmitrijs2005/eventfeed/internal/server/models"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/hobbies"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	created   *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	out := *u
	out.ID = 1
	return &out, nil
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

// fakeEventsRepo keeps events in memory and assigns ids from 1.
type fakeEventsRepo struct {
	mu     sync.Mutex
	rows   map[int64]*models.Event
	nextID int64

	lastFilter models.EventFilter
	lastPatch  models.EventPatch

	listErr   error
	createErr error
	updateErr error
	deleteErr error
}

func newFakeEventsRepo(rows ...*models.Event) *fakeEventsRepo {
	f := &fakeEventsRepo{rows: map[int64]*models.Event{}, nextID: 1}
	for _, r := range rows {
		f.rows[r.ID] = r
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
	}
	return f
}

func (f *fakeEventsRepo) List(_ context.Context, filter models.EventFilter) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.Event{}
	for id := int64(1); id < f.nextID; id++ {
		if e, ok := f.rows[id]; ok {
			c := *e
			out = append(out, &c)
		}
	}
	start := (filter.Page - 1) * filter.Limit
	if start >= len(out) {
		return []*models.Event{}, nil
	}
	end := min(start+filter.Limit, len(out))
	return out[start:end], nil
}

func (f *fakeEventsRepo) Get(_ context.Context, id int64) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEventsRepo) Create(_ context.Context, e *models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *e
	c.ID = f.nextID
	f.nextID++
	f.rows[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeEventsRepo) Update(_ context.Context, id int64, p models.EventPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPatch = p
	if f.updateErr != nil {
		return f.updateErr
	}
	e, ok := f.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = p.Location
	}
	if p.ImageKey != nil {
		e.ImageKey = p.ImageKey
	}
	return nil
}

func (f *fakeEventsRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeHobbiesRepo struct {
	names   []string
	linked  map[int64][]string
	listErr error
	linkErr error
	events  *fakeEventsRepo
}

func (f *fakeHobbiesRepo) List(context.Context) ([]string, error) {
	return f.names, f.listErr
}

func (f *fakeHobbiesRepo) Link(_ context.Context, eventID int64, names []string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	if f.linked == nil {
		f.linked = map[int64][]string{}
	}
	f.linked[eventID] = append(f.linked[eventID], names...)
	if f.events != nil {
		f.events.mu.Lock()
		if e, ok := f.events.rows[eventID]; ok {
			e.Hobbies = append(e.Hobbies, names...)
		}
		f.events.mu.Unlock()
	}
	return nil
}

type fakeRepoManager struct {
	users   *fakeUsersRepo
	events  *fakeEventsRepo
	hobbies *fakeHobbiesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Events(dbx.DBTX) events.Repository            { return m.events }
func (m *fakeRepoManager) Hobbies(dbx.DBTX) hobbies.Repository          { return m.hobbies }

type fakeImages struct {
	put     []models.Image
	deleted []string
	putErr  error
	delErr  error
}

func (f *fakeImages) Put(_ context.Context, img models.Image) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.put = append(f.put, img)
	return "events/" + img.Filename, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.delErr
}

func (f *fakeImages) URL(key string) string { return "http://img/" + key }

type fakeNotifier struct {
	sent []models.Notification
}

func (f *fakeNotifier) Publish(_ context.Context, n models.Notification) {
	f.sent = append(f.sent, n)
}
