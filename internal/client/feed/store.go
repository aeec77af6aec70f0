package feed

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/eventfeed/internal/client/models"
)

// Store is the paginated cache. Every write builds a new page slice and
// replaces the old one under the lock, so readers never see a partial
// update. Returned values are deep copies.
type Store struct {
	mu    sync.RWMutex
	pages map[models.Fingerprint][]models.Page
}

func NewStore() *Store {
	return &Store{pages: make(map[models.Fingerprint][]models.Page)}
}

// Snapshot is an immutable copy of one fingerprint's pages.
type Snapshot struct {
	fp      models.Fingerprint
	pages   []models.Page
	present bool
}

func (s Snapshot) Fingerprint() models.Fingerprint { return s.fp }

func clonePages(pages []models.Page) []models.Page {
	if pages == nil {
		return nil
	}
	out := make([]models.Page, len(pages))
	for i, p := range pages {
		out[i] = p.Clone()
	}
	return out
}

func idsOf(pages []models.Page) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, p := range pages {
		for _, e := range p.Events {
			ids[e.ID] = struct{}{}
		}
	}
	return ids
}

// AppendPage adds page after the last cached page. Events already cached
// under fp are skipped, which happens when an insert shifted the server's
// page boundaries.
func (s *Store) AppendPage(fp models.Fingerprint, page models.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.pages[fp]
	seen := idsOf(old)
	p := models.Page{NextCursor: page.NextCursor, Events: make([]models.Event, 0, len(page.Events))}
	for _, e := range page.Events {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		p.Events = append(p.Events, e.Clone())
	}

	next := make([]models.Page, len(old), len(old)+1)
	copy(next, old)
	s.pages[fp] = append(next, p)
}

// ReplacePages swaps the whole page sequence, e.g. after a refetch.
func (s *Store) ReplacePages(fp models.Fingerprint, pages []models.Page) {
	fresh := make([]models.Page, 0, len(pages))
	seen := make(map[int64]struct{})
	for _, p := range pages {
		np := models.Page{NextCursor: p.NextCursor, Events: make([]models.Event, 0, len(p.Events))}
		for _, e := range p.Events {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			np.Events = append(np.Events, e.Clone())
		}
		fresh = append(fresh, np)
	}

	s.mu.Lock()
	s.pages[fp] = fresh
	s.mu.Unlock()
}

// Rewrite applies transform to each page independently, keeping page
// boundaries and cursors. transform receives a copy it may modify.
func (s *Store) Rewrite(fp models.Fingerprint, transform func([]models.Event) []models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewriteLocked(fp, func(_ int, events []models.Event) []models.Event {
		return transform(events)
	})
}

func (s *Store) rewriteLocked(fp models.Fingerprint, transform func(int, []models.Event) []models.Event) {
	old, ok := s.pages[fp]
	if !ok {
		return
	}
	next := make([]models.Page, len(old))
	for i, p := range old {
		events := transform(i, p.Clone().Events)
		if events == nil {
			events = []models.Event{}
		}
		next[i] = models.Page{Events: events, NextCursor: p.NextCursor}
	}
	s.pages[fp] = next
}

// Insert puts e at the front of page 0, dropping any other copy of the same
// id. It reports false and does nothing when no page is cached yet; the
// first fetch will include e.
func (s *Store) Insert(fp models.Fingerprint, e models.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pages[fp]) == 0 {
		return false
	}
	e = e.Clone()
	s.rewriteLocked(fp, func(i int, events []models.Event) []models.Event {
		events = slices.DeleteFunc(events, func(x models.Event) bool { return x.ID == e.ID })
		if i == 0 {
			events = append([]models.Event{e}, events...)
		}
		return events
	})
	return true
}

// Remove deletes id from whichever page holds it.
func (s *Store) Remove(fp models.Fingerprint, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	s.rewriteLocked(fp, func(_ int, events []models.Event) []models.Event {
		return slices.DeleteFunc(events, func(x models.Event) bool {
			if x.ID == id {
				found = true
				return true
			}
			return false
		})
	})
	return found
}

// Replace swaps the cached copy of e.ID for e, in place.
func (s *Store) Replace(fp models.Fingerprint, e models.Event) bool {
	e = e.Clone()
	return s.Update(fp, e.ID, func(models.Event) models.Event { return e })
}

// Update rewrites the event with id through fn, in place.
func (s *Store) Update(fp models.Fingerprint, id int64, fn func(models.Event) models.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	s.rewriteLocked(fp, func(_ int, events []models.Event) []models.Event {
		for i := range events {
			if events[i].ID == id {
				events[i] = fn(events[i]).Normalize()
				found = true
			}
		}
		return events
	})
	return found
}

// Get returns the cached event with id.
func (s *Store) Get(fp models.Fingerprint, id int64) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pages[fp] {
		for _, e := range p.Events {
			if e.ID == id {
				return e.Clone(), true
			}
		}
	}
	return models.Event{}, false
}

func (s *Store) Snapshot(fp models.Fingerprint) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pages, ok := s.pages[fp]
	return Snapshot{fp: fp, pages: clonePages(pages), present: ok}
}

// Restore replaces the snapshot's fingerprint state wholesale.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !snap.present {
		delete(s.pages, snap.fp)
		return
	}
	s.pages[snap.fp] = clonePages(snap.pages)
}

// Flatten is the visible list for fp.
func (s *Store) Flatten(fp models.Fingerprint) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Event{}
	for _, p := range s.pages[fp] {
		for _, e := range p.Events {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (s *Store) Pages(fp models.Fingerprint) []models.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePages(s.pages[fp])
}

func (s *Store) PageCount(fp models.Fingerprint) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages[fp])
}

// LastCursor returns the next-page cursor of the last page; ok is false
// when nothing is cached.
func (s *Store) LastCursor(fp models.Fingerprint) (cursor string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pages := s.pages[fp]
	if len(pages) == 0 {
		return "", false
	}
	return pages[len(pages)-1].NextCursor, true
}

// Drop forgets fp entirely.
func (s *Store) Drop(fp models.Fingerprint) {
	s.mu.Lock()
	delete(s.pages, fp)
	s.mu.Unlock()
}
