// Package models defines client-side data models used by the eventfeed CLI
// and the feed cache.
package models

import "slices"

// Event is a social event as seen by the client.
type Event struct {
	// ID is server-assigned and immutable.
	ID          int64
	Title       string
	Description *string
	// Date is a calendar date in common.DateLayout.
	Date     string
	Location *string
	// Image is an opaque filename or URL fragment, possibly with a
	// cache-busting query suffix.
	Image     *string
	CreatorID int64
	Official  bool
	// Hobbies is never nil once normalized.
	Hobbies []string
}

// Clone returns a deep copy of e.
func (e Event) Clone() Event {
	out := e
	out.Description = cloneString(e.Description)
	out.Location = cloneString(e.Location)
	out.Image = cloneString(e.Image)
	out.Hobbies = slices.Clone(e.Hobbies)
	if out.Hobbies == nil {
		out.Hobbies = []string{}
	}
	return out
}

// Normalize returns e with a non-nil hobby slice.
func (e Event) Normalize() Event {
	if e.Hobbies == nil {
		e.Hobbies = []string{}
	}
	return e
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr is a helper for building optional fields.
func StringPtr(s string) *string {
	return &s
}

// Deref returns *s or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Page is one slice of a paginated listing. NextCursor is empty when the
// listing is exhausted.
type Page struct {
	Events     []Event
	NextCursor string
}

// Clone deep-copies the page.
func (p Page) Clone() Page {
	out := Page{NextCursor: p.NextCursor, Events: make([]Event, len(p.Events))}
	for i, e := range p.Events {
		out.Events[i] = e.Clone()
	}
	return out
}
