package models

import (
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/rpc"
)

// Event is a row of the events table with its hobby names attached.
// ImageKey is the object-storage key; ImageURL is filled by the service
// before the event leaves the server.
type Event struct {
	ID          int64
	Title       string
	Description *string
	Date        string
	Location    *string
	ImageKey    *string
	ImageURL    *string
	CreatorID   int64
	Official    bool
	Hobbies     []string
	CreatedAt   time.Time
}

// ToRPC converts e to its wire form. Hobbies are never nil.
func (e *Event) ToRPC() rpc.Event {
	out := rpc.Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Image:       e.ImageURL,
		CreatorID:   e.CreatorID,
		Hobbies:     append([]string{}, e.Hobbies...),
	}
	if e.Official {
		out.Official = 1
	}
	return out
}

// EventFilter selects one page of the listing. Page is 1-based.
type EventFilter struct {
	Location string
	Hobby    string
	Official *bool
	Page     int
	Limit    int
}

// EventPatch holds the columns an update changes; nil means unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Location    *string
	ImageKey    *string
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Location == nil && p.ImageKey == nil
}

// Image is an uploaded picture awaiting storage.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}
