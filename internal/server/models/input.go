package models

import (
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/common"
)

// FieldErrors maps a request field to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Err returns nil when no field failed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// ValidationError rejects a create or update payload.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CreateEventInput is a validated request for a new event.
type CreateEventInput struct {
	Title       string
	Description string
	Date        string
	Location    string
	Hobbies     []string
	Image       *Image
}

func (in CreateEventInput) Validate() error {
	fe := FieldErrors{}
	nonEmpty(fe, "title", in.Title)
	nonEmpty(fe, "description", in.Description)
	nonEmpty(fe, "location", in.Location)
	calendarDate(fe, in.Date)
	imageBody(fe, in.Image)
	return fe.Err()
}

// UpdateEventInput is a partial update; nil fields stay as stored.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Date        *string
	Location    *string
	Image       *Image
}

func (in UpdateEventInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Date == nil && in.Location == nil && in.Image == nil
}

// Validate checks the supplied fields only. An empty update is
// common.ErrorNoChanges rather than a field error.
func (in UpdateEventInput) Validate() error {
	if in.Empty() {
		return common.ErrorNoChanges
	}
	fe := FieldErrors{}
	if in.Title != nil {
		nonEmpty(fe, "title", *in.Title)
	}
	if in.Description != nil {
		nonEmpty(fe, "description", *in.Description)
	}
	if in.Location != nil {
		nonEmpty(fe, "location", *in.Location)
	}
	if in.Date != nil {
		calendarDate(fe, *in.Date)
	}
	imageBody(fe, in.Image)
	return fe.Err()
}

// Patch returns the column changes of in, without the image key.
func (in UpdateEventInput) Patch() EventPatch {
	return EventPatch{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
	}
}

func nonEmpty(fe FieldErrors, field, v string) {
	if strings.TrimSpace(v) == "" {
		fe.Add(field, "must not be empty")
	}
}

func calendarDate(fe FieldErrors, v string) {
	if _, err := time.Parse(common.DateLayout, v); err != nil {
		fe.Add("date", "Invalid date format")
	}
}

func imageBody(fe FieldErrors, img *Image) {
	if img != nil && len(img.Data) == 0 {
		fe.Add("image", "is empty")
	}
}
