package models

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/common"
)

var ErrEmptyUpdate = errors.New("nothing to update")

// FieldErrors maps a field name to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Err returns nil when there are no field errors.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// ValidationError carries per-field messages, either from local checks
// or from the server.
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

// ImageUpload is a picture attached to a create or update.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateInput is the payload for a new event.
type CreateInput struct {
	Title       string
	Description string
	Date        string
	Location    string
	Hobbies     []string
	Image       *ImageUpload
}

func (in CreateInput) Validate() error {
	fe := FieldErrors{}
	requireText(fe, "title", in.Title)
	requireText(fe, "description", in.Description)
	requireText(fe, "location", in.Location)
	checkDate(fe, in.Date)
	for _, h := range in.Hobbies {
		if strings.TrimSpace(h) == "" {
			fe.add("hobbies", "must not contain empty tags")
			break
		}
	}
	checkImage(fe, in.Image)
	return fe.Err()
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	ID          int64
	Title       *string
	Description *string
	Date        *string
	Location    *string
	Image       *ImageUpload
}

// Empty reports whether no field is set.
func (in UpdateInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Date == nil && in.Location == nil && in.Image == nil
}

func (in UpdateInput) Validate() error {
	fe := FieldErrors{}
	if in.ID <= 0 {
		fe.add("id", "must be positive")
	}
	if in.Empty() {
		fe.add("body", ErrEmptyUpdate.Error())
	}
	if in.Title != nil {
		requireText(fe, "title", *in.Title)
	}
	if in.Description != nil {
		requireText(fe, "description", *in.Description)
	}
	if in.Location != nil {
		requireText(fe, "location", *in.Location)
	}
	if in.Date != nil {
		checkDate(fe, *in.Date)
	}
	checkImage(fe, in.Image)
	return fe.Err()
}

func requireText(fe FieldErrors, field, v string) {
	if strings.TrimSpace(v) == "" {
		fe.add(field, "is required")
	}
}

func checkDate(fe FieldErrors, v string) {
	if _, err := time.Parse(common.DateLayout, v); err != nil {
		fe.add("date", "must be YYYY-MM-DD")
	}
}

func checkImage(fe FieldErrors, img *ImageUpload) {
	if img == nil {
		return
	}
	if img.Filename == "" {
		fe.add("image", "filename is required")
	}
	if len(img.Data) == 0 {
		fe.add("image", "is empty")
	}
}
