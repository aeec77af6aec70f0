package models

// NotificationKind names a change pushed to connected clients.
type NotificationKind string

const (
	NotificationCreated NotificationKind = "entity-created"
	NotificationUpdated NotificationKind = "entity-updated"
	NotificationDeleted NotificationKind = "entity-deleted"
)

// Notification describes one successful write. Created and updated carry
// the full Event, deleted only EventID.
type Notification struct {
	Kind    NotificationKind
	Event   *Event
	EventID int64
}
