package models

// NotificationKind names a push-channel event.
type NotificationKind string

const (
	NotificationCreated NotificationKind = "entity-created"
	NotificationUpdated NotificationKind = "entity-updated"
	NotificationDeleted NotificationKind = "entity-deleted"
)

// Notification describes a change made elsewhere. Created and updated
// carry Event; deleted carries only EventID.
type Notification struct {
	ID      string
	Kind    NotificationKind
	Event   *Event
	EventID int64
}

// TargetID is the id of the event the notification refers to.
func (n Notification) TargetID() int64 {
	if n.Event != nil {
		return n.Event.ID
	}
	return n.EventID
}
