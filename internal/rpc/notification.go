package rpc

// Notification kinds pushed over the websocket channel.
const (
	KindCreated = "entity-created"
	KindUpdated = "entity-updated"
	KindDeleted = "entity-deleted"
)

// Notification is one push-channel frame. Created and updated frames carry
// the full Event, deleted frames only EventID.
type Notification struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Event   *Event `json:"event,omitempty"`
	EventID int64  `json:"event_id,omitempty"`
}
