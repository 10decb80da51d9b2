package messaging

import "github.com/herald-chat/herald/internal/domain"

const (
	RoomAuditQueue           = "herald.rooms.audit"
	NotificationIngressQueue = "herald.notifications.ingress"
	DeadLetterQueue          = "dead_letter_queue"
)

// RoomEventData carries a room lifecycle event to the audit consumer.
type RoomEventData struct {
	Log domain.RoomAuditLog `json:"log"`
}

// NotificationPushData is the payload services publish to push a
// notification through the gateway.
type NotificationPushData struct {
	Topic string         `json:"topic"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}
