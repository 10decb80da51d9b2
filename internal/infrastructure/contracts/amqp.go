package contracts

// AmqpMessage is the envelope every Herald broker message travels in.
type AmqpMessage struct {
	ActorID string `json:"actorId"`
	Data    []byte `json:"data"`
}

// Routing keys - using consistent event/command patterns
const (
	EventRoomCreated      = "room.created"
	EventRoomEmptied      = "room.emptied"
	EventRoomFullRejected = "room.full_rejected"
	EventMemberJoined     = "member.joined"
	EventMemberLeft       = "member.left"

	CommandNotificationPush = "notification.push"
)
