package ws

import (
	"encoding/json"
	"time"

	"github.com/herald-chat/herald/internal/domain"
)

// Frame is one inbound client event. AckID is zero when the client does
// not want a reply.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	AckID uint64          `json:"ackId,omitempty"`
}

// OutFrame is anything the server pushes: broadcasts, relays, acks.
type OutFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	AckID uint64 `json:"ackId,omitempty"`
}

// Sender is the transport half of a connection: deliver one frame, or
// report that the peer can no longer accept writes.
type Sender interface {
	Send(frame *OutFrame) bool
	Close()
}

// Payload structs
type UserJoinedPayload struct {
	RoomID       string `json:"roomId"`
	UserID       string `json:"userId"`
	Participants int    `json:"participants"`
	Timestamp    string `json:"timestamp"`
}

type UserLeftPayload struct {
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
}

type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type StatusChangePayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type PresencePayload struct {
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
}

type NotificationPayload struct {
	Notification *domain.Notification `json:"notification"`
	Unread       int                  `json:"unread"`
}

type ErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func NewUserJoined(roomID, userID string, participants int) *OutFrame {
	return &OutFrame{
		Event: ChatUserJoined,
		Data: UserJoinedPayload{
			RoomID:       roomID,
			UserID:       userID,
			Participants: participants,
			Timestamp:    time.Now().Format(time.RFC3339),
		},
	}
}

func NewUserLeft(roomID, userID string) *OutFrame {
	return &OutFrame{
		Event: ChatUserLeft,
		Data: UserLeftPayload{
			RoomID:    roomID,
			UserID:    userID,
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}
}

func NewChatMessage(msg *domain.Message) *OutFrame {
	return &OutFrame{
		Event: ChatMessage,
		Data:  msg,
	}
}

func NewTyping(roomID, userID string, isTyping bool) *OutFrame {
	return &OutFrame{
		Event: ChatTyping,
		Data: TypingPayload{
			RoomID:   roomID,
			UserID:   userID,
			IsTyping: isTyping,
		},
	}
}

func NewStatusChange(userID string, status domain.Status) *OutFrame {
	return &OutFrame{
		Event: UserStatusChange,
		Data: StatusChangePayload{
			UserID: userID,
			Status: string(status),
		},
	}
}

func NewUserOnline(userID string) *OutFrame {
	return &OutFrame{
		Event: UserOnline,
		Data: PresencePayload{
			UserID:    userID,
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}
}

func NewUserOffline(userID string) *OutFrame {
	return &OutFrame{
		Event: UserOffline,
		Data: PresencePayload{
			UserID:    userID,
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}
}

func NewNotification(n *domain.Notification, unread int) *OutFrame {
	return &OutFrame{
		Event: NotificationNew,
		Data: NotificationPayload{
			Notification: n,
			Unread:       unread,
		},
	}
}

func NewError(message string) *OutFrame {
	return &OutFrame{
		Event: ErrorEvent,
		Data: ErrorPayload{
			Error: message,
		},
	}
}

func NewAck(ackID uint64, data any) *OutFrame {
	return &OutFrame{
		Event: AckEvent,
		AckID: ackID,
		Data:  data,
	}
}
