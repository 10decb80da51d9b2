package gateway

import (
	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/rooms"
)

// Inbound payloads. Every field arrives from the peer and is validated
// by the handler before it touches a component.

type joinChatRequest struct {
	RoomID string `json:"roomId"`
}

type chatMessageRequest struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type typingRequest struct {
	RoomID string `json:"roomId"`
	// Pointer so a missing or non-boolean field is distinguishable
	// from an explicit false.
	IsTyping *bool `json:"isTyping"`
}

type historyRequest struct {
	RoomID string `json:"roomId"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type createRoomRequest struct {
	Name       string `json:"name"`
	Topic      string `json:"topic"`
	Capacity   int    `json:"capacity"`
	Visibility string `json:"visibility"`
}

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type listRoomsRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type subscribeRequest struct {
	Topics []string `json:"topics"`
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// Ack payloads returned to the requesting connection.

type successAck struct {
	Success bool `json:"success"`
}

type joinChatAck struct {
	Success      bool   `json:"success"`
	RoomID       string `json:"roomId"`
	Participants int    `json:"participants"`
}

type leaveChatAck struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId"`
}

type messageAck struct {
	Success bool            `json:"success"`
	Message *domain.Message `json:"message"`
}

type historyAck struct {
	Success  bool             `json:"success"`
	Messages []domain.Message `json:"messages"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type createRoomAck struct {
	Success bool         `json:"success"`
	Room    *domain.Room `json:"room"`
}

type roomInfoAck struct {
	Success bool          `json:"success"`
	Room    rooms.Summary `json:"room"`
}

type roomListAck struct {
	Success bool            `json:"success"`
	Rooms   []rooms.Summary `json:"rooms"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type subscribeAck struct {
	Success bool     `json:"success"`
	Topics  []string `json:"topics"`
}

type markReadAck struct {
	Success bool `json:"success"`
	Cleared int  `json:"cleared"`
}

type pongAck struct {
	Pong      bool   `json:"pong"`
	Timestamp string `json:"timestamp"`
}

type heartbeatAck struct {
	Timestamp string `json:"timestamp"`
}
