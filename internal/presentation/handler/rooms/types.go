package rooms

import (
	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/rooms"
)

// createRoomRequest carries the metadata for a new room
type createRoomRequest struct {
	Name       string `json:"name" example:"design" minLength:"1" maxLength:"64"` // Unique room name
	Topic      string `json:"topic" example:"Design discussions" maxLength:"200"` // Optional topic line
	Capacity   int    `json:"capacity" example:"25"`                              // Max members, 0 = unlimited
	Visibility string `json:"visibility" example:"public" enums:"public,private"` // Listing visibility
	CreatedBy  string `json:"createdBy" example:"alice"`                          // Creator user id
}

// listRoomsResponse is one page of the public room directory
type listRoomsResponse struct {
	Rooms  []rooms.Summary `json:"rooms"`             // Rooms on this page
	Total  int             `json:"total" example:"3"` // Public rooms overall
	Limit  int             `json:"limit" example:"20"`
	Offset int             `json:"offset" example:"0"`
}

// historyResponse is one page of a room's buffered messages
type historyResponse struct {
	Messages []domain.Message `json:"messages"`          // Oldest first
	Total    int              `json:"total" example:"1"` // Messages currently buffered
	Limit    int              `json:"limit" example:"20"`
	Offset   int              `json:"offset" example:"0"`
}

// auditResponse lists audit entries, newest first
type auditResponse struct {
	Entries []domain.RoomAuditLog `json:"entries"`
}
