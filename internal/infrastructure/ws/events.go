package ws

// Inbound events
const (
	ChatJoin    = "chat:join"
	ChatLeave   = "chat:leave"
	ChatMessage = "chat:message"
	ChatTyping  = "chat:typing"
	ChatHistory = "chat:history"

	RoomCreate = "room:create"
	RoomJoin   = "room:join"
	RoomLeave  = "room:leave"
	RoomList   = "room:list"
	RoomInfo   = "room:info"

	NotificationSubscribe   = "notification:subscribe"
	NotificationUnsubscribe = "notification:unsubscribe"
	NotificationMarkRead    = "notification:mark_read"

	Ping       = "ping"
	UserStatus = "user:status"
	Heartbeat  = "heartbeat"
)

// Outbound events. chat:message and chat:typing relays go out under
// their inbound names.
const (
	ChatUserJoined = "chat:user_joined"
	ChatUserLeft   = "chat:user_left"

	UserStatusChange = "user:status_change"
	UserOnline       = "user:online"
	UserOffline      = "user:offline"

	NotificationNew = "notification:new"

	ErrorEvent = "error"
	AckEvent   = "ack"
)
