package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Socket          Category = "Socket"
	Redis           Category = "Redis"
	RabbitMQ        Category = "RabbitMQ"
	Mongo           Category = "Mongo"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Socket
	Connect      SubCategory = "Connect"
	Disconnect   SubCategory = "Disconnect"
	Dispatch     SubCategory = "Dispatch"
	Broadcast    SubCategory = "Broadcast"
	Presence     SubCategory = "Presence"
	Housekeeping SubCategory = "Housekeeping"

	// RabbitMQ / Mongo
	Publish SubCategory = "Publish"
	Consume SubCategory = "Consume"
	Audit   SubCategory = "Audit"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RequestBody  ExtraKey = "RequestBody"
	ResponseBody ExtraKey = "ResponseBody"
	ErrorMessage ExtraKey = "ErrorMessage"
	ConnectionID ExtraKey = "ConnectionId"
	UserID       ExtraKey = "UserId"
	RoomID       ExtraKey = "RoomId"
	EventName    ExtraKey = "Event"
	Topic        ExtraKey = "Topic"
)
