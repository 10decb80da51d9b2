package presence

// presenceResponse is a snapshot of who is connected right now
type presenceResponse struct {
	Online      []string `json:"online"`                  // Distinct user ids, sorted
	Users       int      `json:"users" example:"2"`       // Distinct online users
	Connections int      `json:"connections" example:"3"` // Live socket connections
}
