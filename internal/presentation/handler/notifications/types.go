package notifications

// publishRequest is an externally produced notification
type publishRequest struct {
	Topic string         `json:"topic" example:"deploys" minLength:"1"` // Target topic
	Title string         `json:"title" example:"v2 shipped"`            // Short headline
	Body  string         `json:"body" example:"All checks green"`       // Longer text, optional
	Data  map[string]any `json:"data"`                                  // Free-form payload
}

// publishResponse reports the fan-out outcome
type publishResponse struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"` // Assigned notification id
	Delivered int    `json:"delivered" example:"3"`                             // Connections reached
}

// topicResponse reports a topic's live subscriber count
type topicResponse struct {
	Topic       string `json:"topic" example:"deploys"`
	Subscribers int    `json:"subscribers" example:"3"`
}
