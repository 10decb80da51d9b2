package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/herald-chat/herald/internal/infrastructure/validate"
)

const maxNotificationTitleLen = 120

var ErrInvalidTopic = errors.New("invalid topic")

// Notification is a single fan-out payload published to a topic. It is
// not persisted; delivery is best-effort to whoever is subscribed at
// publish time.
type Notification struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Title     string         `json:"title,omitempty"`
	Body      string         `json:"body,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ValidateTopic accepts dotted lowercase topic names such as
// "orders.eu" or "system".
var ValidateTopic = validate.Field("topic",
	validate.Required(),
	validate.MaxLength(128),
	validate.NoSpaces(),
	validate.Lowercase(),
	validate.Matches(`^[a-z0-9]+([._-][a-z0-9]+)*$`,
		"topic can only contain lowercase letters, numbers, dots, underscores, and hyphens"),
)

func NewNotification(topic, title, body string, data map[string]any) (*Notification, error) {
	if err := ValidateTopic(topic); err != nil {
		return nil, ErrInvalidTopic
	}

	validateTitle := validate.Field("title", validate.MaxLength(maxNotificationTitleLen))
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	return &Notification{
		ID:        uuid.NewString(),
		Topic:     topic,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now(),
	}, nil
}
