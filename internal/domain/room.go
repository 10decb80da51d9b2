package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/herald-chat/herald/internal/infrastructure/validate"
)

const (
	maxRoomNameLength = 64
	maxRoomTopicLen   = 200
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room already exists")
	ErrRoomFull        = errors.New("room is full")
	ErrRoomPrivate     = errors.New("room is private")
	ErrInvalidRoom     = errors.New("invalid room id")
	ErrInvalidCapacity = errors.New("capacity must not be negative")
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Room is a directory entry: metadata only. Live membership is tracked
// by the chat manager, so a room record can outlive its last member.
type Room struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Topic      string     `json:"topic,omitempty"`
	Capacity   int        `json:"capacity"` // 0 means unlimited
	Visibility Visibility `json:"visibility"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewRoom validates the metadata and assigns a fresh id. An empty
// visibility defaults to public.
func NewRoom(name, topic, createdBy string, capacity int, visibility Visibility) (*Room, error) {
	validateName := validate.Field("name",
		validate.Required(),
		validate.LengthBetween(1, maxRoomNameLength),
	)
	if err := validateName(name); err != nil {
		return nil, err
	}

	validateTopic := validate.Field("topic", validate.MaxLength(maxRoomTopicLen))
	if err := validateTopic(topic); err != nil {
		return nil, err
	}

	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	if visibility == "" {
		visibility = VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, errors.New("visibility must be one of: public, private")
	}

	return &Room{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		Topic:      strings.TrimSpace(topic),
		Capacity:   capacity,
		Visibility: visibility,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}, nil
}

// HasCapacityFor reports whether one more member fits given the current
// occupancy.
func (r *Room) HasCapacityFor(current int) bool {
	if r.Capacity <= 0 {
		return true
	}
	return current < r.Capacity
}
