package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/herald-chat/herald/internal/infrastructure/validate"
)

const (
	// MaxMessageBody is the upper bound on a chat message body, counted
	// in characters rather than bytes.
	MaxMessageBody = 1000

	messageIDSuffixLen   = 8
	messageIDSuffixChars = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	suffixCharsetLen = big.NewInt(int64(len(messageIDSuffixChars)))

	ErrEmptyMessage   = errors.New("message body is empty")
	ErrMessageTooLong = errors.New("message body exceeds maximum length")
	ErrInvalidKind    = errors.New("invalid message kind")
)

type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindFile  MessageKind = "file"
	KindCode  MessageKind = "code"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindFile, KindCode:
		return true
	}
	return false
}

type Message struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"roomId"`
	SenderID  string      `json:"senderId"`
	Body      string      `json:"body"`
	Kind      MessageKind `json:"kind"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewMessage validates and builds a chat message. An empty kind
// defaults to text; anything outside the known kinds is rejected.
func NewMessage(roomID, senderID, body string, kind MessageKind) (*Message, error) {
	validateBody := validate.Field("body",
		validate.Required(),
		validate.MaxRunes(MaxMessageBody),
	)
	if err := validateBody(body); err != nil {
		if strings.TrimSpace(body) == "" {
			return nil, ErrEmptyMessage
		}
		return nil, ErrMessageTooLong
	}

	if kind == "" {
		kind = KindText
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	id, err := newMessageID()
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        id,
		RoomID:    roomID,
		SenderID:  senderID,
		Body:      body,
		Kind:      kind,
		CreatedAt: time.Now(),
	}, nil
}

// newMessageID builds a sortable identifier: base36 unix millis plus a
// random suffix so two messages in the same millisecond stay distinct.
func newMessageID() (string, error) {
	var sb strings.Builder
	sb.Grow(messageIDSuffixLen)

	for i := 0; i < messageIDSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, suffixCharsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(messageIDSuffixChars[n.Int64()])
	}

	millis := strconv.FormatInt(time.Now().UnixMilli(), 36)

	return "msg_" + millis + "_" + sb.String(), nil
}
