package gateway

import (
	"context"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
)

// EventPublisher pushes room lifecycle events onto the broker for the
// audit consumer. events.RoomPublisher satisfies this.
type EventPublisher interface {
	RoomCreated(ctx context.Context, room domain.Room) error
	RoomEmptied(ctx context.Context, roomID string, messagesDropped int) error
	MemberJoined(ctx context.Context, roomID, userID string, memberCount int) error
	MemberLeft(ctx context.Context, roomID, userID string, memberCount int) error
	RoomFullRejected(ctx context.Context, roomID, userID string, capacity int) error
}

// NopPublisher is wired when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) RoomCreated(context.Context, domain.Room) error { return nil }
func (NopPublisher) RoomEmptied(context.Context, string, int) error { return nil }
func (NopPublisher) MemberJoined(context.Context, string, string, int) error { return nil }
func (NopPublisher) MemberLeft(context.Context, string, string, int) error { return nil }
func (NopPublisher) RoomFullRejected(context.Context, string, string, int) error { return nil }

// Publish failures never fail the triggering operation; the broker is
// an observer of room lifecycle, not a participant.
func (g *Gateway) warnPublishFailure(what, roomID string, err error) {
	g.log.Warn(logging.RabbitMQ, logging.Publish, what+" event not published", map[logging.ExtraKey]any{
		logging.RoomID:       roomID,
		logging.ErrorMessage: err.Error(),
	})
}
