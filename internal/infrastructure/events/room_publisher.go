package events

import (
	"context"
	"encoding/json"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/contracts"
	"github.com/herald-chat/herald/internal/infrastructure/messaging"
)

type RoomPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomPublisher(rabbitmq *messaging.RabbitMQ) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RoomPublisher) RoomCreated(ctx context.Context, room domain.Room) error {
	auditLog := domain.NewRoomCreatedLog(room.ID, room.CreatedBy, room.Capacity, room.Visibility)
	return p.publish(ctx, contracts.EventRoomCreated, room.CreatedBy, auditLog)
}

func (p *RoomPublisher) RoomEmptied(ctx context.Context, roomID string, messagesDropped int) error {
	auditLog := domain.NewRoomEmptiedLog(roomID, messagesDropped)
	return p.publish(ctx, contracts.EventRoomEmptied, "", auditLog)
}

func (p *RoomPublisher) MemberJoined(ctx context.Context, roomID, userID string, memberCount int) error {
	auditLog := domain.NewMemberJoinedLog(roomID, userID, memberCount)
	return p.publish(ctx, contracts.EventMemberJoined, userID, auditLog)
}

func (p *RoomPublisher) MemberLeft(ctx context.Context, roomID, userID string, memberCount int) error {
	auditLog := domain.NewMemberLeftLog(roomID, userID, memberCount)
	return p.publish(ctx, contracts.EventMemberLeft, userID, auditLog)
}

func (p *RoomPublisher) RoomFullRejected(ctx context.Context, roomID, userID string, capacity int) error {
	auditLog := domain.NewRoomFullRejectionLog(roomID, userID, capacity)
	return p.publish(ctx, contracts.EventRoomFullRejected, userID, auditLog)
}

func (p *RoomPublisher) publish(ctx context.Context, routingKey, actorID string, auditLog *domain.RoomAuditLog) error {
	payload := messaging.RoomEventData{
		Log: *auditLog,
	}

	roomEventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		ActorID: actorID,
		Data:    roomEventJSON,
	})
}
