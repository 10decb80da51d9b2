package events

import (
	"context"
	"encoding/json"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/contracts"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

type auditConsumer struct {
	rabbitmq *messaging.RabbitMQ
	repo     domain.RoomAuditRepository
	log      logging.Logger
}

func NewAuditConsumer(rabbitmq *messaging.RabbitMQ, repo domain.RoomAuditRepository, log logging.Logger) *auditConsumer {
	return &auditConsumer{
		rabbitmq: rabbitmq,
		repo:     repo,
		log:      log,
	}
}

// Listen blocks consuming room lifecycle events and writing them to the
// audit store.
func (c *auditConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.RoomAuditQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			c.log.Warn(logging.RabbitMQ, logging.Consume, "failed to unmarshal envelope", map[logging.ExtraKey]any{
				"error":       err.Error(),
				"routing_key": msg.RoutingKey,
			})
			return err
		}

		var payload messaging.RoomEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			c.log.Warn(logging.RabbitMQ, logging.Consume, "failed to unmarshal room event", map[logging.ExtraKey]any{
				"error":       err.Error(),
				"routing_key": msg.RoutingKey,
			})
			return err
		}

		if err := c.repo.Log(ctx, &payload.Log); err != nil {
			c.log.Error(logging.Mongo, logging.Audit, "failed to write audit log", map[logging.ExtraKey]any{
				"error":        err.Error(),
				logging.RoomID: payload.Log.RoomID,
				"event_type":   string(payload.Log.EventType),
			})
			return err
		}

		c.log.Debug(logging.RabbitMQ, logging.Audit, "room event recorded", map[logging.ExtraKey]any{
			logging.RoomID: payload.Log.RoomID,
			"event_type":   string(payload.Log.EventType),
		})

		return nil
	})
}
