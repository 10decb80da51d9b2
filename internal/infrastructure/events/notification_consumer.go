package events

import (
	"context"
	"encoding/json"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/contracts"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/messaging"
	"github.com/herald-chat/herald/internal/infrastructure/metrics"
	"github.com/herald-chat/herald/internal/infrastructure/notifications"
	"github.com/rabbitmq/amqp091-go"
)

type notificationConsumer struct {
	rabbitmq *messaging.RabbitMQ
	hub      *notifications.Hub
	metrics  metrics.Manager
	log      logging.Logger
}

func NewNotificationConsumer(rabbitmq *messaging.RabbitMQ, hub *notifications.Hub, metricsManager metrics.Manager, log logging.Logger) *notificationConsumer {
	if metricsManager == nil {
		metricsManager = metrics.NopManager{}
	}
	return &notificationConsumer{
		rabbitmq: rabbitmq,
		hub:      hub,
		metrics:  metricsManager,
		log:      log,
	}
}

// Listen blocks consuming push requests from other services and fans
// them out to subscribed connections.
func (c *notificationConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.NotificationIngressQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			c.log.Warn(logging.RabbitMQ, logging.Consume, "failed to unmarshal envelope", map[logging.ExtraKey]any{
				"error": err.Error(),
			})
			return err
		}

		var payload messaging.NotificationPushData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			c.log.Warn(logging.RabbitMQ, logging.Consume, "failed to unmarshal push request", map[logging.ExtraKey]any{
				"error": err.Error(),
			})
			return err
		}

		notification, err := domain.NewNotification(payload.Topic, payload.Title, payload.Body, payload.Data)
		if err != nil {
			c.log.Warn(logging.RabbitMQ, logging.Consume, "rejected push request", map[logging.ExtraKey]any{
				"error":       err.Error(),
				logging.Topic: payload.Topic,
			})
			return err
		}

		delivered := c.hub.Publish(notification)
		if delivered > 0 {
			c.metrics.AddCounter(metrics.NotificationsOut, float64(delivered), notification.Topic)
		}

		c.log.Debug(logging.RabbitMQ, logging.Publish, "notification fanned out", map[logging.ExtraKey]any{
			logging.Topic: notification.Topic,
			"delivered":   delivered,
		})

		return nil
	})
}
