package notifications

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/json"
	"github.com/herald-chat/herald/internal/infrastructure/metrics"
	"github.com/herald-chat/herald/internal/infrastructure/notifications"
)

type Handler struct {
	hub     *notifications.Hub
	metrics metrics.Manager
}

func NewHandler(hub *notifications.Hub, metricsManager metrics.Manager) *Handler {
	if metricsManager == nil {
		metricsManager = metrics.NopManager{}
	}
	return &Handler{hub: hub, metrics: metricsManager}
}

// PublishHandler godoc
// @Summary      Publish a notification
// @Description  Fans a notification out to every connection subscribed to the topic. Delivery is best-effort; offline subscribers miss it.
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request body publishRequest true "Notification content"
// @Success      202 {object} publishResponse "Accepted for delivery"
// @Failure      400 {object} json.ErrorResponse "Validation error"
// @Router       /notifications [post]
func (h *Handler) PublishHandler(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	notification, err := domain.NewNotification(req.Topic, req.Title, req.Body, req.Data)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	delivered := h.hub.Publish(notification)
	if delivered > 0 {
		h.metrics.AddCounter(metrics.NotificationsOut, float64(delivered), notification.Topic)
	}

	json.Write(w, http.StatusAccepted, publishResponse{
		ID:        notification.ID,
		Delivered: delivered,
	})
}

// GetTopicHandler godoc
// @Summary      Topic subscriber count
// @Description  Reports how many live connections are subscribed to a topic
// @Tags         notifications
// @Produce      json
// @Param        topic path string true "Topic name"
// @Success      200 {object} topicResponse "Subscriber count"
// @Failure      400 {object} json.ErrorResponse "Invalid topic"
// @Router       /notifications/topics/{topic} [get]
func (h *Handler) GetTopicHandler(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	if err := domain.ValidateTopic(topic); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	json.Write(w, http.StatusOK, topicResponse{
		Topic:       topic,
		Subscribers: h.hub.SubscriberCount(topic),
	})
}
