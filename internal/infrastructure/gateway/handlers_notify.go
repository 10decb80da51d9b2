package gateway

import (
	"context"

	"github.com/herald-chat/herald/internal/infrastructure/registry"
)

func (g *Gateway) handleSubscribe(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req subscribeRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if len(req.Topics) == 0 {
		return nil, validationError("topics must not be empty")
	}

	if _, err := g.hub.Subscribe(c.ID, req.Topics); err != nil {
		return nil, err
	}

	return subscribeAck{Success: true, Topics: g.hub.Topics(c.ID)}, nil
}

func (g *Gateway) handleUnsubscribe(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req subscribeRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if len(req.Topics) == 0 {
		return nil, validationError("topics must not be empty")
	}

	g.hub.Unsubscribe(c.ID, req.Topics)

	topics := g.hub.Topics(c.ID)
	if topics == nil {
		topics = []string{}
	}

	return subscribeAck{Success: true, Topics: topics}, nil
}

// handleMarkRead tolerates unknown and already-read ids; the ack
// reports how many entries were actually cleared.
func (g *Gateway) handleMarkRead(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req markReadRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}

	cleared := g.hub.MarkRead(c.ID, req.IDs)

	return markReadAck{Success: true, Cleared: cleared}, nil
}
