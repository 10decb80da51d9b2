package gateway

import (
	"context"
	"time"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

func (g *Gateway) handlePing(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	c.Touch()
	return pongAck{Pong: true, Timestamp: time.Now().Format(time.RFC3339)}, nil
}

func (g *Gateway) handleHeartbeat(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	c.Touch()
	return heartbeatAck{Timestamp: time.Now().Format(time.RFC3339)}, nil
}

// handleUserStatus validates strictly: a bad status is rejected and
// nothing is broadcast.
func (g *Gateway) handleUserStatus(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req statusRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	c.SetStatus(status)
	g.registry.BroadcastAll(ws.NewStatusChange(c.UserID, status), c.ID)

	return successAck{Success: true}, nil
}
