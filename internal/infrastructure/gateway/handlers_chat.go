package gateway

import (
	"context"
	"errors"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/metrics"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
)

func (g *Gateway) handleChatJoin(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req joinChatRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.RoomID == "" {
		return nil, domain.ErrInvalidRoom
	}

	wasMember := g.chat.IsMember(c.ID, req.RoomID)
	if !wasMember {
		room, err := g.directory.CheckJoin(req.RoomID)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrRoomNotFound):
			// Unknown ids spin up an implicit chat room on first join.
		case errors.Is(err, domain.ErrRoomFull):
			if pubErr := g.publisher.RoomFullRejected(ctx, req.RoomID, c.UserID, room.Capacity); pubErr != nil {
				g.warnPublishFailure("room full rejection", req.RoomID, pubErr)
			}
			return nil, err
		default:
			return nil, err
		}
	}

	participants, err := g.chat.Join(c.ID, c.UserID, req.RoomID)
	if err != nil {
		return nil, err
	}
	c.JoinRoom(req.RoomID)

	if !wasMember {
		if err := g.publisher.MemberJoined(ctx, req.RoomID, c.UserID, participants); err != nil {
			g.warnPublishFailure("member joined", req.RoomID, err)
		}
	}

	return joinChatAck{Success: true, RoomID: req.RoomID, Participants: participants}, nil
}

// handleChatLeave acknowledges even when the connection was not a
// member; leaving twice is not an error.
func (g *Gateway) handleChatLeave(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req roomRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.RoomID == "" {
		return nil, domain.ErrInvalidRoom
	}

	res := g.chat.Leave(c.ID, c.UserID, req.RoomID)
	c.LeaveRoom(req.RoomID)

	if res.Removed {
		if err := g.publisher.MemberLeft(ctx, req.RoomID, c.UserID, res.Remaining); err != nil {
			g.warnPublishFailure("member left", req.RoomID, err)
		}
		if res.Emptied {
			if err := g.publisher.RoomEmptied(ctx, req.RoomID, res.MessagesDropped); err != nil {
				g.warnPublishFailure("room emptied", req.RoomID, err)
			}
		}
	}

	return leaveChatAck{Success: true, RoomID: req.RoomID}, nil
}

func (g *Gateway) handleChatMessage(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req chatMessageRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.RoomID == "" {
		return nil, domain.ErrInvalidRoom
	}

	msg, err := g.chat.Send(c.ID, c.UserID, req.RoomID, req.Message, domain.MessageKind(req.Type))
	if err != nil {
		return nil, err
	}

	g.metrics.IncrementCounter(metrics.MessagesTotal)

	return messageAck{Success: true, Message: msg}, nil
}

func (g *Gateway) handleChatTyping(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req typingRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.RoomID == "" {
		return nil, domain.ErrInvalidRoom
	}
	if req.IsTyping == nil {
		return nil, validationError("isTyping must be a boolean")
	}

	if err := g.chat.Typing(c.ID, c.UserID, req.RoomID, *req.IsTyping); err != nil {
		return nil, err
	}

	return successAck{Success: true}, nil
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

func (g *Gateway) handleChatHistory(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req historyRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.RoomID == "" {
		return nil, domain.ErrInvalidRoom
	}

	if req.Limit <= 0 {
		req.Limit = defaultHistoryLimit
	}
	if req.Limit > maxHistoryLimit {
		req.Limit = maxHistoryLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	messages, total := g.chat.History(req.RoomID, req.Limit, req.Offset)

	return historyAck{
		Success:  true,
		Messages: messages,
		Total:    total,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}, nil
}
