package gateway

import (
	"context"
	"errors"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
	"github.com/herald-chat/herald/internal/infrastructure/rooms"
)

func (g *Gateway) handleRoomCreate(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req createRoomRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}

	room, err := domain.NewRoom(req.Name, req.Topic, c.UserID, req.Capacity, domain.Visibility(req.Visibility))
	if err != nil {
		// Metadata problems are all user-correctable.
		return nil, validationError(err.Error())
	}

	if err := g.directory.Create(room); err != nil {
		return nil, err
	}

	if err := g.publisher.RoomCreated(ctx, *room); err != nil {
		g.warnPublishFailure("room created", room.ID, err)
	}

	g.log.Info(logging.Socket, logging.Dispatch, "room created", map[logging.ExtraKey]any{
		logging.RoomID: room.ID,
		logging.UserID: c.UserID,
	})

	return createRoomAck{Success: true, Room: room}, nil
}

// handleRoomJoin joins through the directory: unlike chat:join, the
// room must already exist as a directory entry.
func (g *Gateway) handleRoomJoin(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req roomRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.RoomID == "" {
		return nil, domain.ErrInvalidRoom
	}

	wasMember := g.chat.IsMember(c.ID, req.RoomID)
	if !wasMember {
		room, err := g.directory.CheckJoin(req.RoomID)
		if err != nil {
			if errors.Is(err, domain.ErrRoomFull) {
				if pubErr := g.publisher.RoomFullRejected(ctx, req.RoomID, c.UserID, room.Capacity); pubErr != nil {
					g.warnPublishFailure("room full rejection", req.RoomID, pubErr)
				}
			}
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

// handleRoomLeave shares chat:leave's semantics; membership lives in
// one place no matter which surface removed it.
func (g *Gateway) handleRoomLeave(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	return g.handleChatLeave(ctx, c, data)
}

const (
	defaultRoomListLimit = 20
	maxRoomListLimit     = 100
)

func (g *Gateway) handleRoomList(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req listRoomsRequest
	if err := decodeOptional(data, &req); err != nil {
		return nil, err
	}

	if req.Limit <= 0 {
		req.Limit = defaultRoomListLimit
	}
	if req.Limit > maxRoomListLimit {
		req.Limit = maxRoomListLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	all := g.directory.List()
	total := len(all)

	page := []rooms.Summary{}
	if req.Offset < total {
		end := req.Offset + req.Limit
		if end > total {
			end = total
		}
		page = all[req.Offset:end]
	}

	return roomListAck{
		Success: true,
		Rooms:   page,
		Total:   total,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}, nil
}

func (g *Gateway) handleRoomInfo(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
	var req roomRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}

	summary, err := g.directory.Info(req.RoomID)
	if err != nil {
		return nil, err
	}

	return roomInfoAck{Success: true, Room: summary}, nil
}
