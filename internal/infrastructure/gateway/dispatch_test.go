package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-chat/herald/internal/infrastructure/ratelimiter"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

func TestDispatchUnknownEvent(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})
	alice, sender := env.connect(t, "c1", "alice")
	sender.reset()

	t.Run("acked when requested", func(t *testing.T) {
		env.dispatch(t, alice, "no:such:event", nil, 1)
		ack := sender.lastAck()
		require.NotNil(t, ack)
		payload := ack.Data.(ws.ErrorPayload)
		assert.Equal(t, "unknown event", payload.Error)
		assert.Equal(t, CodeInvalidInput, payload.Code)
	})

	t.Run("dropped without an ack", func(t *testing.T) {
		sender.reset()
		env.dispatch(t, alice, "no:such:event", nil, 0)
		assert.Empty(t, sender.byEvent(ws.AckEvent))
		assert.Empty(t, sender.byEvent(ws.ErrorEvent))
	})
}

func TestDispatchRateLimit(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{MaxEvents: 1})
	alice, sender := env.connect(t, "c1", "alice")
	sender.reset()

	env.dispatch(t, alice, ws.Ping, nil, 1)
	require.NotNil(t, sender.lastAck())
	assert.IsType(t, pongAck{}, sender.lastAck().Data)

	t.Run("denial acks rate limit exceeded", func(t *testing.T) {
		env.dispatch(t, alice, ws.Ping, nil, 2)
		ack := sender.lastAck()
		require.NotNil(t, ack)
		assert.EqualValues(t, 2, ack.AckID)
		payload := ack.Data.(ws.ErrorPayload)
		assert.Equal(t, "rate limit exceeded", payload.Error)
		assert.Equal(t, CodeRateLimited, payload.Code)
	})

	t.Run("denial without ack is silent", func(t *testing.T) {
		sender.reset()
		env.dispatch(t, alice, ws.Ping, nil, 0)
		assert.Empty(t, sender.byEvent(ws.AckEvent))
		assert.Empty(t, sender.byEvent(ws.ErrorEvent))
	})

	t.Run("each event name keeps its own budget", func(t *testing.T) {
		sender.reset()
		env.dispatch(t, alice, ws.Heartbeat, nil, 3)
		require.NotNil(t, sender.lastAck())
		assert.IsType(t, heartbeatAck{}, sender.lastAck().Data)
	})
}

func TestDispatchHandlerErrors(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})
	alice, sender := env.connect(t, "c1", "alice")
	sender.reset()

	t.Run("user-visible error goes through the ack", func(t *testing.T) {
		env.dispatch(t, alice, ws.ChatMessage, chatMessageRequest{RoomID: "nowhere", Message: "hi"}, 1)
		ack := sender.lastAck()
		require.NotNil(t, ack)
		payload := ack.Data.(ws.ErrorPayload)
		assert.Equal(t, "not in room", payload.Error)
		assert.Equal(t, CodeInvalidInput, payload.Code)
		assert.Empty(t, sender.byEvent(ws.ErrorEvent))
	})

	t.Run("without an ack it becomes an error event", func(t *testing.T) {
		sender.reset()
		env.dispatch(t, alice, ws.ChatMessage, chatMessageRequest{RoomID: "nowhere", Message: "hi"}, 0)
		assert.Empty(t, sender.byEvent(ws.AckEvent))
		frames := sender.byEvent(ws.ErrorEvent)
		require.Len(t, frames, 1)
		assert.Equal(t, "not in room", frames[0].Data.(ws.ErrorPayload).Error)
	})

	t.Run("missing payload is a validation error", func(t *testing.T) {
		env.dispatch(t, alice, ws.ChatJoin, nil, 2)
		payload := sender.lastAck().Data.(ws.ErrorPayload)
		assert.Equal(t, "missing payload", payload.Error)
		assert.Equal(t, CodeValidation, payload.Code)
	})

	t.Run("malformed payload is a validation error", func(t *testing.T) {
		env.g.Dispatch(context.Background(), alice, &ws.Frame{Event: ws.ChatJoin, Data: []byte(`{"roomId":42}`), AckID: 3})
		payload := sender.lastAck().Data.(ws.ErrorPayload)
		assert.Equal(t, "malformed payload", payload.Error)
		assert.Equal(t, CodeValidation, payload.Code)
	})

	t.Run("non-boolean isTyping is rejected, not coerced", func(t *testing.T) {
		env.dispatch(t, alice, ws.ChatJoin, joinChatRequest{RoomID: "general"}, 4)
		env.g.Dispatch(context.Background(), alice, &ws.Frame{Event: ws.ChatTyping, Data: []byte(`{"roomId":"general"}`), AckID: 5})
		payload := sender.lastAck().Data.(ws.ErrorPayload)
		assert.Equal(t, "isTyping must be a boolean", payload.Error)
		assert.Equal(t, CodeValidation, payload.Code)
	})
}

func TestDispatchPanicContainment(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})
	alice, sender := env.connect(t, "c1", "alice")
	sender.reset()

	env.g.handlers["test:boom"] = func(ctx context.Context, c *registry.Connection, data []byte) (any, error) {
		panic("kaboom")
	}

	t.Run("panic becomes an internal error ack", func(t *testing.T) {
		env.dispatch(t, alice, "test:boom", nil, 1)
		ack := sender.lastAck()
		require.NotNil(t, ack)
		payload := ack.Data.(ws.ErrorPayload)
		assert.Equal(t, "internal error", payload.Error)
		assert.Equal(t, CodeInternal, payload.Code)
	})

	t.Run("panic without ack emits an error event", func(t *testing.T) {
		sender.reset()
		env.dispatch(t, alice, "test:boom", nil, 0)
		frames := sender.byEvent(ws.ErrorEvent)
		require.Len(t, frames, 1)
		assert.Equal(t, "internal error", frames[0].Data.(ws.ErrorPayload).Error)
	})

	t.Run("the connection keeps working afterwards", func(t *testing.T) {
		sender.reset()
		env.dispatch(t, alice, ws.Ping, nil, 2)
		require.NotNil(t, sender.lastAck())
		assert.IsType(t, pongAck{}, sender.lastAck().Data)
	})
}
