package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameDecoding(t *testing.T) {
	t.Run("full frame", func(t *testing.T) {
		raw := []byte(`{"event":"chat:message","data":{"roomId":"r1","body":"hi"},"ackId":7}`)

		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))

		assert.Equal(t, "chat:message", frame.Event)
		assert.Equal(t, uint64(7), frame.AckID)
		assert.JSONEq(t, `{"roomId":"r1","body":"hi"}`, string(frame.Data))
	})

	t.Run("ackId defaults to zero for fire-and-forget", func(t *testing.T) {
		var frame Frame
		require.NoError(t, json.Unmarshal([]byte(`{"event":"ping"}`), &frame))

		assert.Equal(t, "ping", frame.Event)
		assert.Zero(t, frame.AckID)
		assert.Nil(t, frame.Data)
	})
}

func TestErrorPayloadWireShape(t *testing.T) {
	// Clients match on the error key verbatim
	out, err := json.Marshal(NewError("rate limit exceeded"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"event":"error","data":{"error":"rate limit exceeded"}}`, string(out))
}

func TestAckFrameWireShape(t *testing.T) {
	out, err := json.Marshal(NewAck(3, map[string]any{"success": true}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"event":"ack","ackId":3,"data":{"success":true}}`, string(out))
}

func TestBroadcastConstructors(t *testing.T) {
	joined := NewUserJoined("room-1", "user-1", 4)
	assert.Equal(t, ChatUserJoined, joined.Event)

	payload, ok := joined.Data.(UserJoinedPayload)
	require.True(t, ok)
	assert.Equal(t, "room-1", payload.RoomID)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, 4, payload.Participants)
	assert.NotEmpty(t, payload.Timestamp)

	left := NewUserLeft("room-1", "user-1")
	assert.Equal(t, ChatUserLeft, left.Event)

	typing := NewTyping("room-1", "user-1", true)
	tp, ok := typing.Data.(TypingPayload)
	require.True(t, ok)
	assert.True(t, tp.IsTyping)

	online := NewUserOnline("user-1")
	assert.Equal(t, UserOnline, online.Event)

	offline := NewUserOffline("user-1")
	assert.Equal(t, UserOffline, offline.Event)
}
