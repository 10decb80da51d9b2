package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/chat"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/metrics"
	"github.com/herald-chat/herald/internal/infrastructure/notifications"
	"github.com/herald-chat/herald/internal/infrastructure/ratelimiter"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
	"github.com/herald-chat/herald/internal/infrastructure/rooms"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

type fakeSender struct {
	mu     sync.Mutex
	frames []*ws.OutFrame
	closed bool
}

func (f *fakeSender) Send(frame *ws.OutFrame) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	return true
}

func (f *fakeSender) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSender) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSender) byEvent(event string) []*ws.OutFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*ws.OutFrame
	for _, fr := range f.frames {
		if fr.Event == event {
			out = append(out, fr)
		}
	}
	return out
}

func (f *fakeSender) lastAck() *ws.OutFrame {
	acks := f.byEvent(ws.AckEvent)
	if len(acks) == 0 {
		return nil
	}
	return acks[len(acks)-1]
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	f.frames = nil
	f.mu.Unlock()
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls []string
}

func (p *recordingPublisher) record(call string) error {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) recorded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *recordingPublisher) RoomCreated(_ context.Context, room domain.Room) error {
	return p.record("created:" + room.Name)
}

func (p *recordingPublisher) RoomEmptied(_ context.Context, roomID string, messagesDropped int) error {
	return p.record(fmt.Sprintf("emptied:%s:%d", roomID, messagesDropped))
}

func (p *recordingPublisher) MemberJoined(_ context.Context, roomID, userID string, memberCount int) error {
	return p.record(fmt.Sprintf("joined:%s:%s:%d", roomID, userID, memberCount))
}

func (p *recordingPublisher) MemberLeft(_ context.Context, roomID, userID string, memberCount int) error {
	return p.record(fmt.Sprintf("left:%s:%s:%d", roomID, userID, memberCount))
}

func (p *recordingPublisher) RoomFullRejected(_ context.Context, roomID, userID string, capacity int) error {
	return p.record(fmt.Sprintf("rejected:%s:%s:%d", roomID, userID, capacity))
}

type testEnv struct {
	g   *Gateway
	reg *registry.Registry
	pub *recordingPublisher
}

func newTestGateway(t *testing.T, opts Options, limiterOpts ratelimiter.Options) *testEnv {
	t.Helper()

	log := logging.NewNopLogger()
	reg := registry.New()
	chatManager := chat.NewManager(reg, log, chat.Options{})
	directory := rooms.NewDirectory(chatManager, 0, 0)
	hub := notifications.NewHub(reg, log)
	limiter := ratelimiter.NewFixedWindow(limiterOpts)
	t.Cleanup(limiter.Close)

	pub := &recordingPublisher{}
	g := New(reg, chatManager, directory, hub, limiter, pub, metrics.NopManager{}, log, opts)
	t.Cleanup(g.Close)

	return &testEnv{g: g, reg: reg, pub: pub}
}

func (e *testEnv) connect(t *testing.T, connID, userID string) (*registry.Connection, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	c := registry.NewConnection(connID, userID, sender)
	e.g.Connect(context.Background(), c)
	return c, sender
}

func (e *testEnv) dispatch(t *testing.T, c *registry.Connection, event string, payload any, ackID uint64) {
	t.Helper()
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		data = b
	}
	e.g.Dispatch(context.Background(), c, &ws.Frame{Event: event, Data: data, AckID: ackID})
}

func TestGatewayPresenceBroadcasts(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})

	_, aliceSender := env.connect(t, "c1", "alice")

	t.Run("every connect announces user:online to others", func(t *testing.T) {
		env.connect(t, "c2", "bob")
		frames := aliceSender.byEvent(ws.UserOnline)
		require.Len(t, frames, 1)
		assert.Equal(t, "bob", frames[0].Data.(ws.PresencePayload).UserID)

		// A second device for bob announces again.
		env.connect(t, "c3", "bob")
		assert.Len(t, aliceSender.byEvent(ws.UserOnline), 2)
	})

	t.Run("user:offline only on the last connection", func(t *testing.T) {
		env.g.Disconnect(context.Background(), "c2")
		assert.Empty(t, aliceSender.byEvent(ws.UserOffline))

		env.g.Disconnect(context.Background(), "c3")
		frames := aliceSender.byEvent(ws.UserOffline)
		require.Len(t, frames, 1)
		assert.Equal(t, "bob", frames[0].Data.(ws.PresencePayload).UserID)
	})

	t.Run("disconnecting an unknown connection is a no-op", func(t *testing.T) {
		env.g.Disconnect(context.Background(), "ghost")
	})
}

func TestGatewayDefaultRooms(t *testing.T) {
	env := newTestGateway(t, Options{DefaultRooms: []string{"lobby"}}, ratelimiter.Options{})

	c1, s1 := env.connect(t, "c1", "alice")
	require.Contains(t, c1.Rooms(), "lobby")

	c2, _ := env.connect(t, "c2", "bob")
	require.Contains(t, c2.Rooms(), "lobby")

	joined := s1.byEvent(ws.ChatUserJoined)
	require.Len(t, joined, 1)
	payload := joined[0].Data.(ws.UserJoinedPayload)
	assert.Equal(t, "lobby", payload.RoomID)
	assert.Equal(t, "bob", payload.UserID)
	assert.Equal(t, 2, payload.Participants)

	assert.Contains(t, env.pub.recorded(), "joined:lobby:alice:1")
	assert.Contains(t, env.pub.recorded(), "joined:lobby:bob:2")
}

func TestGatewayChatFlow(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})

	alice, aliceSender := env.connect(t, "c1", "alice")
	bob, bobSender := env.connect(t, "c2", "bob")
	aliceSender.reset()
	bobSender.reset()

	t.Run("join acks with participant count", func(t *testing.T) {
		env.dispatch(t, alice, ws.ChatJoin, joinChatRequest{RoomID: "general"}, 1)
		ack := aliceSender.lastAck()
		require.NotNil(t, ack)
		assert.EqualValues(t, 1, ack.AckID)
		assert.Equal(t, joinChatAck{Success: true, RoomID: "general", Participants: 1}, ack.Data)

		env.dispatch(t, bob, ws.ChatJoin, joinChatRequest{RoomID: "general"}, 2)
		ack = bobSender.lastAck()
		require.NotNil(t, ack)
		assert.Equal(t, joinChatAck{Success: true, RoomID: "general", Participants: 2}, ack.Data)

		joined := aliceSender.byEvent(ws.ChatUserJoined)
		require.Len(t, joined, 1)
		assert.Equal(t, "bob", joined[0].Data.(ws.UserJoinedPayload).UserID)
	})

	t.Run("rejoining is idempotent", func(t *testing.T) {
		aliceSender.reset()
		env.dispatch(t, bob, ws.ChatJoin, joinChatRequest{RoomID: "general"}, 3)
		ack := bobSender.lastAck()
		require.NotNil(t, ack)
		assert.Equal(t, joinChatAck{Success: true, RoomID: "general", Participants: 2}, ack.Data)
		assert.Empty(t, aliceSender.byEvent(ws.ChatUserJoined))
	})

	t.Run("message reaches the other member only", func(t *testing.T) {
		bobSender.reset()
		env.dispatch(t, alice, ws.ChatMessage, chatMessageRequest{RoomID: "general", Message: "hello"}, 4)

		ack := aliceSender.lastAck()
		require.NotNil(t, ack)
		msgAck, ok := ack.Data.(messageAck)
		require.True(t, ok)
		assert.True(t, msgAck.Success)
		assert.Equal(t, "hello", msgAck.Message.Body)
		assert.Equal(t, domain.KindText, msgAck.Message.Kind)

		relayed := bobSender.byEvent(ws.ChatMessage)
		require.Len(t, relayed, 1)
		assert.Equal(t, "hello", relayed[0].Data.(*domain.Message).Body)
		assert.Empty(t, aliceSender.byEvent(ws.ChatMessage))
	})

	t.Run("history pages backward from most recent", func(t *testing.T) {
		env.dispatch(t, bob, ws.ChatHistory, historyRequest{RoomID: "general"}, 5)
		ack := bobSender.lastAck()
		require.NotNil(t, ack)
		hist := ack.Data.(historyAck)
		assert.True(t, hist.Success)
		assert.Equal(t, 1, hist.Total)
		require.Len(t, hist.Messages, 1)
		assert.Equal(t, "hello", hist.Messages[0].Body)
		assert.Equal(t, defaultHistoryLimit, hist.Limit)
	})

	t.Run("typing is relayed without the sender", func(t *testing.T) {
		bobSender.reset()
		env.dispatch(t, alice, ws.ChatTyping, map[string]any{"roomId": "general", "isTyping": true}, 6)

		ack := aliceSender.lastAck()
		require.NotNil(t, ack)
		assert.Equal(t, successAck{Success: true}, ack.Data)

		relayed := bobSender.byEvent(ws.ChatTyping)
		require.Len(t, relayed, 1)
		payload := relayed[0].Data.(ws.TypingPayload)
		assert.Equal(t, "alice", payload.UserID)
		assert.True(t, payload.IsTyping)
	})

	t.Run("leave broadcasts user_left and empty room drops history", func(t *testing.T) {
		bobSender.reset()
		env.dispatch(t, alice, ws.ChatLeave, roomRequest{RoomID: "general"}, 7)
		ack := aliceSender.lastAck()
		require.NotNil(t, ack)
		assert.Equal(t, leaveChatAck{Success: true, RoomID: "general"}, ack.Data)

		left := bobSender.byEvent(ws.ChatUserLeft)
		require.Len(t, left, 1)
		assert.Equal(t, "alice", left[0].Data.(ws.UserLeftPayload).UserID)

		env.dispatch(t, bob, ws.ChatLeave, roomRequest{RoomID: "general"}, 8)
		assert.Contains(t, env.pub.recorded(), "emptied:general:1")

		// Rejoin sees a fresh room.
		env.dispatch(t, bob, ws.ChatJoin, joinChatRequest{RoomID: "general"}, 9)
		env.dispatch(t, bob, ws.ChatHistory, historyRequest{RoomID: "general"}, 10)
		hist := bobSender.lastAck().Data.(historyAck)
		assert.Zero(t, hist.Total)
		assert.Empty(t, hist.Messages)
	})

	t.Run("leaving a room you are not in still acks", func(t *testing.T) {
		env.dispatch(t, alice, ws.ChatLeave, roomRequest{RoomID: "nowhere"}, 11)
		ack := aliceSender.lastAck()
		require.NotNil(t, ack)
		assert.Equal(t, leaveChatAck{Success: true, RoomID: "nowhere"}, ack.Data)
	})
}

func TestGatewayRoomDirectoryFlow(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})

	alice, aliceSender := env.connect(t, "c1", "alice")
	bob, bobSender := env.connect(t, "c2", "bob")

	var roomID string

	t.Run("create and join by id", func(t *testing.T) {
		env.dispatch(t, alice, ws.RoomCreate, createRoomRequest{Name: "design", Capacity: 1}, 1)
		ack := aliceSender.lastAck()
		require.NotNil(t, ack)
		created := ack.Data.(createRoomAck)
		require.True(t, created.Success)
		require.NotNil(t, created.Room)
		roomID = created.Room.ID
		assert.Equal(t, "alice", created.Room.CreatedBy)
		assert.Contains(t, env.pub.recorded(), "created:design")

		env.dispatch(t, alice, ws.RoomJoin, roomRequest{RoomID: roomID}, 2)
		joined := aliceSender.lastAck().Data.(joinChatAck)
		assert.True(t, joined.Success)
		assert.Equal(t, 1, joined.Participants)
	})

	t.Run("join past capacity is rejected and audited", func(t *testing.T) {
		env.dispatch(t, bob, ws.RoomJoin, roomRequest{RoomID: roomID}, 3)
		ack := bobSender.lastAck()
		require.NotNil(t, ack)
		payload := ack.Data.(ws.ErrorPayload)
		assert.Equal(t, "room is full", payload.Error)
		assert.Equal(t, CodeCapacity, payload.Code)
		assert.Contains(t, env.pub.recorded(), "rejected:"+roomID+":bob:1")
	})

	t.Run("joining an unknown directory room fails", func(t *testing.T) {
		env.dispatch(t, bob, ws.RoomJoin, roomRequest{RoomID: "missing"}, 4)
		payload := bobSender.lastAck().Data.(ws.ErrorPayload)
		assert.Equal(t, "room not found", payload.Error)
		assert.Equal(t, CodeInvalidInput, payload.Code)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		env.dispatch(t, bob, ws.RoomCreate, createRoomRequest{Name: "Design"}, 5)
		payload := bobSender.lastAck().Data.(ws.ErrorPayload)
		assert.Equal(t, "room already exists", payload.Error)
		assert.Equal(t, CodeInvalidInput, payload.Code)
	})

	t.Run("list shows public rooms with occupancy", func(t *testing.T) {
		env.dispatch(t, bob, ws.RoomCreate, createRoomRequest{Name: "secret", Visibility: "private"}, 6)
		require.True(t, bobSender.lastAck().Data.(createRoomAck).Success)

		env.dispatch(t, bob, ws.RoomList, nil, 7)
		listAck := bobSender.lastAck().Data.(roomListAck)
		assert.True(t, listAck.Success)
		assert.Equal(t, 1, listAck.Total)
		require.Len(t, listAck.Rooms, 1)
		assert.Equal(t, "design", listAck.Rooms[0].Name)
		assert.Equal(t, 1, listAck.Rooms[0].MemberCount)
	})

	t.Run("info works for private rooms too", func(t *testing.T) {
		env.dispatch(t, bob, ws.RoomInfo, roomRequest{RoomID: roomID}, 8)
		info := bobSender.lastAck().Data.(roomInfoAck)
		assert.True(t, info.Success)
		assert.Equal(t, "design", info.Room.Name)
		assert.Equal(t, 1, info.Room.MemberCount)
	})

	t.Run("invalid metadata is a validation error", func(t *testing.T) {
		env.dispatch(t, bob, ws.RoomCreate, createRoomRequest{Name: ""}, 9)
		payload := bobSender.lastAck().Data.(ws.ErrorPayload)
		assert.Equal(t, CodeValidation, payload.Code)
	})
}

func TestGatewayNotificationFlow(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})

	alice, aliceSender := env.connect(t, "c1", "alice")
	hub := env.g.hub

	t.Run("subscribe then receive", func(t *testing.T) {
		env.dispatch(t, alice, ws.NotificationSubscribe, subscribeRequest{Topics: []string{"deploys"}}, 1)
		ack := aliceSender.lastAck()
		require.NotNil(t, ack)
		sub := ack.Data.(subscribeAck)
		assert.True(t, sub.Success)
		assert.Equal(t, []string{"deploys"}, sub.Topics)

		n, err := domain.NewNotification("deploys", "v2 shipped", "all green", nil)
		require.NoError(t, err)
		delivered := hub.Publish(n)
		assert.Equal(t, 1, delivered)

		frames := aliceSender.byEvent(ws.NotificationNew)
		require.Len(t, frames, 1)
		payload := frames[0].Data.(ws.NotificationPayload)
		assert.Equal(t, "v2 shipped", payload.Notification.Title)
		assert.Equal(t, 1, payload.Unread)
	})

	t.Run("mark read clears the badge", func(t *testing.T) {
		frames := aliceSender.byEvent(ws.NotificationNew)
		require.Len(t, frames, 1)
		id := frames[0].Data.(ws.NotificationPayload).Notification.ID

		env.dispatch(t, alice, ws.NotificationMarkRead, markReadRequest{IDs: []string{id, "bogus"}}, 2)
		ack := aliceSender.lastAck().Data.(markReadAck)
		assert.True(t, ack.Success)
		assert.Equal(t, 1, ack.Cleared)
		assert.Zero(t, hub.Unread("c1"))
	})

	t.Run("invalid topic rejects the whole call", func(t *testing.T) {
		env.dispatch(t, alice, ws.NotificationSubscribe, subscribeRequest{Topics: []string{"ok", ""}}, 3)
		payload := aliceSender.lastAck().Data.(ws.ErrorPayload)
		assert.Equal(t, CodeValidation, payload.Code)
		assert.Equal(t, []string{"deploys"}, hub.Topics("c1"))
	})

	t.Run("unsubscribe drops the topic", func(t *testing.T) {
		env.dispatch(t, alice, ws.NotificationUnsubscribe, subscribeRequest{Topics: []string{"deploys"}}, 4)
		sub := aliceSender.lastAck().Data.(subscribeAck)
		assert.True(t, sub.Success)
		assert.Empty(t, sub.Topics)

		n, err := domain.NewNotification("deploys", "again", "", nil)
		require.NoError(t, err)
		assert.Zero(t, hub.Publish(n))
	})
}

func TestGatewayUserStatus(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})

	alice, aliceSender := env.connect(t, "c1", "alice")
	_, bobSender := env.connect(t, "c2", "bob")
	bobSender.reset()

	t.Run("valid status broadcasts to others", func(t *testing.T) {
		env.dispatch(t, alice, ws.UserStatus, statusRequest{Status: "away"}, 1)
		assert.Equal(t, successAck{Success: true}, aliceSender.lastAck().Data)
		assert.Equal(t, domain.StatusAway, alice.Status())

		frames := bobSender.byEvent(ws.UserStatusChange)
		require.Len(t, frames, 1)
		payload := frames[0].Data.(ws.StatusChangePayload)
		assert.Equal(t, "alice", payload.UserID)
		assert.Equal(t, "away", payload.Status)

		assert.Empty(t, aliceSender.byEvent(ws.UserStatusChange))
	})

	t.Run("invalid status is rejected verbatim and not broadcast", func(t *testing.T) {
		bobSender.reset()
		env.dispatch(t, alice, ws.UserStatus, statusRequest{Status: "sleeping"}, 2)
		payload := aliceSender.lastAck().Data.(ws.ErrorPayload)
		assert.Equal(t, "Invalid status", payload.Error)
		assert.Equal(t, CodeValidation, payload.Code)
		assert.Equal(t, domain.StatusAway, alice.Status())
		assert.Empty(t, bobSender.byEvent(ws.UserStatusChange))
	})
}

func TestGatewayDisconnectCleanup(t *testing.T) {
	env := newTestGateway(t, Options{}, ratelimiter.Options{})

	alice, _ := env.connect(t, "c1", "alice")
	bob, bobSender := env.connect(t, "c2", "bob")

	env.dispatch(t, alice, ws.ChatJoin, joinChatRequest{RoomID: "general"}, 1)
	env.dispatch(t, bob, ws.ChatJoin, joinChatRequest{RoomID: "general"}, 2)
	env.dispatch(t, alice, ws.NotificationSubscribe, subscribeRequest{Topics: []string{"deploys"}}, 3)
	bobSender.reset()

	env.g.Disconnect(context.Background(), "c1")

	left := bobSender.byEvent(ws.ChatUserLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "alice", left[0].Data.(ws.UserLeftPayload).UserID)

	offline := bobSender.byEvent(ws.UserOffline)
	require.Len(t, offline, 1)
	assert.Equal(t, "alice", offline[0].Data.(ws.PresencePayload).UserID)

	assert.Empty(t, env.g.hub.Topics("c1"))
	assert.Equal(t, 1, env.g.chat.MemberCount("general"))
	assert.Contains(t, env.pub.recorded(), "left:general:alice:1")
}

func TestGatewaySweepClosesStaleConnections(t *testing.T) {
	env := newTestGateway(t, Options{StaleAfter: time.Millisecond}, ratelimiter.Options{})

	_, aliceSender := env.connect(t, "c1", "alice")

	time.Sleep(5 * time.Millisecond)
	env.g.sweep()

	// The sweep closes the sender; the transport's pump exit then
	// drives Disconnect.
	assert.True(t, aliceSender.isClosed())
}
