package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

type fakeSender struct {
	mu     sync.Mutex
	frames []*ws.OutFrame
	closed bool
	reject bool
}

func (f *fakeSender) Send(frame *ws.OutFrame) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject || f.closed {
		return false
	}
	f.frames = append(f.frames, frame)
	return true
}

func (f *fakeSender) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSender) sent() []*ws.OutFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ws.OutFrame(nil), f.frames...)
}

func addConn(t *testing.T, r *Registry, connID, userID string) (*Connection, *fakeSender) {
	t.Helper()

	sender := &fakeSender{}
	conn := NewConnection(connID, userID, sender)
	r.Add(conn)
	return conn, sender
}

func TestRegistryAddAndRemove(t *testing.T) {
	r := New()

	first := r.Add(NewConnection("c1", "alice", &fakeSender{}))
	assert.True(t, first, "first connection of a user")

	second := r.Add(NewConnection("c2", "alice", &fakeSender{}))
	assert.False(t, second, "second connection of the same user")

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 1, r.UserCount())

	_, last, ok := r.Remove("c1")
	require.True(t, ok)
	assert.False(t, last, "user still has another connection")

	_, last, ok = r.Remove("c2")
	require.True(t, ok)
	assert.True(t, last, "user went offline with the final connection")

	_, _, ok = r.Remove("c2")
	assert.False(t, ok, "double remove is a no-op")
	assert.Zero(t, r.Count())
	assert.Zero(t, r.UserCount())
}

func TestRegistryUserLookups(t *testing.T) {
	r := New()
	addConn(t, r, "c1", "alice")
	addConn(t, r, "c2", "alice")
	addConn(t, r, "c3", "bob")

	assert.True(t, r.IsUserOnline("alice"))
	assert.False(t, r.IsUserOnline("carol"))
	assert.Len(t, r.UserConnections("alice"), 2)
	assert.Empty(t, r.UserConnections("carol"))
	assert.ElementsMatch(t, []string{"alice", "bob"}, r.OnlineUsers())
}

func TestRegistryEmit(t *testing.T) {
	r := New()
	_, sender := addConn(t, r, "c1", "alice")

	ok := r.Emit("c1", ws.NewUserOnline("alice"))
	assert.True(t, ok)
	require.Len(t, sender.sent(), 1)
	assert.Equal(t, ws.UserOnline, sender.sent()[0].Event)

	assert.False(t, r.Emit("ghost", ws.NewUserOnline("alice")))
}

func TestRegistryBroadcastAllSkipsSender(t *testing.T) {
	r := New()
	_, s1 := addConn(t, r, "c1", "alice")
	_, s2 := addConn(t, r, "c2", "bob")
	_, s3 := addConn(t, r, "c3", "carol")

	sent := r.BroadcastAll(ws.NewUserOnline("alice"), "c1")

	assert.Equal(t, 2, sent)
	assert.Empty(t, s1.sent())
	assert.Len(t, s2.sent(), 1)
	assert.Len(t, s3.sent(), 1)
}

func TestRegistryBroadcastToUserHitsEveryDevice(t *testing.T) {
	r := New()
	_, s1 := addConn(t, r, "c1", "alice")
	_, s2 := addConn(t, r, "c2", "alice")
	_, s3 := addConn(t, r, "c3", "bob")

	frame := ws.NewNotification(&domain.Notification{ID: "n1", Topic: "system"}, 1)
	sent := r.BroadcastToUser("alice", frame)

	assert.Equal(t, 2, sent)
	assert.Len(t, s1.sent(), 1)
	assert.Len(t, s2.sent(), 1)
	assert.Empty(t, s3.sent())
}

func TestRegistryBroadcastCountsRejectedSends(t *testing.T) {
	r := New()
	_, healthy := addConn(t, r, "c1", "alice")

	dead := &fakeSender{reject: true}
	r.Add(NewConnection("c2", "bob", dead))

	sent := r.BroadcastAll(ws.NewUserOffline("zed"), "")

	assert.Equal(t, 1, sent)
	assert.Len(t, healthy.sent(), 1)
}

func TestConnectionStatusAndRooms(t *testing.T) {
	c := NewConnection("c1", "alice", &fakeSender{})

	assert.Equal(t, domain.StatusOnline, c.Status())

	c.SetStatus(domain.StatusAway)
	assert.Equal(t, domain.StatusAway, c.Status())

	c.JoinRoom("r1")
	c.JoinRoom("r2")
	c.JoinRoom("r1") // idempotent
	assert.ElementsMatch(t, []string{"r1", "r2"}, c.Rooms())
	assert.True(t, c.InRoom("r1"))

	c.LeaveRoom("r1")
	assert.False(t, c.InRoom("r1"))
	assert.ElementsMatch(t, []string{"r2"}, c.Rooms())
}

func TestRegistryStale(t *testing.T) {
	r := New()
	fresh, _ := addConn(t, r, "c1", "alice")
	stale, _ := addConn(t, r, "c2", "bob")

	// Force an old heartbeat
	stale.mu.Lock()
	stale.lastBeat = time.Now().Add(-5 * time.Minute)
	stale.mu.Unlock()

	got := r.Stale(time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)

	stale.Touch()
	assert.Empty(t, r.Stale(time.Minute))
	_ = fresh
}
