package registry

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

// Connection is one registered socket: identity, presence state, and
// the transport to reach it. A user may hold many of these at once.
type Connection struct {
	ID     string
	UserID string

	sender ws.Sender
	rooms  mapset.Set[string]

	mu       sync.RWMutex
	status   domain.Status
	lastBeat time.Time
}

func NewConnection(id, userID string, sender ws.Sender) *Connection {
	return &Connection{
		ID:       id,
		UserID:   userID,
		sender:   sender,
		rooms:    mapset.NewSet[string](),
		status:   domain.StatusOnline,
		lastBeat: time.Now(),
	}
}

func (c *Connection) Send(frame *ws.OutFrame) bool {
	return c.sender.Send(frame)
}

func (c *Connection) Close() {
	c.sender.Close()
}

func (c *Connection) Status() domain.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Connection) SetStatus(status domain.Status) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// Touch records a heartbeat.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastBeat = time.Now()
	c.mu.Unlock()
}

func (c *Connection) LastBeat() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastBeat
}

func (c *Connection) JoinRoom(roomID string) {
	c.rooms.Add(roomID)
}

func (c *Connection) LeaveRoom(roomID string) {
	c.rooms.Remove(roomID)
}

func (c *Connection) InRoom(roomID string) bool {
	return c.rooms.Contains(roomID)
}

// Rooms snapshots the rooms this connection has joined.
func (c *Connection) Rooms() []string {
	return c.rooms.ToSlice()
}
