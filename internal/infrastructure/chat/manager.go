// package chat owns live room state: who is in each room, the bounded
// message history, and the relays that keep members in sync.
package chat

import (
	"errors"
	"strings"
	"sync"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

var ErrNotInRoom = errors.New("not in room")

// Broadcaster delivers a frame to one connection. The registry
// satisfies this.
type Broadcaster interface {
	Emit(connID string, frame *ws.OutFrame) bool
}

// Filter rewrites message bodies before they are stored or relayed.
type Filter interface {
	Clean(s string) string
}

type Options struct {
	HistoryCapacity int
	Filter          Filter // optional
}

type room struct {
	mu      sync.Mutex
	members map[string]string // connID → userID
	history *History
}

// Manager tracks room membership and history. Rooms come into being on
// first join and are garbage collected, history included, when the
// last member leaves.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*room

	emit Broadcaster
	log  logging.Logger
	opts Options
}

func NewManager(emit Broadcaster, log logging.Logger, opts Options) *Manager {
	if opts.HistoryCapacity <= 0 {
		opts.HistoryCapacity = 100
	}

	return &Manager{
		rooms: make(map[string]*room),
		emit:  emit,
		log:   log,
		opts:  opts,
	}
}

func (m *Manager) getOrCreate(roomID string) *room {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.rooms[roomID]
	if !ok {
		rm = &room{
			members: make(map[string]string),
			history: NewHistory(m.opts.HistoryCapacity),
		}
		m.rooms[roomID] = rm
	}
	return rm
}

func (m *Manager) get(roomID string) (*room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rm, ok := m.rooms[roomID]
	return rm, ok
}

// Join adds the connection to the room, creating it on first use, and
// tells the other members. Re-joining is idempotent: no duplicate
// broadcast, no double count.
func (m *Manager) Join(connID, userID, roomID string) (int, error) {
	if strings.TrimSpace(roomID) == "" {
		return 0, domain.ErrInvalidRoom
	}

	rm := m.getOrCreate(roomID)

	rm.mu.Lock()
	if _, already := rm.members[connID]; already {
		participants := len(rm.members)
		rm.mu.Unlock()
		return participants, nil
	}

	rm.members[connID] = userID
	participants := len(rm.members)
	others := rm.otherMembersLocked(connID)
	rm.mu.Unlock()

	m.fanOut(others, ws.NewUserJoined(roomID, userID, participants))

	m.log.Debug(logging.Socket, logging.Broadcast, "member joined room", map[logging.ExtraKey]any{
		logging.ConnectionID: connID,
		logging.UserID:       userID,
		logging.RoomID:       roomID,
	})

	return participants, nil
}

type LeaveResult struct {
	Removed         bool
	Remaining       int
	Emptied         bool
	MessagesDropped int
}

// Leave removes the connection from the room. Leaving a room you are
// not in is a no-op. The last member out takes the room and its
// history with them.
func (m *Manager) Leave(connID, userID, roomID string) LeaveResult {
	rm, ok := m.get(roomID)
	if !ok {
		return LeaveResult{}
	}

	rm.mu.Lock()
	if _, member := rm.members[connID]; !member {
		rm.mu.Unlock()
		return LeaveResult{}
	}

	delete(rm.members, connID)
	remaining := len(rm.members)
	others := rm.otherMembersLocked(connID)
	dropped := rm.history.Len()
	rm.mu.Unlock()

	result := LeaveResult{Removed: true, Remaining: remaining}

	if remaining == 0 {
		m.mu.Lock()
		// Re-check under the map lock; someone may have joined since
		if cur, ok := m.rooms[roomID]; ok {
			cur.mu.Lock()
			if len(cur.members) == 0 {
				delete(m.rooms, roomID)
				result.Emptied = true
				result.MessagesDropped = dropped
			}
			cur.mu.Unlock()
		}
		m.mu.Unlock()

		if result.Emptied {
			m.log.Debug(logging.Socket, logging.Housekeeping, "empty room collected", map[logging.ExtraKey]any{
				logging.RoomID: roomID,
			})
		}
	} else {
		m.fanOut(others, ws.NewUserLeft(roomID, userID))
	}

	return result
}

// Send validates, stores, and relays a chat message to the other
// members. The sender is not echoed to; the caller returns the message
// in the ack instead.
func (m *Manager) Send(connID, userID, roomID, body string, kind domain.MessageKind) (*domain.Message, error) {
	rm, ok := m.get(roomID)
	if !ok {
		return nil, ErrNotInRoom
	}

	rm.mu.Lock()
	if _, member := rm.members[connID]; !member {
		rm.mu.Unlock()
		return nil, ErrNotInRoom
	}
	rm.mu.Unlock()

	if m.opts.Filter != nil {
		body = m.opts.Filter.Clean(body)
	}

	msg, err := domain.NewMessage(roomID, userID, body, kind)
	if err != nil {
		return nil, err
	}

	rm.mu.Lock()
	// Membership may have raced away between the check and the append
	if _, member := rm.members[connID]; !member {
		rm.mu.Unlock()
		return nil, ErrNotInRoom
	}
	rm.history.Append(*msg)
	others := rm.otherMembersLocked(connID)
	rm.mu.Unlock()

	m.fanOut(others, ws.NewChatMessage(msg))

	return msg, nil
}

// Typing relays a typing indicator to the other members. Nothing is
// recorded.
func (m *Manager) Typing(connID, userID, roomID string, isTyping bool) error {
	rm, ok := m.get(roomID)
	if !ok {
		return ErrNotInRoom
	}

	rm.mu.Lock()
	if _, member := rm.members[connID]; !member {
		rm.mu.Unlock()
		return ErrNotInRoom
	}
	others := rm.otherMembersLocked(connID)
	rm.mu.Unlock()

	m.fanOut(others, ws.NewTyping(roomID, userID, isTyping))
	return nil
}

// History pages through the room's buffered messages. Unknown rooms
// yield an empty page, and total is the live buffer length.
func (m *Manager) History(roomID string, limit, offset int) ([]domain.Message, int) {
	rm, ok := m.get(roomID)
	if !ok {
		return []domain.Message{}, 0
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.history.Recent(limit, offset), rm.history.Len()
}

// MemberCount reports live connections in the room.
func (m *Manager) MemberCount(roomID string) int {
	rm, ok := m.get(roomID)
	if !ok {
		return 0
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.members)
}

// Members lists the distinct user ids present in the room.
func (m *Manager) Members(roomID string) []string {
	rm, ok := m.get(roomID)
	if !ok {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	seen := make(map[string]bool, len(rm.members))
	out := make([]string, 0, len(rm.members))
	for _, userID := range rm.members {
		if !seen[userID] {
			seen[userID] = true
			out = append(out, userID)
		}
	}
	return out
}

func (m *Manager) IsMember(connID, roomID string) bool {
	rm, ok := m.get(roomID)
	if !ok {
		return false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	_, member := rm.members[connID]
	return member
}

func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

func (m *Manager) RoomIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		out = append(out, id)
	}
	return out
}

// otherMembersLocked snapshots every member connection except the
// given one. Caller holds the room lock.
func (r *room) otherMembersLocked(except string) []string {
	out := make([]string, 0, len(r.members))
	for connID := range r.members {
		if connID != except {
			out = append(out, connID)
		}
	}
	return out
}

func (m *Manager) fanOut(connIDs []string, frame *ws.OutFrame) {
	for _, connID := range connIDs {
		m.emit.Emit(connID, frame)
	}
}
