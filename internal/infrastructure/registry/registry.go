// package registry tracks live connections, which user owns each one,
// and fans outbound frames across them.
package registry

import (
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection
	users map[string]mapset.Set[string] // userID → connection ids
}

func New() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
		users: make(map[string]mapset.Set[string]),
	}
}

// Add registers a connection and reports whether it is the user's
// first live one.
func (r *Registry) Add(c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.ID] = c

	set, ok := r.users[c.UserID]
	if !ok {
		set = mapset.NewSet[string]()
		r.users[c.UserID] = set
	}
	set.Add(c.ID)

	return set.Cardinality() == 1
}

// Remove drops a connection and reports whether it was the user's last
// one, which is when the user actually goes offline.
func (r *Registry) Remove(connID string) (*Connection, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connID]
	if !ok {
		return nil, false, false
	}
	delete(r.conns, connID)

	lastOfUser := false
	if set, ok := r.users[c.UserID]; ok {
		set.Remove(connID)
		if set.Cardinality() == 0 {
			delete(r.users, c.UserID)
			lastOfUser = true
		}
	}

	return c, lastOfUser, true
}

func (r *Registry) Get(connID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[connID]
	return c, ok
}

func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

func (r *Registry) UserConnections(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.users[userID]
	if !ok {
		return nil
	}

	out := make([]*Connection, 0, set.Cardinality())
	for _, id := range set.ToSlice() {
		if c, ok := r.conns[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) IsUserOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.users[userID]
	return ok && set.Cardinality() > 0
}

func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.users))
	for userID := range r.users {
		out = append(out, userID)
	}
	return out
}

// Emit delivers one frame to one connection.
func (r *Registry) Emit(connID string, frame *ws.OutFrame) bool {
	c, ok := r.Get(connID)
	if !ok {
		return false
	}
	return c.Send(frame)
}

// BroadcastAll sends to every connection except the given one and
// returns how many sends were accepted.
func (r *Registry) BroadcastAll(frame *ws.OutFrame, except string) int {
	sent := 0
	for _, c := range r.All() {
		if c.ID == except {
			continue
		}
		if c.Send(frame) {
			sent++
		}
	}
	return sent
}

// BroadcastToUser sends to every connection the user holds.
func (r *Registry) BroadcastToUser(userID string, frame *ws.OutFrame) int {
	sent := 0
	for _, c := range r.UserConnections(userID) {
		if c.Send(frame) {
			sent++
		}
	}
	return sent
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Stale returns connections whose last heartbeat is older than the
// cutoff, for the housekeeping sweep to close.
func (r *Registry) Stale(olderThan time.Duration) []*Connection {
	cutoff := time.Now().Add(-olderThan)

	var out []*Connection
	for _, c := range r.All() {
		if c.LastBeat().Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}
