// package rooms is the directory of room metadata: names, capacity,
// visibility. Live occupancy belongs to the chat manager; the
// directory only asks for it through MemberCounter.
package rooms

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/herald-chat/herald/internal/domain"
)

// MemberCounter reports live connections in a room.
type MemberCounter interface {
	MemberCount(roomID string) int
}

// Summary is a directory entry with its live occupancy, the shape
// room:list and room:info answer with.
type Summary struct {
	domain.Room
	MemberCount int `json:"memberCount"`
}

type Directory struct {
	rooms      map[string]*domain.Room // ID → Room
	nameIndex  map[string]*domain.Room // lowercased name → Room
	lastAccess map[string]time.Time    // ID → last access time
	capacity   uint
	idleExpiry time.Duration // 0 disables idle eviction
	counter    MemberCounter
	mu         *sync.RWMutex
}

func NewDirectory(counter MemberCounter, capacity uint, idleExpiry time.Duration) *Directory {
	if capacity == 0 {
		capacity = 1000
	}

	return &Directory{
		rooms:      make(map[string]*domain.Room),
		nameIndex:  make(map[string]*domain.Room),
		lastAccess: make(map[string]time.Time),
		capacity:   capacity,
		idleExpiry: idleExpiry,
		counter:    counter,
		mu:         &sync.RWMutex{},
	}
}

func (d *Directory) touch(roomID string) {
	d.lastAccess[roomID] = time.Now()
}

// evictIdle drops stale entries, but never a room somebody is still in.
func (d *Directory) evictIdle() {
	if d.idleExpiry <= 0 {
		return
	}

	cutoff := time.Now().Add(-d.idleExpiry)
	for id, last := range d.lastAccess {
		if !last.Before(cutoff) {
			continue
		}
		if d.counter != nil && d.counter.MemberCount(id) > 0 {
			continue
		}
		if room, exists := d.rooms[id]; exists {
			delete(d.nameIndex, nameKey(room.Name))
		}
		delete(d.rooms, id)
		delete(d.lastAccess, id)
	}
}

// enforceCapacity frees space for one incoming room by removing the
// oldest-accessed empty entries. Occupied rooms are never evicted, so
// the cap is soft when everything is in use.
func (d *Directory) enforceCapacity() {
	if uint(len(d.rooms)) < d.capacity {
		return
	}

	type entry struct {
		id   string
		time time.Time
	}
	var entries []entry
	for id, t := range d.lastAccess {
		if d.counter != nil && d.counter.MemberCount(id) > 0 {
			continue
		}
		entries = append(entries, entry{id, t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].time.Before(entries[j].time) })

	excess := len(d.rooms) - int(d.capacity) + 1
	for i := 0; i < excess && i < len(entries); i++ {
		oldest := entries[i]
		if room, exists := d.rooms[oldest.id]; exists {
			delete(d.nameIndex, nameKey(room.Name))
		}
		delete(d.rooms, oldest.id)
		delete(d.lastAccess, oldest.id)
	}
}

// Create registers a room if its name is still free.
func (d *Directory) Create(room *domain.Room) error {
	if room == nil || room.ID == "" || room.Name == "" {
		return domain.ErrInvalidInput
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.evictIdle()

	if _, exists := d.rooms[room.ID]; exists {
		return domain.ErrRoomExists
	}
	if _, exists := d.nameIndex[nameKey(room.Name)]; exists {
		return domain.ErrRoomExists
	}

	d.enforceCapacity()

	d.rooms[room.ID] = room
	d.nameIndex[nameKey(room.Name)] = room
	d.touch(room.ID)

	return nil
}

// Get returns a room and refreshes its access time.
func (d *Directory) Get(id string) (*domain.Room, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	d.mu.RLock()
	room, exists := d.rooms[id]
	d.mu.RUnlock()
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	d.mu.Lock()
	d.touch(id)
	d.mu.Unlock()

	return room, nil
}

func (d *Directory) GetByName(name string) (*domain.Room, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	d.mu.RLock()
	room, exists := d.nameIndex[nameKey(name)]
	d.mu.RUnlock()
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	d.mu.Lock()
	d.touch(room.ID)
	d.mu.Unlock()

	return room, nil
}

// CheckJoin gates a join against the room's capacity given its live
// occupancy.
func (d *Directory) CheckJoin(id string) (*domain.Room, error) {
	room, err := d.Get(id)
	if err != nil {
		return nil, err
	}

	current := 0
	if d.counter != nil {
		current = d.counter.MemberCount(id)
	}
	if !room.HasCapacityFor(current) {
		return room, domain.ErrRoomFull
	}

	return room, nil
}

// List returns public rooms with their occupancy, sorted by name.
func (d *Directory) List() []Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Summary, 0, len(d.rooms))
	for _, room := range d.rooms {
		if room.Visibility != domain.VisibilityPublic {
			continue
		}
		out = append(out, d.summarize(room))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Info returns one room with its occupancy, any visibility.
func (d *Directory) Info(id string) (Summary, error) {
	room, err := d.Get(id)
	if err != nil {
		return Summary{}, err
	}
	return d.summarize(room), nil
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

func (d *Directory) summarize(room *domain.Room) Summary {
	count := 0
	if d.counter != nil {
		count = d.counter.MemberCount(room.ID)
	}
	return Summary{Room: *room, MemberCount: count}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
