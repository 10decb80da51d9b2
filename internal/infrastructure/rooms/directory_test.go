package rooms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-chat/herald/internal/domain"
)

type stubCounter map[string]int

func (s stubCounter) MemberCount(roomID string) int { return s[roomID] }

func mustRoom(t *testing.T, name string, capacity int, vis domain.Visibility) *domain.Room {
	t.Helper()

	room, err := domain.NewRoom(name, "", "tester", capacity, vis)
	require.NoError(t, err)
	return room
}

func TestDirectoryCreate(t *testing.T) {
	d := NewDirectory(stubCounter{}, 10, 0)

	room := mustRoom(t, "general", 0, domain.VisibilityPublic)
	require.NoError(t, d.Create(room))

	t.Run("duplicate id is rejected", func(t *testing.T) {
		assert.ErrorIs(t, d.Create(room), domain.ErrRoomExists)
	})

	t.Run("names are unique case-insensitively", func(t *testing.T) {
		clash := mustRoom(t, "General", 0, domain.VisibilityPublic)
		assert.ErrorIs(t, d.Create(clash), domain.ErrRoomExists)
	})

	t.Run("nil and incomplete rooms are rejected", func(t *testing.T) {
		assert.ErrorIs(t, d.Create(nil), domain.ErrInvalidInput)
		assert.ErrorIs(t, d.Create(&domain.Room{Name: "x"}), domain.ErrInvalidInput)
	})
}

func TestDirectoryLookups(t *testing.T) {
	d := NewDirectory(stubCounter{}, 10, 0)
	room := mustRoom(t, "general", 0, domain.VisibilityPublic)
	require.NoError(t, d.Create(room))

	got, err := d.Get(room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)

	got, err = d.GetByName("GENERAL")
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)

	_, err = d.Get("nope")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	_, err = d.Get("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDirectoryCheckJoin(t *testing.T) {
	counter := stubCounter{}
	d := NewDirectory(counter, 10, 0)

	limited := mustRoom(t, "standup", 2, domain.VisibilityPublic)
	unlimited := mustRoom(t, "lobby", 0, domain.VisibilityPublic)
	require.NoError(t, d.Create(limited))
	require.NoError(t, d.Create(unlimited))

	t.Run("below capacity", func(t *testing.T) {
		counter[limited.ID] = 1
		_, err := d.CheckJoin(limited.ID)
		assert.NoError(t, err)
	})

	t.Run("at capacity", func(t *testing.T) {
		counter[limited.ID] = 2
		_, err := d.CheckJoin(limited.ID)
		assert.ErrorIs(t, err, domain.ErrRoomFull)
	})

	t.Run("zero capacity never fills", func(t *testing.T) {
		counter[unlimited.ID] = 5000
		_, err := d.CheckJoin(unlimited.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := d.CheckJoin("ghost")
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})
}

func TestDirectoryListShowsOnlyPublicRooms(t *testing.T) {
	counter := stubCounter{}
	d := NewDirectory(counter, 10, 0)

	pub1 := mustRoom(t, "beta", 0, domain.VisibilityPublic)
	pub2 := mustRoom(t, "alpha", 0, domain.VisibilityPublic)
	priv := mustRoom(t, "secret", 0, domain.VisibilityPrivate)
	require.NoError(t, d.Create(pub1))
	require.NoError(t, d.Create(pub2))
	require.NoError(t, d.Create(priv))

	counter[pub1.ID] = 3

	list := d.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name, "sorted by name")
	assert.Equal(t, "beta", list[1].Name)
	assert.Equal(t, 3, list[1].MemberCount)

	// Private rooms still answer room:info
	info, err := d.Info(priv.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", info.Name)
}

func TestDirectoryIdleEvictionSparesOccupiedRooms(t *testing.T) {
	counter := stubCounter{}
	d := NewDirectory(counter, 10, 50*time.Millisecond)

	idle := mustRoom(t, "idle", 0, domain.VisibilityPublic)
	busy := mustRoom(t, "busy", 0, domain.VisibilityPublic)
	require.NoError(t, d.Create(idle))
	require.NoError(t, d.Create(busy))

	counter[busy.ID] = 2

	time.Sleep(60 * time.Millisecond)

	// Eviction runs on the next write
	trigger := mustRoom(t, "trigger", 0, domain.VisibilityPublic)
	require.NoError(t, d.Create(trigger))

	_, err := d.Get(idle.ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound, "idle empty room is evicted")

	_, err = d.Get(busy.ID)
	assert.NoError(t, err, "occupied room survives")

	// The freed name can be reused
	reborn := mustRoom(t, "idle", 0, domain.VisibilityPublic)
	assert.NoError(t, d.Create(reborn))
}

func TestDirectoryCapacityEvictsOldestEmptyRooms(t *testing.T) {
	counter := stubCounter{}
	d := NewDirectory(counter, 2, 0)

	first := mustRoom(t, "first", 0, domain.VisibilityPublic)
	require.NoError(t, d.Create(first))
	time.Sleep(2 * time.Millisecond)

	second := mustRoom(t, "second", 0, domain.VisibilityPublic)
	require.NoError(t, d.Create(second))
	time.Sleep(2 * time.Millisecond)

	counter[first.ID] = 1 // someone is in the oldest room

	third := mustRoom(t, "third", 0, domain.VisibilityPublic)
	require.NoError(t, d.Create(third))

	_, err := d.Get(first.ID)
	assert.NoError(t, err, "occupied room is not evicted for capacity")

	_, err = d.Get(second.ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound, "oldest empty room makes way")

	assert.Equal(t, 2, d.Count())
}
