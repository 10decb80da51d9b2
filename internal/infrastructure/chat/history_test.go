package chat

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-chat/herald/internal/domain"
)

func msg(id string) domain.Message {
	return domain.Message{ID: id, RoomID: "r", SenderID: "u", Body: id, Kind: domain.KindText}
}

func fill(h *History, n int) {
	for i := 1; i <= n; i++ {
		h.Append(msg("m" + strconv.Itoa(i)))
	}
}

func ids(messages []domain.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}

func TestHistoryAppendBelowCapacity(t *testing.T) {
	h := NewHistory(5)
	fill(h, 3)

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(h.Recent(10, 0)))
}

func TestHistoryEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory(3)
	fill(h, 5)

	assert.Equal(t, 3, h.Len(), "length is pinned at capacity")
	assert.Equal(t, []string{"m3", "m4", "m5"}, ids(h.Recent(10, 0)))
}

func TestHistoryRecentPagination(t *testing.T) {
	h := NewHistory(10)
	fill(h, 10)

	t.Run("newest page", func(t *testing.T) {
		assert.Equal(t, []string{"m8", "m9", "m10"}, ids(h.Recent(3, 0)))
	})

	t.Run("offset skips newest", func(t *testing.T) {
		assert.Equal(t, []string{"m6", "m7", "m8"}, ids(h.Recent(3, 2)))
	})

	t.Run("limit clamps at buffer start", func(t *testing.T) {
		assert.Equal(t, []string{"m1", "m2"}, ids(h.Recent(5, 8)))
	})

	t.Run("offset past buffer is empty", func(t *testing.T) {
		assert.Empty(t, h.Recent(3, 10))
		assert.Empty(t, h.Recent(3, 50))
	})

	t.Run("zero limit is empty", func(t *testing.T) {
		assert.Empty(t, h.Recent(0, 0))
	})
}

func TestHistoryPaginationAfterWraparound(t *testing.T) {
	h := NewHistory(4)
	fill(h, 9) // buffer now holds m6..m9 with start mid-array

	require.Equal(t, 4, h.Len())
	assert.Equal(t, []string{"m6", "m7", "m8", "m9"}, ids(h.Recent(10, 0)))
	assert.Equal(t, []string{"m7", "m8"}, ids(h.Recent(2, 1)))
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, 100, h.Cap())

	fill(h, 150)
	assert.Equal(t, 100, h.Len())
	assert.Equal(t, []string{"m51"}, ids(h.Recent(1, 99)))
}
