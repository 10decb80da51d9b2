package chat

import "github.com/herald-chat/herald/internal/domain"

// History is a fixed-capacity ring of messages: appending past capacity
// overwrites the oldest entry. Not safe for concurrent use on its own;
// the manager guards each room's history with the room lock.
type History struct {
	buf   []domain.Message
	start int
	count int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{buf: make([]domain.Message, capacity)}
}

func (h *History) Append(m domain.Message) {
	if h.count < len(h.buf) {
		h.buf[(h.start+h.count)%len(h.buf)] = m
		h.count++
		return
	}

	// Full: evict the oldest
	h.buf[h.start] = m
	h.start = (h.start + 1) % len(h.buf)
}

func (h *History) Len() int {
	return h.count
}

func (h *History) Cap() int {
	return len(h.buf)
}

// Recent returns up to limit messages in chronological order, after
// skipping the newest offset entries. An offset past the buffer yields
// an empty slice.
func (h *History) Recent(limit, offset int) []domain.Message {
	if limit <= 0 || offset < 0 || offset >= h.count {
		return []domain.Message{}
	}

	end := h.count - offset
	first := end - limit
	if first < 0 {
		first = 0
	}

	out := make([]domain.Message, 0, end-first)
	for i := first; i < end; i++ {
		out = append(out, h.buf[(h.start+i)%len(h.buf)])
	}
	return out
}
