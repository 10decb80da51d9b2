// package notifications fans published notifications out to whichever
// connections are subscribed to the topic at publish time. Nothing is
// stored for absent subscribers; unread state lives and dies with the
// connection.
package notifications

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/logging"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

// Broadcaster delivers a frame to one connection. The registry
// satisfies this.
type Broadcaster interface {
	Emit(connID string, frame *ws.OutFrame) bool
}

type subscriber struct {
	topics mapset.Set[string]
	unread map[string]string // notification id → topic
	counts map[string]int    // topic → outstanding unread
}

func newSubscriber() *subscriber {
	return &subscriber{
		topics: mapset.NewSet[string](),
		unread: make(map[string]string),
		counts: make(map[string]int),
	}
}

func (s *subscriber) totalUnread() int {
	return len(s.unread)
}

func (s *subscriber) dropTopic(topic string) {
	s.topics.Remove(topic)
	delete(s.counts, topic)
	for id, t := range s.unread {
		if t == topic {
			delete(s.unread, id)
		}
	}
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber        // connID → subscription state
	topics map[string]mapset.Set[string] // topic → connIDs

	emit Broadcaster
	log  logging.Logger
}

func NewHub(emit Broadcaster, log logging.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]*subscriber),
		topics: make(map[string]mapset.Set[string]),
		emit:   emit,
		log:    log,
	}
}

// Subscribe adds the connection to each topic and returns the ones it
// was not already on. Any invalid topic name fails the whole call.
func (h *Hub) Subscribe(connID string, topicNames []string) ([]string, error) {
	for _, topic := range topicNames {
		if err := domain.ValidateTopic(topic); err != nil {
			return nil, domain.ErrInvalidTopic
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[connID]
	if !ok {
		sub = newSubscriber()
		h.subs[connID] = sub
	}

	added := make([]string, 0, len(topicNames))
	for _, topic := range topicNames {
		if sub.topics.Contains(topic) {
			continue
		}
		sub.topics.Add(topic)

		set, ok := h.topics[topic]
		if !ok {
			set = mapset.NewSet[string]()
			h.topics[topic] = set
		}
		set.Add(connID)
		added = append(added, topic)
	}

	return added, nil
}

// Unsubscribe removes the connection from each topic, discarding that
// topic's unread entries. Unknown topics are ignored.
func (h *Hub) Unsubscribe(connID string, topicNames []string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[connID]
	if !ok {
		return nil
	}

	removed := make([]string, 0, len(topicNames))
	for _, topic := range topicNames {
		if !sub.topics.Contains(topic) {
			continue
		}
		sub.dropTopic(topic)
		h.detachLocked(connID, topic)
		removed = append(removed, topic)
	}

	if sub.topics.Cardinality() == 0 {
		delete(h.subs, connID)
	}

	return removed
}

// MarkRead clears the given notification ids and returns how many were
// actually outstanding.
func (h *Hub) MarkRead(connID string, ids []string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[connID]
	if !ok {
		return 0
	}

	cleared := 0
	for _, id := range ids {
		topic, outstanding := sub.unread[id]
		if !outstanding {
			continue
		}
		delete(sub.unread, id)
		if sub.counts[topic] > 0 {
			sub.counts[topic]--
		}
		cleared++
	}

	return cleared
}

// Publish delivers the notification to every current subscriber of its
// topic and returns how many sends were accepted. Delivery is
// best-effort; a dead connection just misses out.
func (h *Hub) Publish(n *domain.Notification) int {
	h.mu.Lock()
	set, ok := h.topics[n.Topic]
	if !ok || set.Cardinality() == 0 {
		h.mu.Unlock()
		return 0
	}

	type target struct {
		connID string
		unread int
	}
	targets := make([]target, 0, set.Cardinality())
	for _, connID := range set.ToSlice() {
		sub, ok := h.subs[connID]
		if !ok {
			continue
		}
		sub.unread[n.ID] = n.Topic
		sub.counts[n.Topic]++
		targets = append(targets, target{connID: connID, unread: sub.totalUnread()})
	}
	h.mu.Unlock()

	delivered := 0
	for _, tg := range targets {
		if h.emit.Emit(tg.connID, ws.NewNotification(n, tg.unread)) {
			delivered++
		}
	}

	h.log.Debug(logging.Socket, logging.Broadcast, "notification published", map[logging.ExtraKey]any{
		logging.Topic: n.Topic,
	})

	return delivered
}

// RemoveConnection discards every subscription and unread entry the
// connection held.
func (h *Hub) RemoveConnection(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[connID]
	if !ok {
		return
	}

	for _, topic := range sub.topics.ToSlice() {
		h.detachLocked(connID, topic)
	}
	delete(h.subs, connID)
}

func (h *Hub) detachLocked(connID, topic string) {
	if set, ok := h.topics[topic]; ok {
		set.Remove(connID)
		if set.Cardinality() == 0 {
			delete(h.topics, topic)
		}
	}
}

func (h *Hub) Topics(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sub, ok := h.subs[connID]
	if !ok {
		return nil
	}
	return sub.topics.ToSlice()
}

// Unread reports the connection's total outstanding notifications.
func (h *Hub) Unread(connID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sub, ok := h.subs[connID]
	if !ok {
		return 0
	}
	return sub.totalUnread()
}

func (h *Hub) UnreadByTopic(connID string) map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sub, ok := h.subs[connID]
	if !ok {
		return map[string]int{}
	}

	out := make(map[string]int, len(sub.counts))
	for topic, count := range sub.counts {
		if count > 0 {
			out[topic] = count
		}
	}
	return out
}

func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set, ok := h.topics[topic]
	if !ok {
		return 0
	}
	return set.Cardinality()
}

func (h *Hub) TopicCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics)
}
