package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/aleister1102/meshhound/internal/models"
)

// EventBus fans discovery events out to subscribers. Delivery is
// best-effort: a subscriber whose buffer is full misses the event, and
// publishing with no subscribers is fine.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[int]chan models.DiscoveryEvent
	nextID  int
	closed  bool
	dropped atomic.Int64
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan models.DiscoveryEvent)}
}

// Subscribe returns a channel of events and a function that unsubscribes and
// closes it. Calling the function more than once is safe.
func (b *EventBus) Subscribe(buffer int) (<-chan models.DiscoveryEvent, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan models.DiscoveryEvent, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers ev to every subscriber that has room and returns how
// many received it. It never blocks.
func (b *EventBus) Publish(ev models.DiscoveryEvent) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- ev:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Dropped counts deliveries skipped because a subscriber was full.
func (b *EventBus) Dropped() int64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels. Later subscriptions get a closed
// channel.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
