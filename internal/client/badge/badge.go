// Package badge keeps every UI surface showing the same cart item count.
// It is a pull-on-signal publish mechanism: the cart controller pushes a
// fresh count after each completed operation, and any number of views
// subscribe to repaint. There is no real-time channel behind it.
package badge

import "sync"

// Hub fans the current cart item count out to subscribers.
type Hub struct {
	mu    sync.Mutex
	subs  map[int]func(int)
	next  int
	count int
}

// NewHub returns an empty hub with a count of zero.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(int))}
}

// Subscribe registers fn and immediately calls it with the current count so
// a late-mounting view paints without waiting for the next signal. The
// returned function removes the subscription.
func (h *Hub) Subscribe(fn func(count int)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	count := h.count
	h.mu.Unlock()

	fn(count)

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish records the new count and notifies all subscribers.
func (h *Hub) Publish(count int) {
	h.mu.Lock()
	h.count = count
	fns := make([]func(int), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(count)
	}
}

// Count returns the last published count.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
