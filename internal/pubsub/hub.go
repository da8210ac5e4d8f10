// Package pubsub fans values out to in-process subscribers such as SSE
// streams.
package pubsub

import "sync"

const defaultBuffer = 16

// Hub delivers every published value to all current subscribers. A
// subscriber whose buffer is full misses the value instead of blocking the
// publisher.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan T
	buffer int
}

func NewHub[T any]() *Hub[T] {
	return NewHubSize[T](defaultBuffer)
}

// NewHubSize is NewHub with a per-subscriber buffer of the given size.
func NewHubSize[T any](buffer int) *Hub[T] {
	if buffer < 1 {
		buffer = defaultBuffer
	}
	return &Hub[T]{
		subs:   make(map[int]chan T),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The returned cancel func closes the
// channel and is safe to call more than once.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan T, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops every subscriber.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
