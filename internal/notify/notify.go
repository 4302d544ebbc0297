// Package notify carries change notifications between collections and their
// subscribers. A notification is a "something changed under this storage
// key, re-pull" signal, not a delta: subscribers are expected to reload and
// recompute whatever state they derive.
package notify

import "sync"

type subscriber struct {
	key string // empty means all keys
	fn  func(key string)
}

// Broadcaster is a process-wide publish/subscribe channel keyed by storage
// key. Delivery is synchronous on the publisher's goroutine.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscriber
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]subscriber)}
}

// Subscribe registers fn for changes to a single key and returns the
// unsubscribe function.
func (b *Broadcaster) Subscribe(key string, fn func()) func() {
	return b.add(subscriber{key: key, fn: func(string) { fn() }})
}

// SubscribeAll registers fn for changes to every key.
func (b *Broadcaster) SubscribeAll(fn func(key string)) func() {
	return b.add(subscriber{fn: fn})
}

func (b *Broadcaster) add(s subscriber) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish notifies every subscriber registered for key (or for all keys).
func (b *Broadcaster) Publish(key string) {
	b.mu.RLock()
	matched := make([]subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.key == "" || s.key == key {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matched {
		s.fn(key)
	}
}
