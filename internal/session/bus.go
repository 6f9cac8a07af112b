package session

import (
	"sync"
	"time"
)

// Reason explains why a session stopped being usable.
type Reason string

const (
	ReasonExpired      Reason = "expired"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonLogout       Reason = "logout"
	ReasonExternal     Reason = "external" // session file changed by another process
)

// Invalidation is published when the current session is cleared.
type Invalidation struct {
	Reason Reason
	At     time.Time
}

// Bus delivers invalidations to subscribers synchronously, in subscription
// order.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Invalidation)
	ids  []int
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Invalidation))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Invalidation)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subs[id] = fn
	b.ids = append(b.ids, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.ids {
				if v == id {
					b.ids = append(b.ids[:i], b.ids[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers ev to every current subscriber. Subscribers may call
// Subscribe or the returned unsubscribe functions without deadlocking.
func (b *Bus) Publish(ev Invalidation) {
	b.mu.Lock()
	fns := make([]func(Invalidation), 0, len(b.ids))
	for _, id := range b.ids {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
