package events

import "sync"

// Bus fans a feed-changed signal out to any number of subscribers. Slow
// subscribers coalesce signals rather than blocking the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan struct{}]struct{})}
}

func (b *Bus) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a signal channel and a cancel func that must be called
// when the subscriber goes away.
func (b *Bus) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}
