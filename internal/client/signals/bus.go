// Package signals is the in-process broadcast bus that decouples the
// realtime channel from the screens refreshing on its events. Subscribers
// register under fixed signal names and get the raw event payload.
package signals

import "sync"

// Signal names published by the realtime channel.
const (
	OrdersChanged        = "orders.changed"
	PaymentsChanged      = "payments.changed"
	DefectsChanged       = "defects.changed"
	NotificationsChanged = "notifications.changed"
	RealtimeOffline      = "realtime.offline"
)

// Handler receives the payload published under a signal name.
type Handler func(payload map[string]any)

// Bus is a mutex-guarded subscriber registry. Publish calls handlers
// synchronously in subscription order.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscription
}

type subscription struct {
	id int
	fn Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers fn under name and returns a function that removes
// the subscription. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(name string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[name]
		for i, s := range list {
			if s.id == id {
				b.subs[name] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to every handler subscribed under name.
// Unknown names have no subscribers and are a no-op.
func (b *Bus) Publish(name string, payload map[string]any) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[name]))
	for _, s := range b.subs[name] {
		handlers = append(handlers, s.fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(payload)
	}
}
