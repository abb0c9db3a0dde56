package session

import (
	"sync"

	"github.com/aussiebroadwan/ldapsession/pkg/idx"
)

// EventType classifies a session lifecycle event.
type EventType string

const (
	EventAdded   EventType = "added"
	EventChanged EventType = "changed"
	EventRemoved EventType = "removed"
)

// Event is delivered to subscribers when a session is added, changed, or
// removed. ID correlates the event with log lines of the operation that
// produced it.
type Event struct {
	ID     idx.ID
	Type   EventType
	Record Record
}

// Notifier is a single multicast channel of lifecycle events with
// synchronous delivery to registered listeners, in subscription order.
type Notifier struct {
	mu        sync.Mutex
	nextToken int
	listeners []listener
}

type listener struct {
	token int
	fn    func(Event)
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers fn and returns an idempotent unsubscribe function.
func (n *Notifier) Subscribe(fn func(Event)) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	token := n.nextToken
	n.nextToken++
	n.listeners = append(n.listeners, listener{token: token, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, l := range n.listeners {
			if l.token == token {
				n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers the event to every listener before returning.
func (n *Notifier) Emit(event Event) {
	n.mu.Lock()
	listeners := make([]listener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.Unlock()

	for _, l := range listeners {
		l.fn(event)
	}
}
