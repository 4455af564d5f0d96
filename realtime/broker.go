package realtime

import (
	"log"
	"sync"
)

// ConnectionEvent announces a newly inserted connection row.
type ConnectionEvent struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
}

// Involves reports whether the event concerns the given user.
func (e ConnectionEvent) Involves(userID string) bool {
	return e.SenderID == userID || e.ReceiverID == userID
}

// Counterpart returns the other side of the event relative to userID.
func (e ConnectionEvent) Counterpart(userID string) string {
	if e.SenderID == userID {
		return e.ReceiverID
	}
	return e.SenderID
}

const subscriberBuffer = 64

// Broker fans connection insert events out to per-session subscribers.
// Publish never blocks: a subscriber that falls behind gets a lagged
// signal instead of the missed events, and is expected to recover with a
// full refetch.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]*Subscription
	nextID int
	closed bool
}

// Subscription is a cancellable handle on the broker's event stream.
// After Cancel returns no further events or lagged signals are delivered.
type Subscription struct {
	// C carries connection insert events in publish order.
	C <-chan ConnectionEvent
	// Lagged fires when the subscriber missed events due to a full buffer.
	Lagged <-chan struct{}

	id     int
	broker *Broker
	events chan ConnectionEvent
	lagged chan struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*Subscription)}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Broker) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		id:     b.nextID,
		broker: b,
		events: make(chan ConnectionEvent, subscriberBuffer),
		lagged: make(chan struct{}, 1),
	}
	sub.C = sub.events
	sub.Lagged = sub.lagged
	b.nextID++
	if !b.closed {
		b.subs[sub.id] = sub
	}
	return sub
}

// Publish delivers the event to every live subscriber.
func (b *Broker) Publish(event ConnectionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.events <- event:
		default:
			// Subscriber buffer full; signal loss instead of blocking.
			select {
			case sub.lagged <- struct{}{}:
			default:
			}
			log.Printf("realtime: subscriber %d lagged, event dropped", sub.id)
		}
	}
}

// Close drops all subscribers. Subsequent Publish calls are no-ops.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[int]*Subscription)
	b.closed = true
}

// Cancel removes the subscription from the broker. Deterministic: once it
// returns, nothing more is sent on C or Lagged.
func (s *Subscription) Cancel() {
	if s.broker == nil {
		return
	}
	s.broker.mu.Lock()
	delete(s.broker.subs, s.id)
	s.broker.mu.Unlock()
}
