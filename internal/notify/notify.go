// Package notify provides change notification between the command registry,
// the key binding manager and the front-end.
//
// Observers subscribe to every change or to a single topic and receive a
// Subscription whose Unsubscribe method acts as the disposer. Delivery is
// synchronous and happens outside the notifier's lock, in subscription
// order.
package notify

import (
	"sort"
	"sync"
)

// Topic groups related changes.
type Topic string

// Topics published by this module.
const (
	TopicCommand Topic = "command"
	TopicBinding Topic = "binding"
	TopicStatus  Topic = "status"
)

// Kind describes what happened to the subject.
type Kind int

const (
	// KindAdded indicates the subject was registered or bound.
	KindAdded Kind = iota

	// KindRemoved indicates the subject was unregistered or unbound.
	KindRemoved

	// KindReload indicates a whole table was replaced.
	KindReload

	// KindMessage carries a transient status message in Detail.
	KindMessage
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	case KindReload:
		return "reload"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Change is a single notification.
type Change struct {
	Topic Topic
	Kind  Kind

	// Subject is the command name, or the key sequence for bindings.
	Subject string

	// Detail carries the bound command for bindings and the text for
	// status messages.
	Detail string

	// Source identifies the component that published the change.
	Source string
}

// Observer is called when a change is published.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
	once     sync.Once
}

// Unsubscribe removes this subscription. It is safe to call more than once
// and on a nil subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.notifier == nil {
		return
	}
	s.once.Do(func() { s.notifier.unsubscribe(s.id) })
}

type entry struct {
	topic    Topic // empty means all topics
	observer Observer
}

// Notifier manages subscriptions and delivers changes.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]entry
	nextID    uint64
	closed    bool
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{observers: make(map[uint64]entry)}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.subscribe("", observer)
}

// SubscribeTopic registers an observer for changes on one topic.
func (n *Notifier) SubscribeTopic(topic Topic, observer Observer) *Subscription {
	return n.subscribe(topic, observer)
}

func (n *Notifier) subscribe(topic Topic, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if observer != nil && !n.closed {
		n.observers[id] = entry{topic: topic, observer: observer}
	}
	return &Subscription{id: id, notifier: n}
}

// Notify delivers a change to matching observers.
func (n *Notifier) Notify(change Change) {
	if n == nil {
		return
	}

	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	ids := make([]uint64, 0, len(n.observers))
	for id, e := range n.observers {
		if e.topic == "" || e.topic == change.Topic {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id].observer
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

// Status publishes a transient status message. An empty message clears
// the status line.
func (n *Notifier) Status(source, message string) {
	n.Notify(Change{Topic: TopicStatus, Kind: KindMessage, Detail: message, Source: source})
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Close drops every subscription; later notifications are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.observers = make(map[uint64]entry)
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}
