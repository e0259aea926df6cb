// Package events provides the in-process pub/sub bus connecting the combat
// orchestrator to its observers. Delivery is non-blocking: a subscriber that
// cannot keep up loses events rather than stalling the publisher.
package events

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Combat topic names published by the orchestrator.
const (
	TopicCombatStarted = "combat.started"
	TopicCombatUpdated = "combat.updated"
	TopicCombatEnded   = "combat.ended"
)

// FailedSuffix is appended to a topic when a handler subscription fails; the
// failure event carries the original payload.
const FailedSuffix = ".failed"

// Event is one published message.
type Event struct {
	Topic       string
	EncounterID string
	Payload     any
}

// Subscription is a registered listener. Events arrive on C in publish order
// until Unsubscribe or Close.
type Subscription struct {
	C chan Event

	topic string
	once  sync.Once
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.C) })
}

// Bus is a topic-keyed in-process event bus.
//
// Invariant: Publish never blocks; a full subscriber channel drops the event
// for that subscriber only.
type Bus struct {
	mu     sync.RWMutex
	logger *zap.Logger
	subs   map[string][]*Subscription
	closed bool
}

// NewBus creates an empty Bus.
//
// Precondition: logger must be non-nil.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[string][]*Subscription),
	}
}

// Subscribe registers a listener on topic with the given channel buffer.
// A buffer below 1 is raised to 1.
func (b *Bus) Subscribe(topic string, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{
		C:     make(chan Event, buffer),
		topic: topic,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.close()
		return sub
	}
	b.subs[topic] = append(b.subs[topic], sub)
	return sub
}

// SubscribeFunc registers a handler on topic, serviced by a dedicated
// goroutine. A handler error or panic republishes the original event on
// topic + ".failed"; failure events themselves are never republished.
func (b *Bus) SubscribeFunc(topic string, buffer int, handler func(Event) error) *Subscription {
	sub := b.Subscribe(topic, buffer)
	go func() {
		for event := range sub.C {
			b.dispatch(handler, event)
		}
	}()
	return sub
}

func (b *Bus) dispatch(handler func(Event) error, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", event.Topic),
				zap.Any("panic", r),
			)
			b.publishFailed(event)
		}
	}()
	if err := handler(event); err != nil {
		b.logger.Warn("event handler failed",
			zap.String("topic", event.Topic),
			zap.Error(err),
		)
		b.publishFailed(event)
	}
}

func (b *Bus) publishFailed(event Event) {
	if strings.HasSuffix(event.Topic, FailedSuffix) {
		return
	}
	b.Publish(Event{
		Topic:       event.Topic + FailedSuffix,
		EncounterID: event.EncounterID,
		Payload:     event.Payload,
	})
}

// Unsubscribe removes the subscription and closes its channel. Safe to call
// more than once.
//
// Invariant: the channel is closed under the bus lock, so it can never race
// an in-flight Publish send.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.topic]
	for i, s := range list {
		if s == sub {
			b.subs[sub.topic] = append(list[:i], list[i+1:]...)
			break
		}
	}
	sub.close()
}

// Publish delivers the event to every subscriber of its topic without
// blocking. Events published after Close are dropped.
//
// The read lock is held across the sends: every send is non-blocking, and
// Unsubscribe and Close only close channels under the write lock.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for _, sub := range b.subs[event.Topic] {
		select {
		case sub.C <- event:
		default:
			b.logger.Warn("slow subscriber, dropping event",
				zap.String("topic", event.Topic),
				zap.String("encounter_id", event.EncounterID),
			)
		}
	}
}

// Close shuts the bus down: all subscriber channels are closed and further
// publishes become no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, list := range b.subs {
		for _, sub := range list {
			sub.close()
		}
	}
	b.subs = make(map[string][]*Subscription)
}
