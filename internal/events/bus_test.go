package events

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func waitEvent(t *testing.T, c <-chan Event) Event {
	t.Helper()
	select {
	case event, ok := <-c:
		require.True(t, ok, "channel closed before event arrived")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	defer bus.Close()

	sub := bus.Subscribe(TopicCombatUpdated, 4)
	for i := 0; i < 3; i++ {
		bus.Publish(Event{Topic: TopicCombatUpdated, EncounterID: "e1", Payload: i})
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, i, waitEvent(t, sub.C).Payload)
	}
}

func TestPublishOnlyMatchingTopic(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	defer bus.Close()

	started := bus.Subscribe(TopicCombatStarted, 1)
	ended := bus.Subscribe(TopicCombatEnded, 1)

	bus.Publish(Event{Topic: TopicCombatEnded, EncounterID: "e1"})
	assert.Equal(t, TopicCombatEnded, waitEvent(t, ended.C).Topic)
	assert.Empty(t, started.C)
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	defer bus.Close()

	sub := bus.Subscribe(TopicCombatUpdated, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			bus.Publish(Event{Topic: TopicCombatUpdated, Payload: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	// Only the first event fit; the rest were dropped.
	assert.Equal(t, 0, waitEvent(t, sub.C).Payload)
	assert.Empty(t, sub.C)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	defer bus.Close()

	sub := bus.Subscribe(TopicCombatUpdated, 1)
	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)

	bus.Publish(Event{Topic: TopicCombatUpdated})
	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestSubscribeFuncFailureRepublishes(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	defer bus.Close()

	failed := bus.Subscribe(TopicCombatUpdated+FailedSuffix, 1)
	bus.SubscribeFunc(TopicCombatUpdated, 1, func(Event) error {
		return errors.New("handler broke")
	})

	bus.Publish(Event{Topic: TopicCombatUpdated, EncounterID: "e1", Payload: "turn 3"})

	event := waitEvent(t, failed.C)
	assert.Equal(t, TopicCombatUpdated+FailedSuffix, event.Topic)
	assert.Equal(t, "e1", event.EncounterID)
	assert.Equal(t, "turn 3", event.Payload)
}

func TestSubscribeFuncPanicRepublishes(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	defer bus.Close()

	failed := bus.Subscribe(TopicCombatStarted+FailedSuffix, 1)
	bus.SubscribeFunc(TopicCombatStarted, 1, func(Event) error {
		panic("handler exploded")
	})

	bus.Publish(Event{Topic: TopicCombatStarted, Payload: 42})
	assert.Equal(t, 42, waitEvent(t, failed.C).Payload)
}

func TestFailedEventsAreNotRepublished(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	defer bus.Close()

	doubled := bus.Subscribe(TopicCombatUpdated+FailedSuffix+FailedSuffix, 1)
	bus.SubscribeFunc(TopicCombatUpdated+FailedSuffix, 1, func(Event) error {
		return errors.New("failure handler also broke")
	})

	bus.Publish(Event{Topic: TopicCombatUpdated + FailedSuffix})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, doubled.C)
}

func TestPublishDuringUnsubscribeDoesNotPanic(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	defer bus.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					bus.Publish(Event{Topic: TopicCombatUpdated, EncounterID: "enc"})
				}
			}
		}()
	}

	// Churn subscriptions while the publishers run; a send racing a channel
	// close would panic one of the goroutines and fail the test.
	for i := 0; i < 20_000; i++ {
		sub := bus.Subscribe(TopicCombatUpdated, 1)
		bus.Unsubscribe(sub)
	}

	close(stop)
	wg.Wait()
}

func TestCloseShutsSubscribersDown(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	sub := bus.Subscribe(TopicCombatUpdated, 1)

	bus.Close()
	_, ok := <-sub.C
	assert.False(t, ok)

	bus.Publish(Event{Topic: TopicCombatUpdated})
	late := bus.Subscribe(TopicCombatUpdated, 1)
	_, ok = <-late.C
	assert.False(t, ok)
}
