package event_bus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type EventType string

// Event is the envelope carried by the bus. Data holds one of the payloads from events.go.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{ctx: ctx, Type: eventType, Timestamp: time.Now(), Data: data}
}

// Context returns the context of the request that caused the event.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is the envelope passed to typed handlers.
type EventT[T any] struct {
	Event
	Data T
}

type subscriber struct {
	id     uint64
	handle func(Event) error
}

// EventBus dispatches budget events synchronously inside Publish. Handlers of one event type run
// in the order they subscribed.
type EventBus struct {
	mu     sync.RWMutex
	topics map[EventType][]subscriber
	lastId uint64
}

func NewEventBus() *EventBus {
	return &EventBus{topics: map[EventType][]subscriber{}}
}

// Subscribe registers h for eventType and returns a function removing it again.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.lastId++
	id := eb.lastId
	eb.topics[eventType] = append(eb.topics[eventType], subscriber{id: id, handle: h})

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		remaining := slices.DeleteFunc(slices.Clone(eb.topics[eventType]), func(s subscriber) bool { return s.id == id })
		if len(remaining) == 0 {
			delete(eb.topics, eventType)
			return
		}
		eb.topics[eventType] = remaining
	}
}

// SubscribeTyped registers h for events whose payload is a T. Other payloads are ignored.
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(EventT[T]) error) (unsubscribe func()) {
	return eb.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("EventBus: %s carries %T, handler expects %T", eventType, e.Data, *new(T))
			return nil
		}
		return h(EventT[T]{Event: e, Data: payload})
	})
}

// Publish runs every handler of e.Type. A failing or panicking handler does not stop the others,
// and all failures come back joined. Nothing runs when the event context is already done.
func (eb *EventBus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s not published: %w", e.Type, err)
	}

	eb.mu.RLock()
	subscribers := eb.topics[e.Type]
	eb.mu.RUnlock()

	var failures []error
	for _, s := range subscribers {
		if err := runHandler(s, e); err != nil {
			log.Errorf("EventBus: handler %d failed on %s: %v", s.id, e.Type, err)
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %w", e.Type, len(failures), errors.Join(failures...))
	}
	return nil
}

func runHandler(s subscriber, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %d panicked on %s: %v", s.id, e.Type, r)
		}
	}()
	return s.handle(e)
}
