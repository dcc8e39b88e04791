package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in tick N are readable
// in tick N+1. SwapBuffers() is called at tick start by the dispatch system.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    *buffer
	back     *buffer
	handlers map[reflect.Type][]func(any)
}

// buffer keeps events grouped by type, and the types in first-emit order so
// dispatch is deterministic.
type buffer struct {
	events map[reflect.Type][]any
	order  []reflect.Type
}

func newBuffer() *buffer {
	return &buffer{events: make(map[reflect.Type][]any)}
}

func (b *buffer) push(t reflect.Type, ev any) {
	if len(b.events[t]) == 0 {
		b.order = append(b.order, t)
	}
	b.events[t] = append(b.events[t], ev)
}

func (b *buffer) reset() {
	for _, t := range b.order {
		clear(b.events[t])
		b.events[t] = b.events[t][:0]
	}
	b.order = b.order[:0]
}

func NewBus() *Bus {
	return &Bus{
		front:    newBuffer(),
		back:     newBuffer(),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event into the back buffer (will be readable next tick).
func Emit[T any](b *Bus, event T) {
	b.back.push(reflect.TypeFor[T](), event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeFor[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	b.back.reset()
}

// DispatchAll delivers all front-buffer events to their subscribed handlers
// and returns how many events were delivered. Handlers may Emit; those
// events land in the back buffer for the next tick.
func (b *Bus) DispatchAll() int {
	n := 0
	for _, t := range b.front.order {
		handlers := b.handlers[t]
		for _, ev := range b.front.events[t] {
			for _, h := range handlers {
				h(ev)
			}
			n++
		}
	}
	return n
}

// Pending returns the number of events waiting in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, t := range b.back.order {
		n += len(b.back.events[t])
	}
	return n
}
