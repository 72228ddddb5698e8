// Package eventbus is a typed, in-process publish/subscribe registry.
//
// Delivery is synchronous: Publish calls every handler registered for the
// event's name in registration order, in the caller's goroutine, and returns
// once all of them ran. A failing or panicking handler is logged and skipped;
// it never stops later handlers and never reaches the publisher.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Event is anything with a stable name. Handlers are keyed by that name.
type Event interface {
	EventName() string
}

// Handler reacts to one event. Its error is recorded, not returned to the
// publisher.
type Handler func(ctx context.Context, event Event) error

// FailureHook observes handler failures, e.g. to count them.
type FailureHook func(event string, err error)

type Dispatcher struct {
	mu        sync.Mutex // serialises registration
	handlers  atomic.Pointer[map[string][]Handler]
	onFailure FailureHook
}

type Option func(*Dispatcher)

func WithFailureHook(hook FailureHook) Option {
	return func(d *Dispatcher) { d.onFailure = hook }
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	empty := map[string][]Handler{}
	d.handlers.Store(&empty)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register appends h to the handlers of the named event. Registering the same
// handler twice delivers every event to it twice.
func (d *Dispatcher) Register(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := *d.handlers.Load()
	next := make(map[string][]Handler, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	list := make([]Handler, len(current[name]), len(current[name])+1)
	copy(list, current[name])
	next[name] = append(list, h)
	d.handlers.Store(&next)
}

// Subscribe registers a handler typed on the concrete event. E must report its
// name from a value receiver so the zero value can be asked for it.
func Subscribe[E Event](d *Dispatcher, fn func(ctx context.Context, event E) error) {
	var zero E
	d.Register(zero.EventName(), func(ctx context.Context, event Event) error {
		typed, ok := event.(E)
		if !ok {
			return fmt.Errorf("eventbus: %s delivered as %T", zero.EventName(), event)
		}
		return fn(ctx, typed)
	})
}

// Publish delivers event to every handler currently registered for its name.
func (d *Dispatcher) Publish(ctx context.Context, event Event) {
	name := event.EventName()
	handlers := (*d.handlers.Load())[name]

	for i, h := range handlers {
		if err := d.deliver(ctx, h, event); err != nil {
			slog.ErrorContext(ctx, "event handler failed",
				"event", name,
				"handler_index", i,
				"error", err,
			)
			if d.onFailure != nil {
				d.onFailure(name, err)
			}
		}
	}
}

// Handlers returns how many handlers are registered for name.
func (d *Dispatcher) Handlers(name string) int {
	return len((*d.handlers.Load())[name])
}

func (d *Dispatcher) deliver(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventbus: handler panic: %v", r)
		}
	}()
	return h(ctx, event)
}
