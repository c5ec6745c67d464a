// Package bus provides synchronous observer fan-out for processed events.
//
// Publish delivers every event to every registered observer in
// registration order, in the caller's goroutine. Observers are expected to
// do O(1) bookkeeping, not I/O; there is no buffering or back-pressure.
package bus

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// Observer receives every published event.
type Observer interface {
	OnEvent(evt event.Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(evt event.Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(evt event.Event) {
	f(evt)
}

// Config configures bus behavior.
type Config struct {
	// Logger records observer panics. Defaults to slog.Default().
	Logger *slog.Logger

	// OnPanic is called after a recovered observer panic, in addition
	// to logging. Optional.
	OnPanic func(obs Observer, evt event.Event, recovered any)
}

// Bus fans processed events out to registered observers.
type Bus struct {
	mu        sync.RWMutex
	observers []Observer

	logger  *slog.Logger
	onPanic func(obs Observer, evt event.Event, recovered any)

	delivered atomic.Int64
	panics    atomic.Int64
}

// New creates a bus.
func New(cfg Config) *Bus {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger:  logger,
		onPanic: cfg.OnPanic,
	}
}

// Subscribe appends an observer. Duplicate subscriptions are allowed;
// delivery order is registration order.
func (b *Bus) Subscribe(obs Observer) {
	if obs == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, obs)
}

// Unsubscribe removes the first subscription matching obs by identity.
// Func-typed observers such as ObserverFunc match by code pointer.
// No-op if obs is not subscribed.
func (b *Bus) Unsubscribe(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.observers {
		if observerEqual(o, obs) {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// observerEqual reports whether two observers are the same subscription.
// A plain == on interfaces panics when the dynamic type is uncomparable
// (ObserverFunc is a func type), so guard with reflection first.
func observerEqual(a, b Observer) bool {
	if a == nil || b == nil {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Type().Comparable() {
		return a == b
	}
	if va.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// Publish synchronously delivers evt to every observer in registration
// order. A panicking observer is recovered and logged; delivery continues
// to the remaining observers. Iteration runs over a snapshot, so observers
// may subscribe or unsubscribe from inside their callback.
func (b *Bus) Publish(evt event.Event) {
	b.mu.RLock()
	snapshot := append([]Observer(nil), b.observers...)
	b.mu.RUnlock()

	for _, obs := range snapshot {
		b.deliver(obs, evt)
	}
}

func (b *Bus) deliver(obs Observer, evt event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.logger.Error("observer panicked during event delivery",
				slog.String("event", evt.Name()),
				slog.String("category", string(evt.Category())),
				slog.Any("panic", r),
			)
			if b.onPanic != nil {
				b.onPanic(obs, evt, r)
			}
		}
	}()

	obs.OnEvent(evt)
	b.delivered.Add(1)
}

// Len returns the number of current subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}

// Delivered returns the total number of successful deliveries.
func (b *Bus) Delivered() int64 {
	return b.delivered.Load()
}

// Panics returns the total number of recovered observer panics.
func (b *Bus) Panics() int64 {
	return b.panics.Load()
}
