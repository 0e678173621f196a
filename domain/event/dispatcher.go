package event

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Dispatcher maps event names to ordered handler lists.
type Dispatcher struct {
	handlers map[Name][]Handler
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Name][]Handler),
	}
}

// Register appends handler to the list for name. The same handler may be
// registered more than once and will then be notified once per registration.
func (d *Dispatcher) Register(name Name, handler Handler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

// Unregister removes the first registration of handler under name. Unknown
// names and handlers are ignored. The name stays registered even when its
// list becomes empty. Handlers whose values are not comparable never match.
func (d *Dispatcher) Unregister(name Name, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handlers, ok := d.handlers[name]
	if !ok {
		return
	}
	for i, h := range handlers {
		if sameHandler(h, handler) {
			next := make([]Handler, 0, len(handlers)-1)
			next = append(next, handlers[:i]...)
			next = append(next, handlers[i+1:]...)
			d.handlers[name] = next
			return
		}
	}
}

// UnregisterAll drops every name from the registry.
func (d *Dispatcher) UnregisterAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = make(map[Name][]Handler)
}

// Notify invokes every handler registered for e.EventName() in registration
// order. The first handler error stops the fan-out and is returned.
func (d *Dispatcher) Notify(ctx context.Context, e Event) error {
	if e == nil {
		return nil
	}

	d.mu.RLock()
	handlers := d.handlers[e.EventName()]
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, e); err != nil {
			return fmt.Errorf("handle %s: %w", e.EventName(), err)
		}
	}
	return nil
}

// Handlers returns a snapshot of the registry. Mutating it does not affect the dispatcher.
func (d *Dispatcher) Handlers() map[Name][]Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[Name][]Handler, len(d.handlers))
	for name, handlers := range d.handlers {
		out[name] = append(make([]Handler, 0, len(handlers)), handlers...)
	}
	return out
}

func sameHandler(a, b Handler) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}
