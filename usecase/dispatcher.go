package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/fastygo/checkout/domain"
)

// CommandHandler changes state; QueryHandler only reads.
type (
	CommandHandler func(ctx context.Context, payload any) (any, error)
	QueryHandler   func(ctx context.Context, params any) (any, error)
)

var ErrUnknownOperation = domain.NewError(domain.ErrCodeNotFound, "operation not registered")

// Dispatcher routes named commands and queries to use case methods so a
// driver can run a scripted sequence of operations.
type Dispatcher struct {
	cmdHandlers map[string]CommandHandler
	qryHandlers map[string]QueryHandler
	mu          sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		cmdHandlers: make(map[string]CommandHandler),
		qryHandlers: make(map[string]QueryHandler),
	}
}

// RegisterCommand binds name to handler, replacing any previous binding.
func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmdHandlers[name] = handler
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.qryHandlers[name] = handler
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload any) (any, error) {
	d.mu.RLock()
	handler, ok := d.cmdHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.WrapError(domain.ErrCodeNotFound, "command "+name, ErrUnknownOperation)
	}
	return handler(ctx, payload)
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params any) (any, error) {
	d.mu.RLock()
	handler, ok := d.qryHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.WrapError(domain.ErrCodeNotFound, "query "+name, ErrUnknownOperation)
	}
	return handler(ctx, params)
}

// Names lists registered commands and queries, sorted.
func (d *Dispatcher) Names() (commands, queries []string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for name := range d.cmdHandlers {
		commands = append(commands, name)
	}
	for name := range d.qryHandlers {
		queries = append(queries, name)
	}
	sort.Strings(commands)
	sort.Strings(queries)
	return commands, queries
}

// Payload asserts the dynamic payload type expected by a handler.
func Payload[T any](payload any) (T, error) {
	v, ok := payload.(T)
	if !ok {
		var zero T
		return zero, domain.ErrInvalidPayload
	}
	return v, nil
}
