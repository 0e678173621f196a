package usecase

import (
	"context"

	"github.com/fastygo/checkout/domain/event"
)

// Notifier publishes domain events; *event.Dispatcher satisfies it.
type Notifier interface {
	Notify(ctx context.Context, e event.Event) error
}

// Notify publishes e when n is configured.
func Notify(ctx context.Context, n Notifier, e event.Event) error {
	if n == nil {
		return nil
	}
	return n.Notify(ctx, e)
}
