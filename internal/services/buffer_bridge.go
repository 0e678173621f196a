package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/internal/infrastructure/buffer"
	"github.com/fastygo/checkout/repository"
	"github.com/fastygo/checkout/usecase"
)

// BufferBridge adapts BufferProcessor to the use case port.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferOrder(ctx context.Context, operation string, order *domain.Order) error {
	if b.processor == nil || order == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(repository.NewOrderRecord(order))
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		AggregateID: order.ID(),
		Entity:      buffer.EntityOrder,
		Operation:   operation,
		Data:        payload,
		Priority:    buffer.PriorityDefault,
	})
}

func (b *BufferBridge) BufferCustomer(ctx context.Context, operation string, customer *domain.Customer) error {
	if b.processor == nil || customer == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(repository.NewCustomerRow(customer))
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		AggregateID: customer.ID(),
		Entity:      buffer.EntityCustomer,
		Operation:   operation,
		Data:        payload,
		Priority:    buffer.PriorityHigh,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
