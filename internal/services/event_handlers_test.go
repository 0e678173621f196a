package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/domain/event"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func testCustomer(t *testing.T) *domain.Customer {
	t.Helper()
	customer, err := domain.NewCustomer("c1", "Customer 1")
	require.NoError(t, err)
	address, err := domain.NewAddress("s", 1, "00", "city")
	require.NoError(t, err)
	require.NoError(t, customer.ChangeAddress(address))
	return customer
}

func TestRegisterLogHandlers(t *testing.T) {
	logger, logs := observedLogger()
	d := event.NewDispatcher()
	RegisterLogHandlers(d, logger)

	handlers := d.Handlers()
	assert.Len(t, handlers[domain.EventCustomerCreated], 2)
	assert.IsType(t, &LogWhenCustomerCreated1{}, handlers[domain.EventCustomerCreated][0])
	assert.IsType(t, &LogWhenCustomerCreated2{}, handlers[domain.EventCustomerCreated][1])
	assert.Len(t, handlers[domain.EventCustomerAddressChanged], 1)
	assert.Len(t, handlers[domain.EventOrderPlaced], 1)
	assert.Len(t, handlers[domain.EventOrderItemsChanged], 1)

	customer := testCustomer(t)
	ctx := context.Background()
	require.NoError(t, d.Notify(ctx, domain.NewCustomerCreatedEvent(customer)))
	require.NoError(t, d.Notify(ctx, domain.NewCustomerAddressChangedEvent(customer)))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "first handler of event: CustomerCreated", entries[0].Message)
	assert.Equal(t, "second handler of event: CustomerCreated", entries[1].Message)
	assert.Equal(t, "customer address changed", entries[2].Message)
	assert.Equal(t, map[string]any{
		"customer_id":   "c1",
		"customer_name": "Customer 1",
		"street":        "s",
		"number":        int64(1),
		"zip":           "00",
		"city":          "city",
	}, entries[2].ContextMap())
}

func TestLogWhenOrderPlaced(t *testing.T) {
	logger, logs := observedLogger()
	h := NewLogWhenOrderPlaced(logger)

	item, err := domain.NewOrderItem("1", "Product 1", 10, "123", 2)
	require.NoError(t, err)
	order, err := domain.NewOrder("o1", "c1", []domain.OrderItem{*item})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), domain.NewOrderPlacedEvent(order)))

	entries := logs.FilterMessage("OrderPlaced").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "o1", fields["order_id"])
	assert.Equal(t, 20.0, fields["total"])
	assert.Equal(t, int64(1), fields["items"])
}

func TestHandlersIgnoreOtherEvents(t *testing.T) {
	logger, logs := observedLogger()
	customer := testCustomer(t)
	ctx := context.Background()

	assert.NoError(t, NewLogWhenCustomerCreated1(logger).Handle(ctx, domain.NewCustomerAddressChangedEvent(customer)))
	assert.NoError(t, NewLogWhenCustomerCreated2(logger).Handle(ctx, domain.NewCustomerAddressChangedEvent(customer)))
	assert.NoError(t, NewLogWhenCustomerAddressChanged(logger).Handle(ctx, domain.NewCustomerCreatedEvent(customer)))
	assert.NoError(t, NewLogWhenOrderPlaced(nil).Handle(ctx, domain.NewCustomerCreatedEvent(customer)))
	assert.Zero(t, logs.Len())
}
