package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/domain/event"
)

// LogWhenCustomerCreated1 and LogWhenCustomerCreated2 both listen to
// CustomerCreated and log independently.
type LogWhenCustomerCreated1 struct {
	logger *zap.Logger
}

func NewLogWhenCustomerCreated1(logger *zap.Logger) *LogWhenCustomerCreated1 {
	return &LogWhenCustomerCreated1{logger: nopIfNil(logger)}
}

func (h *LogWhenCustomerCreated1) Handle(_ context.Context, e event.Event) error {
	created, ok := e.(domain.CustomerCreatedEvent)
	if !ok {
		return nil
	}
	h.logger.Info("first handler of event: CustomerCreated",
		zap.String("customer_id", created.Customer().ID))
	return nil
}

type LogWhenCustomerCreated2 struct {
	logger *zap.Logger
}

func NewLogWhenCustomerCreated2(logger *zap.Logger) *LogWhenCustomerCreated2 {
	return &LogWhenCustomerCreated2{logger: nopIfNil(logger)}
}

func (h *LogWhenCustomerCreated2) Handle(_ context.Context, e event.Event) error {
	created, ok := e.(domain.CustomerCreatedEvent)
	if !ok {
		return nil
	}
	h.logger.Info("second handler of event: CustomerCreated",
		zap.String("customer_id", created.Customer().ID))
	return nil
}

type LogWhenCustomerAddressChanged struct {
	logger *zap.Logger
}

func NewLogWhenCustomerAddressChanged(logger *zap.Logger) *LogWhenCustomerAddressChanged {
	return &LogWhenCustomerAddressChanged{logger: nopIfNil(logger)}
}

func (h *LogWhenCustomerAddressChanged) Handle(_ context.Context, e event.Event) error {
	changed, ok := e.(domain.CustomerAddressChangedEvent)
	if !ok {
		return nil
	}
	c := changed.Customer()
	h.logger.Info("customer address changed",
		zap.String("customer_id", c.ID),
		zap.String("customer_name", c.Name),
		zap.String("street", c.Address.Street),
		zap.Int("number", c.Address.Number),
		zap.String("zip", c.Address.Zip),
		zap.String("city", c.Address.City),
	)
	return nil
}

type LogWhenOrderPlaced struct {
	logger *zap.Logger
}

func NewLogWhenOrderPlaced(logger *zap.Logger) *LogWhenOrderPlaced {
	return &LogWhenOrderPlaced{logger: nopIfNil(logger)}
}

func (h *LogWhenOrderPlaced) Handle(_ context.Context, e event.Event) error {
	var data domain.OrderData
	switch ev := e.(type) {
	case domain.OrderPlacedEvent:
		data = ev.Order()
	case domain.OrderItemsChangedEvent:
		data = ev.Order()
	default:
		return nil
	}
	h.logger.Info(e.EventName().String(),
		zap.String("order_id", data.ID),
		zap.String("customer_id", data.CustomerID),
		zap.Int("items", data.ItemCount),
		zap.Float64("total", data.Total),
	)
	return nil
}

// RegisterLogHandlers subscribes the logging handlers to d.
func RegisterLogHandlers(d *event.Dispatcher, logger *zap.Logger) {
	orders := NewLogWhenOrderPlaced(logger)

	d.Register(domain.EventCustomerCreated, NewLogWhenCustomerCreated1(logger))
	d.Register(domain.EventCustomerCreated, NewLogWhenCustomerCreated2(logger))
	d.Register(domain.EventCustomerAddressChanged, NewLogWhenCustomerAddressChanged(logger))
	d.Register(domain.EventOrderPlaced, orders)
	d.Register(domain.EventOrderItemsChanged, orders)
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
