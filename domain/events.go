package domain

import "github.com/fastygo/checkout/domain/event"

const (
	EventCustomerCreated        event.Name = "CustomerCreated"
	EventCustomerAddressChanged event.Name = "CustomerAddressChanged"
	EventOrderPlaced            event.Name = "OrderPlaced"
	EventOrderItemsChanged      event.Name = "OrderItemsChanged"
)

// CustomerData is the payload of customer lifecycle events.
type CustomerData struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

func customerData(c *Customer) CustomerData {
	return CustomerData{ID: c.ID(), Name: c.Name(), Address: c.Address()}
}

type CustomerCreatedEvent struct {
	event.Base
	data CustomerData
}

func NewCustomerCreatedEvent(c *Customer) CustomerCreatedEvent {
	return CustomerCreatedEvent{Base: event.NewBase(), data: customerData(c)}
}

func (e CustomerCreatedEvent) EventName() event.Name { return EventCustomerCreated }
func (e CustomerCreatedEvent) EventData() any        { return e.data }
func (e CustomerCreatedEvent) Customer() CustomerData {
	return e.data
}

type CustomerAddressChangedEvent struct {
	event.Base
	data CustomerData
}

func NewCustomerAddressChangedEvent(c *Customer) CustomerAddressChangedEvent {
	return CustomerAddressChangedEvent{Base: event.NewBase(), data: customerData(c)}
}

func (e CustomerAddressChangedEvent) EventName() event.Name { return EventCustomerAddressChanged }
func (e CustomerAddressChangedEvent) EventData() any        { return e.data }
func (e CustomerAddressChangedEvent) Customer() CustomerData {
	return e.data
}

// OrderData is the payload of order lifecycle events.
type OrderData struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customer_id"`
	ItemCount  int     `json:"item_count"`
	Total      float64 `json:"total"`
}

func orderData(o *Order) OrderData {
	return OrderData{ID: o.ID(), CustomerID: o.CustomerID(), ItemCount: len(o.items), Total: o.Total()}
}

type OrderPlacedEvent struct {
	event.Base
	data OrderData
}

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{Base: event.NewBase(), data: orderData(o)}
}

func (e OrderPlacedEvent) EventName() event.Name { return EventOrderPlaced }
func (e OrderPlacedEvent) EventData() any        { return e.data }
func (e OrderPlacedEvent) Order() OrderData      { return e.data }

type OrderItemsChangedEvent struct {
	event.Base
	data OrderData
}

func NewOrderItemsChangedEvent(o *Order) OrderItemsChangedEvent {
	return OrderItemsChangedEvent{Base: event.NewBase(), data: orderData(o)}
}

func (e OrderItemsChangedEvent) EventName() event.Name { return EventOrderItemsChanged }
func (e OrderItemsChangedEvent) EventData() any        { return e.data }
func (e OrderItemsChangedEvent) Order() OrderData      { return e.data }

var (
	_ event.Event = CustomerCreatedEvent{}
	_ event.Event = CustomerAddressChangedEvent{}
	_ event.Event = OrderPlacedEvent{}
	_ event.Event = OrderItemsChangedEvent{}
)
