package domain

// OrderItem is a purchased line: a snapshot of the product name and unit price
// at purchase time plus the quantity bought. It is owned by its Order.
type OrderItem struct {
	id        string
	name      string
	price     float64
	productID string
	quantity  int
}

// NewOrderItem validates and builds an order line.
func NewOrderItem(id, name string, price float64, productID string, quantity int) (*OrderItem, error) {
	item := &OrderItem{
		id:        id,
		name:      name,
		price:     price,
		productID: productID,
		quantity:  quantity,
	}
	if err := item.validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (i OrderItem) validate() error {
	switch {
	case i.id == "":
		return ErrEmptyID
	case i.productID == "":
		return ErrEmptyProductID
	case i.quantity <= 0:
		return ErrInvalidQuantity
	case i.price < 0:
		return ErrInvalidPrice
	}
	return nil
}

func (i OrderItem) ID() string        { return i.id }
func (i OrderItem) Name() string      { return i.name }
func (i OrderItem) Price() float64    { return i.price }
func (i OrderItem) ProductID() string { return i.productID }
func (i OrderItem) Quantity() int     { return i.quantity }

// Total returns price * quantity.
func (i OrderItem) Total() float64 {
	return i.price * float64(i.quantity)
}

// Order is the aggregate root owning a non-empty sequence of items.
type Order struct {
	id         string
	customerID string
	items      []OrderItem
}

// NewOrder validates and builds an order. The items slice is copied so the
// caller keeps no handle on the aggregate's internal state.
func NewOrder(id, customerID string, items []OrderItem) (*Order, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if customerID == "" {
		return nil, ErrEmptyCustomerID
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	return &Order{
		id:         id,
		customerID: customerID,
		items:      cloneItems(items),
	}, nil
}

func (o *Order) ID() string         { return o.id }
func (o *Order) CustomerID() string { return o.customerID }

// Items returns a copy of the current items in order.
func (o *Order) Items() []OrderItem {
	return cloneItems(o.items)
}

// Total sums the line totals of the current items. It is never cached.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.items {
		total += item.Total()
	}
	return total
}

// ChangeItems replaces the whole item sequence. On error the order is left untouched.
func (o *Order) ChangeItems(items []OrderItem) error {
	if err := validateItems(items); err != nil {
		return err
	}
	o.items = cloneItems(items)
	return nil
}

func validateItems(items []OrderItem) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		// zero-value items bypass NewOrderItem, so check them here too
		if err := items[i].validate(); err != nil {
			return err
		}
		if _, ok := seen[items[i].id]; ok {
			return ErrDuplicateItemID
		}
		seen[items[i].id] = struct{}{}
	}
	return nil
}

func cloneItems(items []OrderItem) []OrderItem {
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}
