package repository

import (
	"context"

	"github.com/fastygo/checkout/domain"
)

// OrderRepository persists the Order aggregate together with its items.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	Find(ctx context.Context, id string) (*domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
}

// OrderItemRow mirrors one row of order_items.
type OrderItemRow struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	ProductID string  `db:"product_id" json:"product_id"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Position  int     `db:"position" json:"position"`
}

// OrderRecord is the relational shape of an order: the orders header row
// plus its order_items rows in item order.
type OrderRecord struct {
	ID         string         `db:"id" json:"id"`
	CustomerID string         `db:"customer_id" json:"customer_id"`
	Total      float64        `db:"total" json:"total"`
	Items      []OrderItemRow `db:"-" json:"items"`
}

// NewOrderRecord flattens an aggregate. Total is computed at call time.
func NewOrderRecord(order *domain.Order) OrderRecord {
	items := order.Items()
	record := OrderRecord{
		ID:         order.ID(),
		CustomerID: order.CustomerID(),
		Total:      order.Total(),
		Items:      make([]OrderItemRow, len(items)),
	}
	for i, item := range items {
		record.Items[i] = OrderItemRow{
			ID:        item.ID(),
			OrderID:   order.ID(),
			ProductID: item.ProductID(),
			Name:      item.Name(),
			Price:     item.Price(),
			Quantity:  item.Quantity(),
			Position:  i,
		}
	}
	return record
}

// ToDomain rebuilds a fresh aggregate. The stored total is ignored: the
// aggregate always derives it from its items.
func (r OrderRecord) ToDomain() (*domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, row := range r.Items {
		item, err := domain.NewOrderItem(row.ID, row.Name, row.Price, row.ProductID, row.Quantity)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt order item "+row.ID, err)
		}
		items = append(items, *item)
	}

	order, err := domain.NewOrder(r.ID, r.CustomerID, items)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt order "+r.ID, err)
	}
	return order, nil
}

// ItemIDs lists the item ids in order.
func (r OrderRecord) ItemIDs() []string {
	ids := make([]string, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.ID
	}
	return ids
}

// GroupItems attaches item rows to their headers, preserving header order.
func GroupItems(headers []OrderRecord, items []OrderItemRow) []OrderRecord {
	index := make(map[string]int, len(headers))
	for i := range headers {
		index[headers[i].ID] = i
	}
	for _, item := range items {
		if i, ok := index[item.OrderID]; ok {
			headers[i].Items = append(headers[i].Items, item)
		}
	}
	return headers
}

// ToDomainOrders rebuilds every record.
func ToDomainOrders(records []OrderRecord) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, len(records))
	for _, record := range records {
		order, err := record.ToDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}
