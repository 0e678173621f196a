package checkout

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/pkg/logger"
	"github.com/fastygo/checkout/repository"
	"github.com/fastygo/checkout/usecase"
)

// Line asks for Quantity units of a catalog product. An empty ItemID gets a
// generated one.
type Line struct {
	ItemID    string
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	OrderID    string
	CustomerID string
	Lines      []Line
}

type UseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	events   usecase.Notifier
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
}

func New(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	events usecase.Notifier,
	buffer usecase.OperationBuffer,
	log *zap.Logger,
) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{
		orders:   orders,
		products: products,
		events:   events,
		buffer:   buffer,
		logger:   log,
	}
}

// PlaceOrder prices every line from the catalog, persists the order and
// announces it.
func (uc *UseCase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	items, err := uc.buildItems(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	id := in.OrderID
	if id == "" {
		id = uuid.NewString()
	}
	order, err := domain.NewOrder(id, in.CustomerID, items)
	if err != nil {
		return nil, err
	}

	if err := uc.orders.Create(ctx, order); err != nil {
		if !uc.shouldBuffer(ctx, usecase.OperationCreate, order, err) {
			return nil, err
		}
	}

	logger.WithOperationID(ctx, uc.logger).Info("order placed",
		zap.String("order_id", order.ID()),
		zap.Float64("total", order.Total()))
	if err := usecase.Notify(ctx, uc.events, domain.NewOrderPlacedEvent(order)); err != nil {
		return order, err
	}
	return order, nil
}

// ChangeItems replaces the item set of an existing order.
func (uc *UseCase) ChangeItems(ctx context.Context, orderID string, lines []Line) (*domain.Order, error) {
	order, err := uc.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := uc.buildItems(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := order.ChangeItems(items); err != nil {
		return nil, err
	}

	if err := uc.orders.Update(ctx, order); err != nil {
		if !uc.shouldBuffer(ctx, usecase.OperationUpdate, order, err) {
			return nil, err
		}
	}

	if err := usecase.Notify(ctx, uc.events, domain.NewOrderItemsChangedEvent(order)); err != nil {
		return order, err
	}
	return order, nil
}

func (uc *UseCase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return uc.orders.Find(ctx, id)
}

func (uc *UseCase) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return uc.orders.FindAll(ctx)
}

// buildItems snapshots product name and price into order items.
func (uc *UseCase) buildItems(ctx context.Context, lines []Line) ([]domain.OrderItem, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyItems
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, domain.ErrEmptyProductID
		}
		product, err := uc.products.Find(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		id := line.ItemID
		if id == "" {
			id = uuid.NewString()
		}
		item, err := domain.NewOrderItem(id, product.Name(), product.Price(), product.ID(), line.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, order *domain.Order, cause error) bool {
	if uc.buffer == nil || !usecase.Bufferable(cause) {
		return false
	}
	log := logger.WithOperationID(ctx, uc.logger).With(zap.String("order_id", order.ID()), zap.String("operation", operation))
	if err := uc.buffer.BufferOrder(ctx, operation, order); err != nil {
		log.Error("failed to buffer order write", zap.Error(err))
		return false
	}
	log.Warn("order write buffered due to repository error", zap.Error(cause))
	return true
}
