package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/repository"
)

const (
	insertOrderQuery = `
	INSERT INTO orders (id, customer_id, total)
	VALUES (:id, :customer_id, :total)
	`
	insertOrderItemQuery = `
	INSERT INTO order_items (id, order_id, product_id, name, price, quantity, position)
	VALUES (:id, :order_id, :product_id, :name, :price, :quantity, :position)
	`
	upsertOrderItemQuery = `
	INSERT INTO order_items (id, order_id, product_id, name, price, quantity, position)
	VALUES (:id, :order_id, :product_id, :name, :price, :quantity, :position)
	ON CONFLICT (id) DO UPDATE
	SET product_id = excluded.product_id,
		name = excluded.name,
		price = excluded.price,
		quantity = excluded.quantity,
		position = excluded.position
	WHERE order_items.order_id = excluded.order_id
	`
	updateOrderQuery = `
	UPDATE orders
	SET customer_id = ?,
		total = ?
	WHERE id = ?
	`
	deleteStaleItemsQuery = `
	DELETE FROM order_items
	WHERE order_id = ? AND id NOT IN (?)
	`
	selectOrderQuery = `
	SELECT id, customer_id, total
	FROM orders
	WHERE id = ?
	`
	selectOrdersQuery = `
	SELECT id, customer_id, total
	FROM orders
	ORDER BY id
	`
	selectOrderItemsQuery = `
	SELECT id, order_id, product_id, name, price, quantity, position
	FROM order_items
	WHERE order_id = ?
	ORDER BY position, id
	`
	selectAllOrderItemsQuery = `
	SELECT id, order_id, product_id, name, price, quantity, position
	FROM order_items
	ORDER BY order_id, position, id
	`
)

var errItemOwnedByOtherOrder = domain.NewError(domain.ErrCodeConflict, "order item belongs to another order")

type orderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository returns an SQLite-backed OrderRepository.
func NewOrderRepository(db *sqlx.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return domain.ErrInvalidPayload
	}
	record := repository.NewOrderRecord(order)

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertOrderQuery, record); err != nil {
			return err
		}
		for _, item := range record.Items {
			if _, err := tx.NamedExecContext(ctx, insertOrderItemQuery, item); err != nil {
				return err
			}
		}
		return nil
	})
	return storageError("cannot create order "+record.ID, err)
}

// Update makes storage mirror the aggregate: the header total is rewritten,
// current items are upserted by id and rows for items no longer on the order
// are deleted, all in one transaction.
func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return domain.ErrInvalidPayload
	}
	record := repository.NewOrderRecord(order)

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, updateOrderQuery, record.CustomerID, record.Total, record.ID)
		if err != nil {
			return err
		}
		if err := requireAffected(res, domain.ErrOrderNotFound); err != nil {
			return err
		}

		query, args, err := sqlx.In(deleteStaleItemsQuery, record.ID, record.ItemIDs())
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return err
		}

		for _, item := range record.Items {
			res, err := tx.NamedExecContext(ctx, upsertOrderItemQuery, item)
			if err != nil {
				return err
			}
			if err := requireAffected(res, errItemOwnedByOtherOrder); err != nil {
				return err
			}
		}
		return nil
	})
	return storageError("cannot update order "+record.ID, err)
}

func (r *orderRepository) Find(ctx context.Context, id string) (*domain.Order, error) {
	var record repository.OrderRecord

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &record, selectOrderQuery, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return err
		}
		return tx.SelectContext(ctx, &record.Items, selectOrderItemsQuery, id)
	})
	if err != nil {
		return nil, storageError("cannot find order "+id, err)
	}

	return record.ToDomain()
}

func (r *orderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	var (
		headers []repository.OrderRecord
		items   []repository.OrderItemRow
	)

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &headers, selectOrdersQuery); err != nil {
			return err
		}
		return tx.SelectContext(ctx, &items, selectAllOrderItemsQuery)
	})
	if err != nil {
		return nil, storageError("cannot list orders", err)
	}

	return repository.ToDomainOrders(repository.GroupItems(headers, items))
}
