package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/repository"
)

const orderItemColumns = `id, order_id, product_id, name, price, quantity, position`

var errItemOwnedByOtherOrder = domain.NewError(domain.ErrCodeConflict, "order item belongs to another order")

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation of OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) repository.OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return domain.ErrInvalidPayload
	}
	record := repository.NewOrderRecord(order)

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `INSERT INTO orders (id, customer_id, total) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, query, record.ID, record.CustomerID, record.Total); err != nil {
			return err
		}
		return insertItems(ctx, tx, record.Items)
	})
	return storageError("cannot create order "+record.ID, err)
}

// Update rewrites the header, drops item rows no longer on the order and
// upserts the rest, in one transaction.
func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return domain.ErrInvalidPayload
	}
	record := repository.NewOrderRecord(order)

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const header = `UPDATE orders SET customer_id = $2, total = $3 WHERE id = $1`
		tag, err := tx.Exec(ctx, header, record.ID, record.CustomerID, record.Total)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrOrderNotFound
		}

		const stale = `DELETE FROM order_items WHERE order_id = $1 AND NOT (id = ANY($2))`
		if _, err := tx.Exec(ctx, stale, record.ID, record.ItemIDs()); err != nil {
			return err
		}

		const upsert = `
		INSERT INTO order_items (` + orderItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET product_id = EXCLUDED.product_id,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			position = EXCLUDED.position
		WHERE order_items.order_id = EXCLUDED.order_id
		`
		for _, item := range record.Items {
			tag, err := tx.Exec(ctx, upsert,
				item.ID,
				item.OrderID,
				item.ProductID,
				item.Name,
				item.Price,
				item.Quantity,
				item.Position,
			)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return errItemOwnedByOtherOrder
			}
		}
		return nil
	})
	return storageError("cannot update order "+record.ID, err)
}

func (r *orderRepository) Find(ctx context.Context, id string) (*domain.Order, error) {
	var record repository.OrderRecord

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const header = `SELECT id, customer_id, total FROM orders WHERE id = $1`
		if err := tx.QueryRow(ctx, header, id).Scan(&record.ID, &record.CustomerID, &record.Total); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		items, err := queryItems(ctx, tx,
			`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY position, id`, id)
		record.Items = items
		return err
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

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, customer_id, total FROM orders ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var h repository.OrderRecord
			if err := rows.Scan(&h.ID, &h.CustomerID, &h.Total); err != nil {
				return err
			}
			headers = append(headers, h)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		items, err = queryItems(ctx, tx,
			`SELECT `+orderItemColumns+` FROM order_items ORDER BY order_id, position, id`)
		return err
	})
	if err != nil {
		return nil, storageError("cannot list orders", err)
	}

	return repository.ToDomainOrders(repository.GroupItems(headers, items))
}

func insertItems(ctx context.Context, tx pgx.Tx, items []repository.OrderItemRow) error {
	const query = `INSERT INTO order_items (` + orderItemColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
			item.Position,
		)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func queryItems(ctx context.Context, tx pgx.Tx, query string, args ...interface{}) ([]repository.OrderItemRow, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []repository.OrderItemRow
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrderItem(row rowScanner) (repository.OrderItemRow, error) {
	var item repository.OrderItemRow
	err := row.Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.Name,
		&item.Price,
		&item.Quantity,
		&item.Position,
	)
	return item, err
}
