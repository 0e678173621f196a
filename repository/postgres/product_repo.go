package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/repository"
)

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product == nil {
		return domain.ErrInvalidPayload
	}
	row := repository.NewProductRow(product)
	_, err := r.pool.Exec(ctx, `INSERT INTO products (id, name, price) VALUES ($1, $2, $3)`,
		row.ID, row.Name, row.Price)
	return storageError("cannot create product "+row.ID, err)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	if product == nil {
		return domain.ErrInvalidPayload
	}
	row := repository.NewProductRow(product)
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name = $2, price = $3 WHERE id = $1`,
		row.ID, row.Name, row.Price)
	if err != nil {
		return storageError("cannot update product "+row.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Find(ctx context.Context, id string) (*domain.Product, error) {
	var row repository.ProductRow
	err := r.pool.QueryRow(ctx, `SELECT id, name, price FROM products WHERE id = $1`, id).
		Scan(&row.ID, &row.Name, &row.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, storageError("cannot find product "+id, err)
	}
	return row.ToDomain()
}

func (r *productRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price FROM products ORDER BY id`)
	if err != nil {
		return nil, storageError("cannot list products", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var row repository.ProductRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Price); err != nil {
			return nil, storageError("cannot list products", err)
		}
		p, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, storageError("cannot list products", rows.Err())
}
