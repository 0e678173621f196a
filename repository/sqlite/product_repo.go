package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/repository"
)

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product == nil {
		return domain.ErrInvalidPayload
	}
	row := repository.NewProductRow(product)
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO products (id, name, price) VALUES (:id, :name, :price)`, row)
	return storageError("cannot create product "+row.ID, err)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	if product == nil {
		return domain.ErrInvalidPayload
	}
	row := repository.NewProductRow(product)
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE products SET name = :name, price = :price WHERE id = :id`, row)
	if err == nil {
		err = requireAffected(res, domain.ErrProductNotFound)
	}
	return storageError("cannot update product "+row.ID, err)
}

func (r *productRepository) Find(ctx context.Context, id string) (*domain.Product, error) {
	var row repository.ProductRow
	err := r.db.GetContext(ctx, &row, `SELECT id, name, price FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, storageError("cannot find product "+id, err)
	}
	return row.ToDomain()
}

func (r *productRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	var rows []repository.ProductRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, price FROM products ORDER BY id`); err != nil {
		return nil, storageError("cannot list products", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}
