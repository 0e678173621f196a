package repository

import (
	"context"

	"github.com/fastygo/checkout/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Find(ctx context.Context, id string) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
}

type ProductRow struct {
	ID    string  `db:"id"`
	Name  string  `db:"name"`
	Price float64 `db:"price"`
}

func NewProductRow(p *domain.Product) ProductRow {
	return ProductRow{ID: p.ID(), Name: p.Name(), Price: p.Price()}
}

func (r ProductRow) ToDomain() (*domain.Product, error) {
	p, err := domain.NewProduct(r.ID, r.Name, r.Price)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt product "+r.ID, err)
	}
	return p, nil
}
