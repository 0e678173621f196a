package repository

import (
	"context"

	"github.com/fastygo/checkout/domain"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Find(ctx context.Context, id string) (*domain.Customer, error)
	FindAll(ctx context.Context) ([]domain.Customer, error)
}

// CustomerRow mirrors one row of customers. An empty street means no address.
type CustomerRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Street       string `db:"street"`
	Number       int    `db:"number"`
	Zip          string `db:"zip"`
	City         string `db:"city"`
	Active       bool   `db:"active"`
	RewardPoints int    `db:"reward_points"`
}

func NewCustomerRow(c *domain.Customer) CustomerRow {
	addr := c.Address()
	return CustomerRow{
		ID:           c.ID(),
		Name:         c.Name(),
		Street:       addr.Street,
		Number:       addr.Number,
		Zip:          addr.Zip,
		City:         addr.City,
		Active:       c.IsActive(),
		RewardPoints: c.RewardPoints(),
	}
}

func (r CustomerRow) ToDomain() (*domain.Customer, error) {
	addr := domain.Address{Street: r.Street, Number: r.Number, Zip: r.Zip, City: r.City}
	c, err := domain.RestoreCustomer(r.ID, r.Name, addr, r.Active, r.RewardPoints)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt customer "+r.ID, err)
	}
	return c, nil
}
