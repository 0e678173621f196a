package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/repository"
)

const customerColumns = `id, name, street, number, zip, city, active, reward_points`

type customerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) repository.CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}
	row := repository.NewCustomerRow(customer)

	const query = `INSERT INTO customers (` + customerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		row.ID,
		row.Name,
		row.Street,
		row.Number,
		row.Zip,
		row.City,
		row.Active,
		row.RewardPoints,
	)
	return storageError("cannot create customer "+row.ID, err)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}
	row := repository.NewCustomerRow(customer)

	const query = `
	UPDATE customers
	SET name = $2,
		street = $3,
		number = $4,
		zip = $5,
		city = $6,
		active = $7,
		reward_points = $8
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		row.ID,
		row.Name,
		row.Street,
		row.Number,
		row.Zip,
		row.City,
		row.Active,
		row.RewardPoints,
	)
	if err != nil {
		return storageError("cannot update customer "+row.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) Find(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	row, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, storageError("cannot find customer "+id, err)
	}
	return row.ToDomain()
}

func (r *customerRepository) FindAll(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, storageError("cannot list customers", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		row, err := scanCustomer(rows)
		if err != nil {
			return nil, storageError("cannot list customers", err)
		}
		c, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, storageError("cannot list customers", rows.Err())
}

func scanCustomer(row rowScanner) (repository.CustomerRow, error) {
	var c repository.CustomerRow
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Street,
		&c.Number,
		&c.Zip,
		&c.City,
		&c.Active,
		&c.RewardPoints,
	)
	return c, err
}
