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
	insertCustomerQuery = `
	INSERT INTO customers (id, name, street, number, zip, city, active, reward_points)
	VALUES (:id, :name, :street, :number, :zip, :city, :active, :reward_points)
	`
	updateCustomerQuery = `
	UPDATE customers
	SET name = :name,
		street = :street,
		number = :number,
		zip = :zip,
		city = :city,
		active = :active,
		reward_points = :reward_points
	WHERE id = :id
	`
	selectCustomerQuery = `
	SELECT id, name, street, number, zip, city, active, reward_points
	FROM customers
	WHERE id = ?
	`
	selectCustomersQuery = `
	SELECT id, name, street, number, zip, city, active, reward_points
	FROM customers
	ORDER BY id
	`
)

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}
	row := repository.NewCustomerRow(customer)
	_, err := r.db.NamedExecContext(ctx, insertCustomerQuery, row)
	return storageError("cannot create customer "+row.ID, err)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return domain.ErrInvalidPayload
	}
	row := repository.NewCustomerRow(customer)
	res, err := r.db.NamedExecContext(ctx, updateCustomerQuery, row)
	if err == nil {
		err = requireAffected(res, domain.ErrCustomerNotFound)
	}
	return storageError("cannot update customer "+row.ID, err)
}

func (r *customerRepository) Find(ctx context.Context, id string) (*domain.Customer, error) {
	var row repository.CustomerRow
	if err := r.db.GetContext(ctx, &row, selectCustomerQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, storageError("cannot find customer "+id, err)
	}
	return row.ToDomain()
}

func (r *customerRepository) FindAll(ctx context.Context) ([]domain.Customer, error) {
	var rows []repository.CustomerRow
	if err := r.db.SelectContext(ctx, &rows, selectCustomersQuery); err != nil {
		return nil, storageError("cannot list customers", err)
	}

	customers := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		c, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, nil
}
