package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/checkout/domain"
	pgInfra "github.com/fastygo/checkout/internal/infrastructure/postgres"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func storageError(message string, err error) error {
	if err == nil {
		return nil
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	if pgInfra.IsConstraintViolation(err) {
		return domain.WrapError(domain.ErrCodeConflict, message, err)
	}
	return domain.WrapError(domain.ErrCodeUnavailable, message, err)
}

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
