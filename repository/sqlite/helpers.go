package sqlite

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fastygo/checkout/domain"
	sqliteInfra "github.com/fastygo/checkout/internal/infrastructure/sqlite"
)

// storageError classifies a driver error. Domain errors pass through untouched.
func storageError(message string, err error) error {
	if err == nil {
		return nil
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	if sqliteInfra.IsConstraintViolation(err) {
		return domain.WrapError(domain.ErrCodeConflict, message, err)
	}
	return domain.WrapError(domain.ErrCodeUnavailable, message, err)
}

// withTx runs fn in a transaction, rolling back on error.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// requireAffected turns a zero-row write into notFound.
func requireAffected(res interface{ RowsAffected() (int64, error) }, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
