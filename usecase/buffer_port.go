package usecase

import (
	"context"

	"github.com/fastygo/checkout/domain"
)

// Write operations that can be deferred while storage is unavailable.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferOrder(ctx context.Context, operation string, order *domain.Order) error
	BufferCustomer(ctx context.Context, operation string, customer *domain.Customer) error
}

// Bufferable reports whether a failed write may be retried later. Only
// storage outages qualify; validation, conflicts and missing rows do not.
func Bufferable(err error) bool {
	return domain.IsDomainError(err, domain.ErrCodeUnavailable)
}
