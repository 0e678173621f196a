package customer

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/pkg/logger"
	"github.com/fastygo/checkout/repository"
	"github.com/fastygo/checkout/usecase"
)

// RegisterInput describes a new customer. A nil Address registers the
// customer inactive; with an address the customer is activated.
type RegisterInput struct {
	ID      string
	Name    string
	Address *domain.Address
}

type UseCase struct {
	customers repository.CustomerRepository
	events    usecase.Notifier
	buffer    usecase.OperationBuffer
	logger    *zap.Logger
}

func New(customers repository.CustomerRepository, events usecase.Notifier, buffer usecase.OperationBuffer, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{
		customers: customers,
		events:    events,
		buffer:    buffer,
		logger:    log,
	}
}

func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	c, err := domain.NewCustomer(id, in.Name)
	if err != nil {
		return nil, err
	}
	if in.Address != nil {
		if err := c.ChangeAddress(*in.Address); err != nil {
			return nil, err
		}
		if err := c.Activate(); err != nil {
			return nil, err
		}
	}

	if err := uc.customers.Create(ctx, c); err != nil {
		if !uc.shouldBuffer(ctx, usecase.OperationCreate, c, err) {
			return nil, err
		}
	}

	logger.WithOperationID(ctx, uc.logger).Info("customer registered", zap.String("customer_id", c.ID()))
	if err := usecase.Notify(ctx, uc.events, domain.NewCustomerCreatedEvent(c)); err != nil {
		return c, err
	}
	return c, nil
}

// ChangeAddress moves a customer and announces the new address.
func (uc *UseCase) ChangeAddress(ctx context.Context, id string, address domain.Address) (*domain.Customer, error) {
	c, err := uc.customers.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.ChangeAddress(address); err != nil {
		return nil, err
	}

	if err := uc.customers.Update(ctx, c); err != nil {
		if !uc.shouldBuffer(ctx, usecase.OperationUpdate, c, err) {
			return nil, err
		}
	}

	if err := usecase.Notify(ctx, uc.events, domain.NewCustomerAddressChangedEvent(c)); err != nil {
		return c, err
	}
	return c, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return uc.customers.Find(ctx, id)
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Customer, error) {
	return uc.customers.FindAll(ctx)
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, c *domain.Customer, cause error) bool {
	if uc.buffer == nil || !usecase.Bufferable(cause) {
		return false
	}
	log := logger.WithOperationID(ctx, uc.logger).With(zap.String("customer_id", c.ID()), zap.String("operation", operation))
	if err := uc.buffer.BufferCustomer(ctx, operation, c); err != nil {
		log.Error("failed to buffer customer write", zap.Error(err))
		return false
	}
	log.Warn("customer write buffered due to repository error", zap.Error(cause))
	return true
}
