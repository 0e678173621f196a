package customer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/domain/event"
	"github.com/fastygo/checkout/internal/infrastructure/sqlite"
	"github.com/fastygo/checkout/internal/services"
	"github.com/fastygo/checkout/repository"
	sqliteRepo "github.com/fastygo/checkout/repository/sqlite"
	"github.com/fastygo/checkout/usecase/customer"
)

type bufferSpy struct {
	writes []string
}

func (b *bufferSpy) BufferOrder(context.Context, string, *domain.Order) error {
	return errors.New("unexpected order write")
}

func (b *bufferSpy) BufferCustomer(_ context.Context, operation string, c *domain.Customer) error {
	b.writes = append(b.writes, operation+":"+c.ID())
	return nil
}

type downCustomers struct {
	repository.CustomerRepository
}

func (downCustomers) Create(context.Context, *domain.Customer) error {
	return domain.WrapError(domain.ErrCodeUnavailable, "storage unavailable", errors.New("i/o timeout"))
}

func setupRepo(t *testing.T) repository.CustomerRepository {
	t.Helper()
	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqliteRepo.NewCustomerRepository(db)
}

func observed() (*event.Dispatcher, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	d := event.NewDispatcher()
	services.RegisterLogHandlers(d, zap.New(core))
	return d, logs
}

func TestRegister_NotifiesBothCreatedHandlers(t *testing.T) {
	events, logs := observed()
	uc := customer.New(setupRepo(t), events, nil, nil)
	ctx := context.Background()

	c, err := uc.Register(ctx, customer.RegisterInput{ID: "c1", Name: "Customer 1"})
	require.NoError(t, err)
	assert.False(t, c.IsActive())

	assert.Equal(t, 1, logs.FilterMessage("first handler of event: CustomerCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("second handler of event: CustomerCreated").Len())

	stored, err := uc.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c, stored)
}

func TestRegister_WithAddressActivates(t *testing.T) {
	uc := customer.New(setupRepo(t), nil, nil, nil)
	address, err := domain.NewAddress("Street", 1, "00", "City")
	require.NoError(t, err)

	c, err := uc.Register(context.Background(), customer.RegisterInput{Name: "Customer", Address: &address})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID())
	assert.True(t, c.IsActive())

	_, err = uc.Register(context.Background(), customer.RegisterInput{Name: "Bad", Address: &domain.Address{Street: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestRegister_Invalid(t *testing.T) {
	events, logs := observed()
	uc := customer.New(setupRepo(t), events, nil, nil)

	_, err := uc.Register(context.Background(), customer.RegisterInput{ID: "c1"})
	assert.ErrorIs(t, err, domain.ErrEmptyName)
	assert.Zero(t, logs.Len())
}

func TestRegister_BuffersWhenStorageIsDown(t *testing.T) {
	spy := &bufferSpy{}
	uc := customer.New(downCustomers{setupRepo(t)}, nil, spy, nil)

	c, err := uc.Register(context.Background(), customer.RegisterInput{ID: "c1", Name: "Customer 1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID())
	assert.Equal(t, []string{"create:c1"}, spy.writes)
}

func TestChangeAddress(t *testing.T) {
	events, logs := observed()
	uc := customer.New(setupRepo(t), events, nil, nil)
	ctx := context.Background()

	_, err := uc.Register(ctx, customer.RegisterInput{ID: "c1", Name: "Customer 1"})
	require.NoError(t, err)

	address, err := domain.NewAddress("s", 1, "00", "city")
	require.NoError(t, err)
	c, err := uc.ChangeAddress(ctx, "c1", address)
	require.NoError(t, err)
	assert.Equal(t, address, c.Address())

	changed := logs.FilterMessage("customer address changed").All()
	require.Len(t, changed, 1)
	assert.Equal(t, "city", changed[0].ContextMap()["city"])

	stored, err := uc.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, address, stored.Address())

	_, err = uc.ChangeAddress(ctx, "missing", address)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = uc.ChangeAddress(ctx, "c1", domain.Address{})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestList(t *testing.T) {
	uc := customer.New(setupRepo(t), nil, nil, nil)
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		_, err := uc.Register(ctx, customer.RegisterInput{Name: name})
		require.NoError(t, err)
	}

	customers, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
}
