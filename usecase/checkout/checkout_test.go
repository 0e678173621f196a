package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/domain/event"
	"github.com/fastygo/checkout/internal/infrastructure/sqlite"
	"github.com/fastygo/checkout/repository"
	sqliteRepo "github.com/fastygo/checkout/repository/sqlite"
	"github.com/fastygo/checkout/usecase/checkout"
)

type recorder struct {
	names []event.Name
	err   error
}

func (r *recorder) Handle(_ context.Context, e event.Event) error {
	r.names = append(r.names, e.EventName())
	return r.err
}

type bufferSpy struct {
	orders []string
	err    error
}

func (b *bufferSpy) BufferOrder(_ context.Context, operation string, order *domain.Order) error {
	b.orders = append(b.orders, operation+":"+order.ID())
	return b.err
}

func (b *bufferSpy) BufferCustomer(context.Context, string, *domain.Customer) error {
	return errors.New("unexpected customer write")
}

// downOrders fails every write as if the database were unreachable.
type downOrders struct {
	repository.OrderRepository
}

func (downOrders) Create(context.Context, *domain.Order) error {
	return domain.WrapError(domain.ErrCodeUnavailable, "storage unavailable", errors.New("connection refused"))
}

type fixture struct {
	db       *sqlx.DB
	orders   repository.OrderRepository
	products repository.ProductRepository
	events   *event.Dispatcher
	rec      *recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		db:       db,
		orders:   sqliteRepo.NewOrderRepository(db),
		products: sqliteRepo.NewProductRepository(db),
		events:   event.NewDispatcher(),
		rec:      &recorder{},
	}
	f.events.Register(domain.EventOrderPlaced, f.rec)
	f.events.Register(domain.EventOrderItemsChanged, f.rec)

	for _, p := range []struct {
		id    string
		price float64
	}{{"123", 10}, {"456", 2.5}} {
		product, err := domain.NewProduct(p.id, "Product "+p.id, p.price)
		require.NoError(t, err)
		require.NoError(t, f.products.Create(context.Background(), product))
	}
	return f
}

func TestPlaceOrder(t *testing.T) {
	f := setup(t)
	uc := checkout.New(f.orders, f.products, f.events, nil, nil)
	ctx := context.Background()

	order, err := uc.PlaceOrder(ctx, checkout.PlaceOrderInput{
		OrderID:    "o1",
		CustomerID: "c1",
		Lines: []checkout.Line{
			{ItemID: "1", ProductID: "123", Quantity: 2},
			{ProductID: "456", Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, order.Total())

	items := order.Items()
	assert.Equal(t, "Product 123", items[0].Name())
	assert.NotEmpty(t, items[1].ID())

	stored, err := uc.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order, stored)
	assert.Equal(t, []event.Name{domain.EventOrderPlaced}, f.rec.names)
}

func TestPlaceOrder_GeneratesID(t *testing.T) {
	f := setup(t)
	uc := checkout.New(f.orders, f.products, nil, nil, nil)

	order, err := uc.PlaceOrder(context.Background(), checkout.PlaceOrderInput{
		CustomerID: "c1",
		Lines:      []checkout.Line{{ProductID: "123", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID())
}

func TestPlaceOrder_Rejected(t *testing.T) {
	tests := []struct {
		name string
		in   checkout.PlaceOrderInput
		want error
	}{
		{"no lines", checkout.PlaceOrderInput{OrderID: "o1", CustomerID: "c1"}, domain.ErrEmptyItems},
		{"unknown product", checkout.PlaceOrderInput{OrderID: "o1", CustomerID: "c1",
			Lines: []checkout.Line{{ProductID: "nope", Quantity: 1}}}, domain.ErrProductNotFound},
		{"missing product id", checkout.PlaceOrderInput{OrderID: "o1", CustomerID: "c1",
			Lines: []checkout.Line{{Quantity: 1}}}, domain.ErrEmptyProductID},
		{"zero quantity", checkout.PlaceOrderInput{OrderID: "o1", CustomerID: "c1",
			Lines: []checkout.Line{{ProductID: "123", Quantity: 0}}}, domain.ErrInvalidQuantity},
		{"no customer", checkout.PlaceOrderInput{OrderID: "o1",
			Lines: []checkout.Line{{ProductID: "123", Quantity: 1}}}, domain.ErrEmptyCustomerID},
		{"duplicate item ids", checkout.PlaceOrderInput{OrderID: "o1", CustomerID: "c1",
			Lines: []checkout.Line{{ItemID: "1", ProductID: "123", Quantity: 1}, {ItemID: "1", ProductID: "456", Quantity: 1}}}, domain.ErrDuplicateItemID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			uc := checkout.New(f.orders, f.products, f.events, nil, nil)

			_, err := uc.PlaceOrder(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.rec.names, "no event for a rejected order")

			orders, err := uc.ListOrders(context.Background())
			require.NoError(t, err)
			assert.Empty(t, orders)
		})
	}
}

func TestPlaceOrder_Duplicate(t *testing.T) {
	f := setup(t)
	uc := checkout.New(f.orders, f.products, f.events, &bufferSpy{}, nil)
	in := checkout.PlaceOrderInput{OrderID: "o1", CustomerID: "c1", Lines: []checkout.Line{{ProductID: "123", Quantity: 1}}}

	_, err := uc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)

	_, err = uc.PlaceOrder(context.Background(), in)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict), "conflicts are not buffered")
	assert.Len(t, f.rec.names, 1)
}

func TestPlaceOrder_BuffersWhenStorageIsDown(t *testing.T) {
	f := setup(t)
	spy := &bufferSpy{}
	uc := checkout.New(downOrders{f.orders}, f.products, f.events, spy, nil)

	order, err := uc.PlaceOrder(context.Background(), checkout.PlaceOrderInput{
		OrderID: "o1", CustomerID: "c1", Lines: []checkout.Line{{ProductID: "123", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID())
	assert.Equal(t, []string{"create:o1"}, spy.orders)
	assert.Equal(t, []event.Name{domain.EventOrderPlaced}, f.rec.names)
}

func TestPlaceOrder_BufferFailureReturnsCause(t *testing.T) {
	f := setup(t)
	spy := &bufferSpy{err: errors.New("disk full")}
	uc := checkout.New(downOrders{f.orders}, f.products, f.events, spy, nil)

	_, err := uc.PlaceOrder(context.Background(), checkout.PlaceOrderInput{
		OrderID: "o1", CustomerID: "c1", Lines: []checkout.Line{{ProductID: "123", Quantity: 1}},
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
	assert.Empty(t, f.rec.names)
}

func TestPlaceOrder_HandlerErrorIsReturned(t *testing.T) {
	f := setup(t)
	f.rec.err = errors.New("handler failed")
	uc := checkout.New(f.orders, f.products, f.events, nil, nil)

	order, err := uc.PlaceOrder(context.Background(), checkout.PlaceOrderInput{
		OrderID: "o1", CustomerID: "c1", Lines: []checkout.Line{{ProductID: "123", Quantity: 1}},
	})
	assert.ErrorIs(t, err, f.rec.err)
	require.NotNil(t, order, "the order was already stored")

	_, err = uc.GetOrder(context.Background(), "o1")
	assert.NoError(t, err)
}

func TestChangeItems(t *testing.T) {
	f := setup(t)
	uc := checkout.New(f.orders, f.products, f.events, nil, nil)
	ctx := context.Background()

	_, err := uc.PlaceOrder(ctx, checkout.PlaceOrderInput{
		OrderID: "123", CustomerID: "c1", Lines: []checkout.Line{{ItemID: "1", ProductID: "123", Quantity: 2}},
	})
	require.NoError(t, err)

	order, err := uc.ChangeItems(ctx, "123", []checkout.Line{{ItemID: "1", ProductID: "123", Quantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, 50.0, order.Total())

	stored, err := uc.GetOrder(ctx, "123")
	require.NoError(t, err)
	require.Len(t, stored.Items(), 1)
	assert.Equal(t, 5, stored.Items()[0].Quantity())
	assert.Equal(t, []event.Name{domain.EventOrderPlaced, domain.EventOrderItemsChanged}, f.rec.names)

	_, err = uc.ChangeItems(ctx, "missing", []checkout.Line{{ProductID: "123", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = uc.ChangeItems(ctx, "123", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyItems)
}

func TestListOrders(t *testing.T) {
	f := setup(t)
	uc := checkout.New(f.orders, f.products, nil, nil, nil)
	ctx := context.Background()

	for _, id := range []string{"o1", "o2"} {
		_, err := uc.PlaceOrder(ctx, checkout.PlaceOrderInput{
			OrderID: id, CustomerID: "c1", Lines: []checkout.Line{{ProductID: "456", Quantity: 2}},
		})
		require.NoError(t, err)
	}

	orders, err := uc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
