package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/repository"
)

func newOrder(t *testing.T) *domain.Order {
	t.Helper()
	i1, err := domain.NewOrderItem("1", "Product 1", 10, "p1", 2)
	require.NoError(t, err)
	i2, err := domain.NewOrderItem("2", "Product 2", 5, "p2", 1)
	require.NoError(t, err)
	order, err := domain.NewOrder("o1", "c1", []domain.OrderItem{*i1, *i2})
	require.NoError(t, err)
	return order
}

func TestOrderRecordRoundTrip(t *testing.T) {
	order := newOrder(t)

	record := repository.NewOrderRecord(order)
	assert.Equal(t, 25.0, record.Total)
	require.Len(t, record.Items, 2)
	assert.Equal(t, repository.OrderItemRow{
		ID: "2", OrderID: "o1", ProductID: "p2", Name: "Product 2", Price: 5, Quantity: 1, Position: 1,
	}, record.Items[1])
	assert.Equal(t, []string{"1", "2"}, record.ItemIDs())

	rebuilt, err := record.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, order, rebuilt)
	assert.NotSame(t, order, rebuilt)
}

func TestOrderRecordToDomain_IgnoresStoredTotal(t *testing.T) {
	record := repository.NewOrderRecord(newOrder(t))
	record.Total = 999

	rebuilt, err := record.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, 25.0, rebuilt.Total())
}

func TestOrderRecordToDomain_Corrupt(t *testing.T) {
	record := repository.OrderRecord{ID: "o1", CustomerID: "c1"}
	_, err := record.ToDomain()
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	record.Items = []repository.OrderItemRow{{ID: "1", OrderID: "o1", ProductID: "p1", Quantity: 0}}
	_, err = record.ToDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestGroupItems(t *testing.T) {
	headers := []repository.OrderRecord{{ID: "a"}, {ID: "b"}}
	items := []repository.OrderItemRow{
		{ID: "1", OrderID: "b"},
		{ID: "2", OrderID: "a"},
		{ID: "3", OrderID: "b"},
		{ID: "4", OrderID: "orphan"},
	}

	grouped := repository.GroupItems(headers, items)
	require.Len(t, grouped, 2)
	assert.Equal(t, []string{"2"}, grouped[0].ItemIDs())
	assert.Equal(t, []string{"1", "3"}, grouped[1].ItemIDs())
}
