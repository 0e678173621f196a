package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/pkg/logger"
	"github.com/fastygo/checkout/usecase"
	checkoutUC "github.com/fastygo/checkout/usecase/checkout"
	customerUC "github.com/fastygo/checkout/usecase/customer"
)

type step struct {
	name    string
	query   bool
	payload any
}

// seedSteps registers a customer, moves them, and places then edits one
// order. Customer and order ids are fresh on every run so the scenario can
// be replayed against a persistent store.
func seedSteps() []step {
	customerID := uuid.NewString()
	orderID := uuid.NewString()
	itemID := uuid.NewString()

	return []step{
		{name: cmdSaveProduct, payload: productPayload{ID: "123", Name: "Product 1", Price: 10}},
		{name: cmdRegisterCustomer, payload: customerUC.RegisterInput{ID: customerID, Name: "Customer 1"}},
		{name: cmdChangeAddress, payload: changeAddressPayload{
			CustomerID: customerID,
			Address:    domain.Address{Street: "Street 1", Number: 1, Zip: "00000-000", City: "City"},
		}},
		{name: cmdPlaceOrder, payload: checkoutUC.PlaceOrderInput{
			OrderID:    orderID,
			CustomerID: customerID,
			Lines:      []checkoutUC.Line{{ItemID: itemID, ProductID: "123", Quantity: 2}},
		}},
		{name: cmdChangeItems, payload: changeItemsPayload{
			OrderID: orderID,
			Lines:   []checkoutUC.Line{{ItemID: itemID, ProductID: "123", Quantity: 5}},
		}},
		{name: qryOrder, query: true, payload: orderID},
		{name: qryOrders, query: true},
	}
}

// runScenario executes steps in order and stops at the first failure.
func runScenario(ctx context.Context, bus *usecase.Dispatcher, steps []step, log *zap.Logger) error {
	for i, s := range steps {
		stepCtx := logger.ContextWithOperationID(ctx, fmt.Sprintf("seed-%02d", i+1))
		stepLog := logger.WithOperationID(stepCtx, log).With(zap.String("step", s.name))

		var (
			result any
			err    error
		)
		if s.query {
			result, err = bus.ExecuteQuery(stepCtx, s.name, s.payload)
		} else {
			result, err = bus.ExecuteCommand(stepCtx, s.name, s.payload)
		}
		if err != nil {
			stepLog.Error("scenario step failed", zap.Error(err))
			return fmt.Errorf("%s: %w", s.name, err)
		}
		stepLog.Debug("scenario step done", describe(result)...)
	}
	return nil
}

func describe(result any) []zap.Field {
	switch v := result.(type) {
	case *domain.Order:
		return []zap.Field{zap.String("order_id", v.ID()), zap.Float64("total", v.Total())}
	case []domain.Order:
		return []zap.Field{zap.Int("orders", len(v))}
	case *domain.Customer:
		return []zap.Field{zap.String("customer_id", v.ID()), zap.Bool("active", v.IsActive())}
	case *domain.Product:
		return []zap.Field{zap.String("product_id", v.ID()), zap.Float64("price", v.Price())}
	default:
		return nil
	}
}
