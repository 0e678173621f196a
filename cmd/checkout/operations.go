package main

import (
	"context"

	"github.com/fastygo/checkout/domain"
	"github.com/fastygo/checkout/repository"
	"github.com/fastygo/checkout/usecase"
	checkoutUC "github.com/fastygo/checkout/usecase/checkout"
	customerUC "github.com/fastygo/checkout/usecase/customer"
)

const (
	cmdSaveProduct      = "product.save"
	cmdRegisterCustomer = "customer.register"
	cmdChangeAddress    = "customer.change_address"
	cmdPlaceOrder       = "order.place"
	cmdChangeItems      = "order.change_items"

	qryCustomer = "customer.get"
	qryOrder    = "order.get"
	qryOrders   = "order.list"
)

type productPayload struct {
	ID    string
	Name  string
	Price float64
}

type changeAddressPayload struct {
	CustomerID string
	Address    domain.Address
}

type changeItemsPayload struct {
	OrderID string
	Lines   []checkoutUC.Line
}

func registerOperations(
	bus *usecase.Dispatcher,
	customers *customerUC.UseCase,
	orders *checkoutUC.UseCase,
	products repository.ProductRepository,
) {
	bus.RegisterCommand(cmdSaveProduct, func(ctx context.Context, payload any) (any, error) {
		in, err := usecase.Payload[productPayload](payload)
		if err != nil {
			return nil, err
		}
		return saveProduct(ctx, products, in)
	})

	bus.RegisterCommand(cmdRegisterCustomer, func(ctx context.Context, payload any) (any, error) {
		in, err := usecase.Payload[customerUC.RegisterInput](payload)
		if err != nil {
			return nil, err
		}
		return customers.Register(ctx, in)
	})

	bus.RegisterCommand(cmdChangeAddress, func(ctx context.Context, payload any) (any, error) {
		in, err := usecase.Payload[changeAddressPayload](payload)
		if err != nil {
			return nil, err
		}
		return customers.ChangeAddress(ctx, in.CustomerID, in.Address)
	})

	bus.RegisterCommand(cmdPlaceOrder, func(ctx context.Context, payload any) (any, error) {
		in, err := usecase.Payload[checkoutUC.PlaceOrderInput](payload)
		if err != nil {
			return nil, err
		}
		return orders.PlaceOrder(ctx, in)
	})

	bus.RegisterCommand(cmdChangeItems, func(ctx context.Context, payload any) (any, error) {
		in, err := usecase.Payload[changeItemsPayload](payload)
		if err != nil {
			return nil, err
		}
		return orders.ChangeItems(ctx, in.OrderID, in.Lines)
	})

	bus.RegisterQuery(qryCustomer, func(ctx context.Context, params any) (any, error) {
		id, err := usecase.Payload[string](params)
		if err != nil {
			return nil, err
		}
		return customers.Get(ctx, id)
	})

	bus.RegisterQuery(qryOrder, func(ctx context.Context, params any) (any, error) {
		id, err := usecase.Payload[string](params)
		if err != nil {
			return nil, err
		}
		return orders.GetOrder(ctx, id)
	})

	bus.RegisterQuery(qryOrders, func(ctx context.Context, _ any) (any, error) {
		return orders.ListOrders(ctx)
	})
}

// saveProduct creates the product or overwrites its name and price.
func saveProduct(ctx context.Context, products repository.ProductRepository, in productPayload) (*domain.Product, error) {
	product, err := domain.NewProduct(in.ID, in.Name, in.Price)
	if err != nil {
		return nil, err
	}
	err = products.Create(ctx, product)
	if domain.IsDomainError(err, domain.ErrCodeConflict) {
		err = products.Update(ctx, product)
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}
