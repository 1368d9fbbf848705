package application

import (
	"context"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/pkg/errors"
)

// ListOrdersResponse represents the order listing
type ListOrdersResponse struct {
	Orders []*CreateOrderResponse `json:"orders"`
}

// ListOrders use case
type ListOrders struct {
	orders domain.OrderRepository
}

// NewListOrders creates a new ListOrders use case
func NewListOrders(orders domain.OrderRepository) *ListOrders {
	return &ListOrders{orders: orders}
}

// Execute lists all orders
func (uc *ListOrders) Execute(ctx context.Context) (*ListOrdersResponse, error) {
	orders, err := uc.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	resp := &ListOrdersResponse{
		Orders: make([]*CreateOrderResponse, len(orders)),
	}
	for i, order := range orders {
		resp.Orders[i] = toOrderResponse(order)
	}

	return resp, nil
}
