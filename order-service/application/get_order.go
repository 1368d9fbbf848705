package application

import (
	"context"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// GetOrderQuery represents the query to retrieve an order
type GetOrderQuery struct {
	OrderID string `json:"order_id"`
}

// GetOrder use case
type GetOrder struct {
	orders domain.OrderRepository
}

// NewGetOrder creates a new GetOrder use case
func NewGetOrder(orders domain.OrderRepository) *GetOrder {
	return &GetOrder{orders: orders}
}

// Execute retrieves one order by id
func (uc *GetOrder) Execute(ctx context.Context, query *GetOrderQuery) (*CreateOrderResponse, error) {
	orderID, err := models.NewID(query.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	return toOrderResponse(order), nil
}

func toOrderResponse(order *domain.Order) *CreateOrderResponse {
	resp := &CreateOrderResponse{
		OrderID: order.ID.String(),
		Status:  string(order.Status),
	}

	if order.Amount != nil {
		resp.Price = &order.Amount.Amount
		resp.Currency = order.Amount.Currency
	}

	return resp
}
