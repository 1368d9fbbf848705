package handlers

import (
	"context"

	"github.com/draftea/order-system/order-service/application"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// OrderEventHandlers routes queue events to their use cases. Returning an
// error keeps the message on the queue for redelivery.
type OrderEventHandlers struct {
	reconcileCompensations *application.ReconcileCompensations
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(reconcileCompensations *application.ReconcileCompensations) *OrderEventHandlers {
	return &OrderEventHandlers{
		reconcileCompensations: reconcileCompensations,
	}
}

// Handle implements the events.EventHandler interface
func (h *OrderEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.CompensationPendingEvent:
		return h.handleCompensationPending(ctx, event)
	default:
		// Unknown event type, ignore
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *OrderEventHandlers) HandlerID() string {
	return "order-service-event-handler"
}

type compensationPendingPayload struct {
	OrderID string `json:"order_id"`
}

func (h *OrderEventHandlers) handleCompensationPending(ctx context.Context, event *events.Event) error {
	var payload compensationPendingPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return errors.Wrap(err, "failed to unmarshal compensation pending payload")
	}

	orderID, err := models.NewID(payload.OrderID)
	if err != nil {
		return errors.Wrap(err, "invalid order ID in compensation pending event")
	}

	return h.reconcileCompensations.Execute(ctx, orderID)
}
