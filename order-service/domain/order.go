package domain

import (
	"context"
	"time"

	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/saga"
	"github.com/pkg/errors"
)

// Order aggregate root. Its status mirrors the saga instance driving it;
// only the orchestrator mutates it, never a participant.
type Order struct {
	ID models.ID
	// Amount is nil for zero-cost orders; absent price on the wire is valid
	Amount     *models.Money
	Status     saga.Status
	Timestamps models.Timestamps
	Version    models.Version

	events []*events.Event
}

// CreateOrder allocates a new order in the initiated state. A nil amount
// is accepted and treated as a zero-cost order.
func CreateOrder(amount *models.Money) (*Order, error) {
	if amount != nil && amount.IsNegative() {
		return nil, errors.New("amount must not be negative")
	}

	order := &Order{
		ID:         models.GenerateUUID(),
		Amount:     amount,
		Status:     saga.StatusOrderInitiated,
		Timestamps: models.NewTimestamps(),
		Version:    models.NewVersion(),
	}

	order.recordEvent(events.NewEvent(order.ID, events.OrderCreatedEvent, OrderCreatedData{
		OrderID: order.ID,
		Amount:  order.AmountValue(),
	}))

	return order, nil
}

// AmountValue returns the charge amount, zero USD for zero-cost orders
func (o *Order) AmountValue() models.Money {
	if o.Amount == nil {
		return models.NewMoney(0, "USD")
	}
	return *o.Amount
}

// MarkPaymentProcessed records the payment step as committed
func (o *Order) MarkPaymentProcessed() error {
	if err := o.setStatus(saga.StatusPaymentProcessed); err != nil {
		return err
	}

	o.recordEvent(events.NewEvent(o.ID, events.OrderPaymentProcessedEvent, OrderStepData{
		OrderID: o.ID,
		Step:    saga.StepPayment,
	}))
	return nil
}

// MarkInventoryReserved records the inventory step as committed
func (o *Order) MarkInventoryReserved() error {
	if err := o.setStatus(saga.StatusInventoryReserved); err != nil {
		return err
	}

	o.recordEvent(events.NewEvent(o.ID, events.OrderInventoryReservedEvent, OrderStepData{
		OrderID: o.ID,
		Step:    saga.StepInventory,
	}))
	return nil
}

// Complete marks the saga as successfully finished
func (o *Order) Complete() error {
	if err := o.setStatus(saga.StatusOrderCompleted); err != nil {
		return err
	}

	o.recordEvent(events.NewEvent(o.ID, events.OrderCompletedEvent, OrderCompletedData{
		OrderID:     o.ID,
		Amount:      o.AmountValue(),
		CompletedAt: time.Now(),
	}))
	return nil
}

// Cancel marks the order as cancelled with a reason. When compensations
// are still outstanding the order enters the pending-compensation
// sub-state until the reconciler resolves them.
func (o *Order) Cancel(reason string, pendingCompensation bool) error {
	next := saga.StatusOrderCancelled
	if pendingCompensation {
		next = saga.StatusCancelledPendingCompensation
	}

	if err := o.setStatus(next); err != nil {
		return err
	}

	o.recordEvent(events.NewEvent(o.ID, events.OrderCancelledEvent, OrderCancelledData{
		OrderID:             o.ID,
		Reason:              reason,
		PendingCompensation: pendingCompensation,
		CancelledAt:         time.Now(),
	}))
	return nil
}

// ResolveCompensations finishes a cancellation once the reconciler has
// applied every outstanding compensation
func (o *Order) ResolveCompensations() error {
	if o.Status != saga.StatusCancelledPendingCompensation {
		return errors.Errorf("order %s has no pending compensations", o.ID)
	}
	return o.setStatus(saga.StatusOrderCancelled)
}

func (o *Order) setStatus(next saga.Status) error {
	if o.Status.IsTerminal() {
		return errors.Errorf("order %s is terminal (%s)", o.ID, o.Status)
	}

	o.Status = next
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Update()
	return nil
}

// Events returns domain events
func (o *Order) Events() []*events.Event {
	return o.events
}

// ClearEvents clears domain events
func (o *Order) ClearEvents() {
	o.events = make([]*events.Event, 0)
}

func (o *Order) recordEvent(event *events.Event) {
	o.events = append(o.events, event)
}

// Event Data Structures
type OrderCreatedData struct {
	OrderID models.ID    `json:"order_id"`
	Amount  models.Money `json:"amount"`
}

type OrderStepData struct {
	OrderID models.ID `json:"order_id"`
	Step    saga.Step `json:"step"`
}

type OrderCompletedData struct {
	OrderID     models.ID    `json:"order_id"`
	Amount      models.Money `json:"amount"`
	CompletedAt time.Time    `json:"completed_at"`
}

type OrderCancelledData struct {
	OrderID             models.ID `json:"order_id"`
	Reason              string    `json:"reason"`
	PendingCompensation bool      `json:"pending_compensation"`
	CancelledAt         time.Time `json:"cancelled_at"`
}

// OrderRepository interface
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id models.ID) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
}
