package application

import (
	"context"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/saga"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CreateOrderCommand represents the command to create an order
type CreateOrderCommand struct {
	// Price is the order amount in minor units; nil is a zero-cost order
	Price    *int64 `json:"price"`
	Currency string `json:"currency,omitempty"`
}

// CreateOrderResponse represents the order record after the saga finished
type CreateOrderResponse struct {
	OrderID  string `json:"id"`
	Price    *int64 `json:"price"`
	Currency string `json:"currency,omitempty"`
	Status   string `json:"status"`
}

// CreateOrder drives the order saga: it creates the order and its saga
// instance, sequences the payment and inventory steps, records a
// compensation after each committed step, and rolls back in reverse order
// when a later step fails. Every state transition is persisted before the
// next remote call so a crash leaves a durable, inspectable state.
type CreateOrder struct {
	orders    domain.OrderRepository
	sagas     saga.Store
	registry  *saga.Registry
	payments  domain.PaymentClient
	inventory domain.InventoryClient
	publisher events.Publisher
	logger    *zap.Logger
}

// NewCreateOrder creates a new CreateOrder use case
func NewCreateOrder(
	orders domain.OrderRepository,
	sagas saga.Store,
	registry *saga.Registry,
	payments domain.PaymentClient,
	inventory domain.InventoryClient,
	publisher events.Publisher,
	logger *zap.Logger,
) *CreateOrder {
	return &CreateOrder{
		orders:    orders,
		sagas:     sagas,
		registry:  registry,
		payments:  payments,
		inventory: inventory,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute runs the saga to completion or cancellation
func (uc *CreateOrder) Execute(ctx context.Context, cmd *CreateOrderCommand) (*CreateOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "saga.create_order")
	defer span.End()

	amount, err := uc.parseAmount(cmd)
	if err != nil {
		return nil, errors.Wrap(err, "invalid command")
	}

	order, err := domain.CreateOrder(amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	span.SetAttributes(attribute.String("order.id", order.ID.String()))

	instance := saga.NewInstance(order.ID)

	// The saga instance is written first: startup recovery sweeps
	// saga_instances, so a crash between these two writes must leave the
	// instance behind, never an orphaned order it cannot see.
	if err := uc.sagas.Save(ctx, instance); err != nil {
		return nil, errors.Wrap(err, "failed to save saga instance")
	}

	if err := uc.orders.Save(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to save order")
	}
	order.ClearEvents()

	uc.publish(ctx, events.NewEvent(order.ID, events.SagaStartedEvent, sagaEventData{
		OrderID: order.ID,
		Status:  instance.Status,
	}))

	if err := uc.chargePayment(ctx, order, instance); err != nil {
		return nil, err
	}

	if err := uc.reserveInventory(ctx, order, instance); err != nil {
		return nil, err
	}

	if err := uc.complete(ctx, order, instance); err != nil {
		return nil, err
	}

	return toOrderResponse(order), nil
}

// chargePayment runs the payment step. The order id travels as the
// idempotency key, so a retry after an ambiguous timeout can never charge
// twice.
func (uc *CreateOrder) chargePayment(ctx context.Context, order *domain.Order, instance *saga.Instance) error {
	outcome, err := uc.payments.Charge(ctx, order.ID, order.AmountValue())

	switch outcome {
	case domain.ChargeApproved:
		return uc.commitStep(ctx, order, instance,
			saga.NewCompensation(saga.StepPayment, "refund payment"),
			saga.StatusPaymentProcessed,
			order.MarkPaymentProcessed,
		)

	case domain.ChargeDeclined:
		if rbErr := uc.rollbackAndCancel(ctx, order, instance, "payment declined", false); rbErr != nil {
			return rbErr
		}
		return domain.ErrPaymentDeclined

	default:
		if rbErr := uc.rollbackAndCancel(ctx, order, instance, "payment participant unreachable", true); rbErr != nil {
			return rbErr
		}
		return &domain.ParticipantUnreachableError{Step: saga.StepPayment, Cause: err}
	}
}

// reserveInventory runs the inventory step; on failure the refund
// compensation recorded by the payment step is executed.
func (uc *CreateOrder) reserveInventory(ctx context.Context, order *domain.Order, instance *saga.Instance) error {
	outcome, err := uc.inventory.Reserve(ctx, order.ID)

	switch outcome {
	case domain.ReserveReserved:
		return uc.commitStep(ctx, order, instance,
			saga.NewCompensation(saga.StepInventory, "release inventory"),
			saga.StatusInventoryReserved,
			order.MarkInventoryReserved,
		)

	case domain.ReserveOutOfStock:
		if rbErr := uc.rollbackAndCancel(ctx, order, instance, "inventory out of stock", false); rbErr != nil {
			return rbErr
		}
		return domain.ErrInventoryUnavailable

	default:
		if rbErr := uc.rollbackAndCancel(ctx, order, instance, "inventory participant unreachable", true); rbErr != nil {
			return rbErr
		}
		return &domain.ParticipantUnreachableError{Step: saga.StepInventory, Cause: err}
	}
}

// commitStep records the step's compensation and persists the saga
// transition before the orchestrator moves on to the next remote call
func (uc *CreateOrder) commitStep(
	ctx context.Context,
	order *domain.Order,
	instance *saga.Instance,
	comp saga.Compensation,
	next saga.Status,
	markOrder func() error,
) error {
	if err := uc.sagas.AppendCompensation(ctx, order.ID, comp); err != nil {
		return errors.Wrapf(err, "failed to record %s compensation", comp.Step)
	}
	if err := instance.AddCompensation(comp); err != nil {
		return err
	}

	if err := instance.Transition(next); err != nil {
		return err
	}
	if err := uc.sagas.Save(ctx, instance); err != nil {
		return errors.Wrap(err, "failed to persist saga transition")
	}

	if err := markOrder(); err != nil {
		return err
	}
	if err := uc.orders.Save(ctx, order); err != nil {
		return errors.Wrap(err, "failed to save order")
	}
	order.ClearEvents()

	return nil
}

func (uc *CreateOrder) complete(ctx context.Context, order *domain.Order, instance *saga.Instance) error {
	if err := instance.Transition(saga.StatusOrderCompleted); err != nil {
		return err
	}
	if err := uc.sagas.Save(ctx, instance); err != nil {
		return errors.Wrap(err, "failed to persist saga completion")
	}

	if err := order.Complete(); err != nil {
		return err
	}
	if err := uc.orders.Save(ctx, order); err != nil {
		return errors.Wrap(err, "failed to save completed order")
	}
	order.ClearEvents()

	uc.publish(ctx, events.NewEvent(order.ID, events.SagaCompletedEvent, sagaEventData{
		OrderID: order.ID,
		Status:  instance.Status,
	}))

	telemetry.RecordCounter(ctx, "saga_completed_total", "Sagas that reached order_completed", 1)

	uc.logger.Info("saga completed",
		zap.String("order_id", order.ID.String()),
		zap.Int("compensations_registered", len(instance.Compensations)),
	)

	return nil
}

// rollbackAndCancel runs the recorded compensations in reverse order and
// cancels the order. A compensation failure never aborts the remaining
// ones; if any failed, the saga lands in the pending-compensation
// sub-state and the pending event routes it to the reconciler queue.
func (uc *CreateOrder) rollbackAndCancel(ctx context.Context, order *domain.Order, instance *saga.Instance, reason string, uncertain bool) error {
	instance.Uncertain = instance.Uncertain || uncertain

	results := uc.registry.RunAll(ctx, instance)
	pending := !saga.AllSucceeded(results)

	next := saga.StatusOrderCancelled
	if pending {
		next = saga.StatusCancelledPendingCompensation
	}

	if err := instance.Transition(next); err != nil {
		return err
	}
	if err := uc.sagas.Save(ctx, instance); err != nil {
		return errors.Wrap(err, "failed to persist saga cancellation")
	}

	if err := order.Cancel(reason, pending); err != nil {
		return err
	}
	if err := uc.orders.Save(ctx, order); err != nil {
		return errors.Wrap(err, "failed to save cancelled order")
	}
	order.ClearEvents()

	if len(results) > 0 {
		uc.publish(ctx, events.NewEvent(order.ID, events.SagaCompensatedEvent, sagaEventData{
			OrderID: order.ID,
			Status:  instance.Status,
			Reason:  reason,
		}))
	}

	uc.publish(ctx, events.NewEvent(order.ID, events.SagaFailedEvent, sagaEventData{
		OrderID:   order.ID,
		Status:    instance.Status,
		Reason:    reason,
		Uncertain: instance.Uncertain,
	}))

	if pending {
		uc.publish(ctx, events.NewEvent(order.ID, events.CompensationPendingEvent, sagaEventData{
			OrderID: order.ID,
			Status:  instance.Status,
			Reason:  reason,
		}))
	}

	telemetry.RecordCounter(ctx, "saga_cancelled_total", "Sagas that ended in cancellation", 1,
		attribute.String("reason", reason),
		attribute.Bool("pending_compensation", pending),
	)

	uc.logger.Warn("saga cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("reason", reason),
		zap.Bool("uncertain", instance.Uncertain),
		zap.Bool("pending_compensation", pending),
		zap.Int("compensations_run", len(results)),
	)

	return nil
}

func (uc *CreateOrder) parseAmount(cmd *CreateOrderCommand) (*models.Money, error) {
	if cmd.Price == nil {
		return nil, nil
	}

	if *cmd.Price < 0 {
		return nil, errors.New("price must not be negative")
	}

	currency := cmd.Currency
	if currency == "" {
		currency = "USD"
	}

	amount := models.NewMoney(*cmd.Price, currency)
	return &amount, nil
}

// publish sends saga lifecycle events; publishing is best-effort and must
// never fail the saga itself
func (uc *CreateOrder) publish(ctx context.Context, event *events.Event) {
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("failed to publish saga event",
			zap.String("event_type", event.EventType),
			zap.String("order_id", event.AggregateID.String()),
			zap.Error(err),
		)
	}
}

type sagaEventData struct {
	OrderID   models.ID   `json:"order_id"`
	Status    saga.Status `json:"status"`
	Reason    string      `json:"reason,omitempty"`
	Uncertain bool        `json:"uncertain,omitempty"`
}
