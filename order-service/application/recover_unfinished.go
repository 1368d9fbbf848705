package application

import (
	"context"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/saga"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RecoverUnfinished sweeps sagas a crash left in a non-terminal state.
// Forward progress is never resumed: any step already committed is
// compensated and the saga is cancelled. Re-running compensations is safe
// because participants deduplicate by idempotency key.
type RecoverUnfinished struct {
	orders    domain.OrderRepository
	sagas     saga.Store
	registry  *saga.Registry
	publisher events.Publisher
	logger    *zap.Logger
}

// NewRecoverUnfinished creates a new RecoverUnfinished use case
func NewRecoverUnfinished(
	orders domain.OrderRepository,
	sagas saga.Store,
	registry *saga.Registry,
	publisher events.Publisher,
	logger *zap.Logger,
) *RecoverUnfinished {
	return &RecoverUnfinished{
		orders:    orders,
		sagas:     sagas,
		registry:  registry,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute compensates and cancels every unfinished saga. Individual
// failures are logged and do not stop the sweep.
func (uc *RecoverUnfinished) Execute(ctx context.Context) error {
	instances, err := uc.sagas.ListUnfinished(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list unfinished sagas")
	}

	for _, instance := range instances {
		if err := uc.recover(ctx, instance); err != nil {
			uc.logger.Error("failed to recover saga",
				zap.String("order_id", instance.OrderID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (uc *RecoverUnfinished) recover(ctx context.Context, instance *saga.Instance) error {
	wasPending := instance.Status == saga.StatusCancelledPendingCompensation

	results := uc.registry.RunAll(ctx, instance)
	pending := !saga.AllSucceeded(results)

	if pending {
		if !wasPending {
			if err := instance.Transition(saga.StatusCancelledPendingCompensation); err != nil {
				return err
			}
			if err := uc.sagas.Save(ctx, instance); err != nil {
				return errors.Wrap(err, "failed to persist recovered saga")
			}
			if err := uc.cancelOrder(ctx, instance.OrderID, true); err != nil {
				return err
			}
		}

		uc.publish(ctx, events.NewEvent(instance.OrderID, events.CompensationPendingEvent, sagaEventData{
			OrderID: instance.OrderID,
			Status:  instance.Status,
			Reason:  "recovered after restart",
		}))
		return nil
	}

	if err := instance.Transition(saga.StatusOrderCancelled); err != nil {
		return err
	}
	if err := uc.sagas.Save(ctx, instance); err != nil {
		return errors.Wrap(err, "failed to persist recovered saga")
	}
	if err := uc.cancelOrder(ctx, instance.OrderID, false); err != nil {
		return err
	}

	eventType := events.SagaCompensatedEvent
	if wasPending {
		eventType = events.CompensationResolvedEvent
	}
	uc.publish(ctx, events.NewEvent(instance.OrderID, eventType, sagaEventData{
		OrderID: instance.OrderID,
		Status:  instance.Status,
		Reason:  "recovered after restart",
	}))

	uc.logger.Info("recovered unfinished saga",
		zap.String("order_id", instance.OrderID.String()),
		zap.Int("compensations_run", len(results)),
	)

	return nil
}

func (uc *RecoverUnfinished) cancelOrder(ctx context.Context, orderID models.ID, pending bool) error {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to find order")
	}
	if order == nil || order.Status.IsTerminal() {
		return nil
	}

	if order.Status == saga.StatusCancelledPendingCompensation {
		if pending {
			return nil
		}
		if err := order.ResolveCompensations(); err != nil {
			return err
		}
	} else {
		if err := order.Cancel("recovered after restart", pending); err != nil {
			return err
		}
	}

	if err := uc.orders.Save(ctx, order); err != nil {
		return errors.Wrap(err, "failed to save recovered order")
	}
	order.ClearEvents()
	return nil
}

func (uc *RecoverUnfinished) publish(ctx context.Context, event *events.Event) {
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("failed to publish recovery event",
			zap.String("event_type", event.EventType),
			zap.String("order_id", event.AggregateID.String()),
			zap.Error(err),
		)
	}
}
