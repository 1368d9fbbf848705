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

// ReconcileCompensations is the out-of-band follow-up for sagas whose
// rollback did not fully succeed. It re-runs the recorded compensations
// (safe: participants deduplicate by idempotency key) and resolves the
// pending-compensation sub-state once every compensation has been applied.
// Returning an error leaves the triggering message on the queue for
// redelivery.
type ReconcileCompensations struct {
	orders    domain.OrderRepository
	sagas     saga.Store
	registry  *saga.Registry
	publisher events.Publisher
	logger    *zap.Logger
}

// NewReconcileCompensations creates a new ReconcileCompensations use case
func NewReconcileCompensations(
	orders domain.OrderRepository,
	sagas saga.Store,
	registry *saga.Registry,
	publisher events.Publisher,
	logger *zap.Logger,
) *ReconcileCompensations {
	return &ReconcileCompensations{
		orders:    orders,
		sagas:     sagas,
		registry:  registry,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute retries the outstanding compensations for one order
func (uc *ReconcileCompensations) Execute(ctx context.Context, orderID models.ID) error {
	instance, err := uc.sagas.Load(ctx, orderID)
	if err != nil {
		if errors.Is(err, saga.ErrNotFound) {
			uc.logger.Warn("reconcile requested for unknown saga", zap.String("order_id", orderID.String()))
			return nil
		}
		return errors.Wrap(err, "failed to load saga instance")
	}

	if instance.Status != saga.StatusCancelledPendingCompensation {
		// Already resolved by an earlier delivery
		return nil
	}

	results := uc.registry.RunAll(ctx, instance)
	if !saga.AllSucceeded(results) {
		return errors.Errorf("compensations still pending for order %s", orderID)
	}

	if err := instance.Transition(saga.StatusOrderCancelled); err != nil {
		return err
	}
	if err := uc.sagas.Save(ctx, instance); err != nil {
		return errors.Wrap(err, "failed to persist reconciled saga")
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to find order")
	}
	if order != nil {
		if err := order.ResolveCompensations(); err != nil {
			return err
		}
		if err := uc.orders.Save(ctx, order); err != nil {
			return errors.Wrap(err, "failed to save reconciled order")
		}
	}

	if err := uc.publisher.Publish(ctx, events.NewEvent(orderID, events.CompensationResolvedEvent, sagaEventData{
		OrderID: orderID,
		Status:  instance.Status,
	})); err != nil {
		uc.logger.Warn("failed to publish compensation resolved event",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}

	uc.logger.Info("pending compensations resolved",
		zap.String("order_id", orderID.String()),
		zap.Int("compensations_run", len(results)),
	)

	return nil
}
