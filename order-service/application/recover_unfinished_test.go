package application

import (
	"context"
	"testing"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/order-service/mocks"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/saga"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRecoverUnfinished(t *testing.T) (*RecoverUnfinished, *reconcileMocks) {
	m := &reconcileMocks{
		orders:    mocks.NewMockOrderRepository(t),
		sagas:     mocks.NewMockSagaStore(t),
		payments:  mocks.NewMockPaymentClient(t),
		inventory: mocks.NewMockInventoryClient(t),
		publisher: mocks.NewMockPublisher(t),
	}

	logger := zap.NewNop()
	registry := saga.NewRegistry(logger)
	registry.Register(saga.NewCompensatorFunc(saga.StepPayment, m.payments.Refund))
	registry.Register(saga.NewCompensatorFunc(saga.StepInventory, m.inventory.Release))

	uc := NewRecoverUnfinished(m.orders, m.sagas, registry, m.publisher, logger)
	return uc, m
}

func TestRecoverUnfinished_NoUnfinishedSagas(t *testing.T) {
	uc, m := newRecoverUnfinished(t)

	m.sagas.EXPECT().ListUnfinished(mock.Anything).Return(nil, nil).Once()

	require.NoError(t, uc.Execute(context.Background()))
}

func TestRecoverUnfinished_CompensatesCrashedSaga(t *testing.T) {
	uc, m := newRecoverUnfinished(t)
	orderID := models.GenerateUUID()

	// Crashed after the payment step committed, before inventory.
	instance := saga.NewInstance(orderID)
	require.NoError(t, instance.AddCompensation(saga.NewCompensation(saga.StepPayment, "refund payment")))
	require.NoError(t, instance.Transition(saga.StatusPaymentProcessed))

	order := &domain.Order{
		ID:         orderID,
		Status:     saga.StatusPaymentProcessed,
		Timestamps: models.NewTimestamps(),
		Version:    models.NewVersion(),
	}

	var lastSagaStatus saga.Status
	var lastOrderStatus saga.Status

	m.sagas.EXPECT().ListUnfinished(mock.Anything).Return([]*saga.Instance{instance}, nil).Once()
	m.payments.EXPECT().Refund(mock.Anything, orderID).Return(nil).Once()
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, saved *saga.Instance) {
			lastSagaStatus = saved.Status
		}).Return(nil).Once()
	m.orders.EXPECT().FindByID(mock.Anything, orderID).Return(order, nil).Once()
	m.orders.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, saved *domain.Order) {
			lastOrderStatus = saved.Status
		}).Return(nil).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, uc.Execute(context.Background()))

	assert.Equal(t, saga.StatusOrderCancelled, lastSagaStatus)
	assert.Equal(t, saga.StatusOrderCancelled, lastOrderStatus)
	m.inventory.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestRecoverUnfinished_PendingSagaStillFailing(t *testing.T) {
	uc, m := newRecoverUnfinished(t)
	orderID := models.GenerateUUID()

	instance := pendingInstance(t, orderID)

	m.sagas.EXPECT().ListUnfinished(mock.Anything).Return([]*saga.Instance{instance}, nil).Once()
	m.payments.EXPECT().Refund(mock.Anything, orderID).
		Return(errors.New("refund endpoint down")).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, uc.Execute(context.Background()))

	// Still parked for the reconciler; no status rewrite needed.
	m.sagas.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
