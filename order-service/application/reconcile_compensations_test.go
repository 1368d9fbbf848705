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

type reconcileMocks struct {
	orders    *mocks.MockOrderRepository
	sagas     *mocks.MockSagaStore
	payments  *mocks.MockPaymentClient
	inventory *mocks.MockInventoryClient
	publisher *mocks.MockPublisher
}

func newReconcileCompensations(t *testing.T) (*ReconcileCompensations, *reconcileMocks) {
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

	uc := NewReconcileCompensations(m.orders, m.sagas, registry, m.publisher, logger)
	return uc, m
}

// pendingInstance builds a saga that cancelled with the payment refund
// still outstanding.
func pendingInstance(t *testing.T, orderID models.ID) *saga.Instance {
	instance := saga.NewInstance(orderID)
	require.NoError(t, instance.AddCompensation(saga.NewCompensation(saga.StepPayment, "refund payment")))
	require.NoError(t, instance.Transition(saga.StatusCancelledPendingCompensation))
	return instance
}

func TestReconcileCompensations_ResolvesPendingSaga(t *testing.T) {
	uc, m := newReconcileCompensations(t)
	orderID := models.GenerateUUID()

	order := &domain.Order{
		ID:         orderID,
		Status:     saga.StatusCancelledPendingCompensation,
		Timestamps: models.NewTimestamps(),
		Version:    models.NewVersion(),
	}

	var lastSagaStatus saga.Status
	var lastOrderStatus saga.Status

	m.sagas.EXPECT().Load(mock.Anything, orderID).Return(pendingInstance(t, orderID), nil).Once()
	m.payments.EXPECT().Refund(mock.Anything, orderID).Return(nil).Once()
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, instance *saga.Instance) {
			lastSagaStatus = instance.Status
		}).Return(nil).Once()
	m.orders.EXPECT().FindByID(mock.Anything, orderID).Return(order, nil).Once()
	m.orders.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, saved *domain.Order) {
			lastOrderStatus = saved.Status
		}).Return(nil).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	err := uc.Execute(context.Background(), orderID)

	require.NoError(t, err)
	assert.Equal(t, saga.StatusOrderCancelled, lastSagaStatus)
	assert.Equal(t, saga.StatusOrderCancelled, lastOrderStatus)
}

func TestReconcileCompensations_RefundStillFailing(t *testing.T) {
	uc, m := newReconcileCompensations(t)
	orderID := models.GenerateUUID()

	m.sagas.EXPECT().Load(mock.Anything, orderID).Return(pendingInstance(t, orderID), nil).Once()
	m.payments.EXPECT().Refund(mock.Anything, orderID).
		Return(errors.New("refund endpoint down")).Once()

	err := uc.Execute(context.Background(), orderID)

	// The error leaves the message on the queue for redelivery.
	require.Error(t, err)
	m.sagas.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReconcileCompensations_AlreadyResolved(t *testing.T) {
	uc, m := newReconcileCompensations(t)
	orderID := models.GenerateUUID()

	instance := saga.NewInstance(orderID)
	require.NoError(t, instance.Transition(saga.StatusOrderCancelled))

	m.sagas.EXPECT().Load(mock.Anything, orderID).Return(instance, nil).Once()

	err := uc.Execute(context.Background(), orderID)

	require.NoError(t, err)
	m.payments.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
	m.inventory.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestReconcileCompensations_UnknownSaga(t *testing.T) {
	uc, m := newReconcileCompensations(t)
	orderID := models.GenerateUUID()

	m.sagas.EXPECT().Load(mock.Anything, orderID).Return(nil, saga.ErrNotFound).Once()

	err := uc.Execute(context.Background(), orderID)

	require.NoError(t, err)
	m.sagas.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
