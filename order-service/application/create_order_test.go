package application

import (
	"context"
	"testing"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/order-service/mocks"
	"github.com/draftea/order-system/shared/saga"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type createOrderMocks struct {
	orders    *mocks.MockOrderRepository
	sagas     *mocks.MockSagaStore
	payments  *mocks.MockPaymentClient
	inventory *mocks.MockInventoryClient
	publisher *mocks.MockPublisher
}

// newCreateOrder wires the use case against mocks, with the refund and
// release compensators backed by the same mock clients so rollback
// behaviour is observable through them.
func newCreateOrder(t *testing.T) (*CreateOrder, *createOrderMocks) {
	m := &createOrderMocks{
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

	uc := NewCreateOrder(m.orders, m.sagas, registry, m.payments, m.inventory, m.publisher, logger)
	return uc, m
}

func price(v int64) *int64 {
	return &v
}

func TestCreateOrder_HappyPath(t *testing.T) {
	uc, m := newCreateOrder(t)

	var lastSagaStatus saga.Status
	var compensationsRegistered int

	m.orders.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, instance *saga.Instance) {
			lastSagaStatus = instance.Status
			compensationsRegistered = len(instance.Compensations)
		}).Return(nil)
	m.sagas.EXPECT().AppendCompensation(mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.payments.EXPECT().Charge(mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ChargeApproved, nil).Once()
	m.inventory.EXPECT().Reserve(mock.Anything, mock.Anything).
		Return(domain.ReserveReserved, nil).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Price: price(500)})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, string(saga.StatusOrderCompleted), resp.Status)
	require.NotNil(t, resp.Price)
	assert.Equal(t, int64(500), *resp.Price)
	assert.Equal(t, "USD", resp.Currency)

	// Both steps registered their undo action; none of them ran.
	assert.Equal(t, saga.StatusOrderCompleted, lastSagaStatus)
	assert.Equal(t, 2, compensationsRegistered)
	m.payments.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
	m.inventory.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestCreateOrder_ZeroCostOrder(t *testing.T) {
	uc, m := newCreateOrder(t)

	m.orders.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
	m.sagas.EXPECT().AppendCompensation(mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.payments.EXPECT().Charge(mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ChargeApproved, nil).Once()
	m.inventory.EXPECT().Reserve(mock.Anything, mock.Anything).
		Return(domain.ReserveReserved, nil).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{})

	require.NoError(t, err)
	assert.Nil(t, resp.Price)
	assert.Equal(t, string(saga.StatusOrderCompleted), resp.Status)
}

func TestCreateOrder_NegativePrice(t *testing.T) {
	uc, _ := newCreateOrder(t)

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Price: price(-1)})

	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestCreateOrder_PaymentDeclined(t *testing.T) {
	uc, m := newCreateOrder(t)

	var lastSagaStatus saga.Status

	m.orders.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, instance *saga.Instance) {
			lastSagaStatus = instance.Status
		}).Return(nil)
	m.payments.EXPECT().Charge(mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ChargeDeclined, nil).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Price: price(1500)})

	require.ErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.Nil(t, resp)
	assert.Equal(t, saga.StatusOrderCancelled, lastSagaStatus)

	// Nothing committed before the decline, so nothing to undo.
	m.payments.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
	m.inventory.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	m.inventory.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestCreateOrder_InventoryOutOfStock_RefundsPayment(t *testing.T) {
	uc, m := newCreateOrder(t)

	var lastSagaStatus saga.Status

	m.orders.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, instance *saga.Instance) {
			lastSagaStatus = instance.Status
		}).Return(nil)
	m.sagas.EXPECT().AppendCompensation(mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.payments.EXPECT().Charge(mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ChargeApproved, nil).Once()
	m.inventory.EXPECT().Reserve(mock.Anything, mock.Anything).
		Return(domain.ReserveOutOfStock, nil).Once()
	m.payments.EXPECT().Refund(mock.Anything, mock.Anything).Return(nil).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Price: price(500)})

	require.ErrorIs(t, err, domain.ErrInventoryUnavailable)
	assert.Nil(t, resp)
	assert.Equal(t, saga.StatusOrderCancelled, lastSagaStatus)

	// Only the committed payment step is compensated.
	m.inventory.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestCreateOrder_PaymentUnreachable(t *testing.T) {
	uc, m := newCreateOrder(t)

	var uncertain bool

	m.orders.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, instance *saga.Instance) {
			uncertain = instance.Uncertain
		}).Return(nil)
	m.payments.EXPECT().Charge(mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ChargeUnreachable, errors.New("connection refused")).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Price: price(500)})

	require.Error(t, err)
	assert.Nil(t, resp)

	var unreachable *domain.ParticipantUnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, saga.StepPayment, unreachable.Step)

	// The charge may have landed on the remote side; the saga records that.
	assert.True(t, uncertain)
	m.payments.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestCreateOrder_RefundFails_PendingCompensation(t *testing.T) {
	uc, m := newCreateOrder(t)

	var lastSagaStatus saga.Status

	m.orders.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, instance *saga.Instance) {
			lastSagaStatus = instance.Status
		}).Return(nil)
	m.sagas.EXPECT().AppendCompensation(mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.payments.EXPECT().Charge(mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ChargeApproved, nil).Once()
	m.inventory.EXPECT().Reserve(mock.Anything, mock.Anything).
		Return(domain.ReserveUnreachable, errors.New("timeout")).Once()
	m.payments.EXPECT().Refund(mock.Anything, mock.Anything).
		Return(errors.New("refund endpoint down")).Once()
	m.publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Price: price(500)})

	require.Error(t, err)
	assert.Nil(t, resp)

	// The failed refund parks the saga for the reconciler instead of
	// silently losing the outstanding undo.
	assert.Equal(t, saga.StatusCancelledPendingCompensation, lastSagaStatus)
}

func TestCreateOrder_SagaInstancePersistedBeforeOrder(t *testing.T) {
	uc, m := newCreateOrder(t)

	var writes []string
	m.sagas.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, instance *saga.Instance) {
			writes = append(writes, "saga_instance")
		}).Return(nil).Once()
	m.orders.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, order *domain.Order) {
			writes = append(writes, "order")
		}).Return(errors.New("connection reset")).Once()

	resp, err := uc.Execute(context.Background(), &CreateOrderCommand{Price: price(500)})

	require.Error(t, err)
	assert.Nil(t, resp)

	// A crash between the two creation writes must leave the saga row
	// behind, since the startup sweep only sees saga_instances; writing
	// the order first would strand it outside recovery's reach.
	assert.Equal(t, []string{"saga_instance", "order"}, writes)
	m.payments.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything)
}
