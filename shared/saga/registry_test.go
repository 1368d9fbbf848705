package saga

import (
	"context"
	"testing"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry_RunAll_LIFOOrder(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	var executed []Step
	registry.Register(NewCompensatorFunc(StepPayment, func(ctx context.Context, orderID models.ID) error {
		executed = append(executed, StepPayment)
		return nil
	}))
	registry.Register(NewCompensatorFunc(StepInventory, func(ctx context.Context, orderID models.ID) error {
		executed = append(executed, StepInventory)
		return nil
	}))

	instance := NewInstance(models.GenerateUUID())
	require.NoError(t, instance.AddCompensation(NewCompensation(StepPayment, "refund payment")))
	require.NoError(t, instance.AddCompensation(NewCompensation(StepInventory, "release inventory")))

	results := registry.RunAll(context.Background(), instance)

	require.Len(t, results, 2)
	assert.True(t, AllSucceeded(results))
	// Registered payment then inventory; rollback must undo inventory first
	assert.Equal(t, []Step{StepInventory, StepPayment}, executed)
	assert.True(t, instance.RollbackStarted)
}

func TestRegistry_RunAll_ContinuesPastFailures(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	var paymentCompensated bool
	registry.Register(NewCompensatorFunc(StepPayment, func(ctx context.Context, orderID models.ID) error {
		paymentCompensated = true
		return nil
	}))
	registry.Register(NewCompensatorFunc(StepInventory, func(ctx context.Context, orderID models.ID) error {
		return errors.New("inventory participant down")
	}))

	instance := NewInstance(models.GenerateUUID())
	require.NoError(t, instance.AddCompensation(NewCompensation(StepPayment, "refund payment")))
	require.NoError(t, instance.AddCompensation(NewCompensation(StepInventory, "release inventory")))

	results := registry.RunAll(context.Background(), instance)

	require.Len(t, results, 2)
	assert.False(t, AllSucceeded(results))
	assert.Equal(t, StepInventory, results[0].Step)
	assert.Error(t, results[0].Err)
	assert.Equal(t, StepPayment, results[1].Step)
	assert.NoError(t, results[1].Err)
	// The earlier compensation still ran despite the failure before it
	assert.True(t, paymentCompensated)
}

func TestRegistry_RunAll_MissingCompensator(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	instance := NewInstance(models.GenerateUUID())
	require.NoError(t, instance.AddCompensation(NewCompensation(StepPayment, "refund payment")))

	results := registry.RunAll(context.Background(), instance)

	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestRegistry_RunAll_Empty(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	instance := NewInstance(models.GenerateUUID())

	results := registry.RunAll(context.Background(), instance)
	assert.Empty(t, results)
}
