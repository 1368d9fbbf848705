package domain

import (
	"sync"
	"testing"

	"github.com/draftea/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Charge(t *testing.T) {
	tests := []struct {
		name           string
		amount         int64
		expectedStatus ChargeStatus
	}{
		{name: "approves below threshold", amount: 500, expectedStatus: ChargeStatusApproved},
		{name: "approves at threshold", amount: 1000, expectedStatus: ChargeStatusApproved},
		{name: "declines above threshold", amount: 1500, expectedStatus: ChargeStatusDeclined},
		{name: "approves zero amount", amount: 0, expectedStatus: ChargeStatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(DefaultDeclineThreshold)
			orderID := models.GenerateUUID()

			charge := ledger.Charge(orderID, models.NewMoney(tt.amount, "USD"))

			assert.Equal(t, tt.expectedStatus, charge.Status)
			assert.Equal(t, orderID, charge.OrderID)
		})
	}
}

func TestLedger_Charge_ReplayReturnsRecordedDecision(t *testing.T) {
	ledger := NewLedger(DefaultDeclineThreshold)
	orderID := models.GenerateUUID()

	first := ledger.Charge(orderID, models.NewMoney(500, "USD"))
	// A replay with a different amount still returns the original decision.
	replay := ledger.Charge(orderID, models.NewMoney(9999, "USD"))

	assert.Equal(t, first, replay)
	assert.Equal(t, ChargeStatusApproved, replay.Status)
	assert.Equal(t, int64(500), replay.Amount.Amount)
}

func TestLedger_Charge_ConcurrentReplaysChargeOnce(t *testing.T) {
	ledger := NewLedger(DefaultDeclineThreshold)
	orderID := models.GenerateUUID()

	const attempts = 50
	results := make([]Charge, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ledger.Charge(orderID, models.NewMoney(500, "USD"))
		}(i)
	}
	wg.Wait()

	for i := 1; i < attempts; i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestLedger_Refund(t *testing.T) {
	ledger := NewLedger(DefaultDeclineThreshold)
	orderID := models.GenerateUUID()
	ledger.Charge(orderID, models.NewMoney(500, "USD"))

	refunded, err := ledger.Refund(orderID)
	require.NoError(t, err)
	assert.Equal(t, ChargeStatusRefunded, refunded.Status)

	// Refunding twice is a no-op.
	again, err := ledger.Refund(orderID)
	require.NoError(t, err)
	assert.Equal(t, ChargeStatusRefunded, again.Status)
}

func TestLedger_Refund_UnknownCharge(t *testing.T) {
	ledger := NewLedger(DefaultDeclineThreshold)

	_, err := ledger.Refund(models.GenerateUUID())

	assert.ErrorIs(t, err, ErrChargeNotFound)
}
