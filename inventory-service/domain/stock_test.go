package domain

import (
	"sync"
	"testing"

	"github.com/draftea/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStock_Reserve(t *testing.T) {
	stock := NewStock(2)

	first := stock.Reserve(models.GenerateUUID())
	second := stock.Reserve(models.GenerateUUID())
	third := stock.Reserve(models.GenerateUUID())

	assert.Equal(t, ReservationStatusReserved, first.Status)
	assert.Equal(t, ReservationStatusReserved, second.Status)
	assert.Equal(t, ReservationStatusOutOfStock, third.Status)
	assert.Equal(t, int64(0), stock.Available())
}

func TestStock_Reserve_ReplayConsumesOneUnit(t *testing.T) {
	stock := NewStock(5)
	orderID := models.GenerateUUID()

	first := stock.Reserve(orderID)
	replay := stock.Reserve(orderID)

	assert.Equal(t, first, replay)
	assert.Equal(t, int64(4), stock.Available())
}

func TestStock_Reserve_ConcurrentNeverOversells(t *testing.T) {
	const capacity = 5
	const attempts = 20

	stock := NewStock(capacity)
	results := make([]Reservation, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = stock.Reserve(models.GenerateUUID())
		}(i)
	}
	wg.Wait()

	var reserved int
	for _, r := range results {
		if r.Status == ReservationStatusReserved {
			reserved++
		}
	}

	assert.Equal(t, capacity, reserved)
	assert.Equal(t, int64(0), stock.Available())
}

func TestStock_Release(t *testing.T) {
	stock := NewStock(1)
	orderID := models.GenerateUUID()
	stock.Reserve(orderID)
	require.Equal(t, int64(0), stock.Available())

	released, err := stock.Release(orderID)
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusReleased, released.Status)
	assert.Equal(t, int64(1), stock.Available())

	// Releasing twice frees nothing extra.
	_, err = stock.Release(orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stock.Available())
}

func TestStock_Release_OutOfStockReservationFreesNothing(t *testing.T) {
	stock := NewStock(0)
	orderID := models.GenerateUUID()

	reservation := stock.Reserve(orderID)
	require.Equal(t, ReservationStatusOutOfStock, reservation.Status)

	released, err := stock.Release(orderID)
	require.NoError(t, err)
	assert.Equal(t, ReservationStatusOutOfStock, released.Status)
	assert.Equal(t, int64(0), stock.Available())
}

func TestStock_Release_Unknown(t *testing.T) {
	stock := NewStock(1)

	_, err := stock.Release(models.GenerateUUID())

	assert.ErrorIs(t, err, ErrReservationNotFound)
}
