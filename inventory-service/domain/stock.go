package domain

import (
	"sync/atomic"
	"time"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultCapacity is the number of units available when none is configured
const DefaultCapacity int64 = 100

// ErrReservationNotFound is returned when no reservation exists for an order id
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationStatus represents the recorded decision for a reservation
type ReservationStatus string

const (
	ReservationStatusReserved   ReservationStatus = "reserved"
	ReservationStatusOutOfStock ReservationStatus = "out_of_stock"
	ReservationStatusReleased   ReservationStatus = "released"
)

// Reservation is one recorded reservation decision
type Reservation struct {
	OrderID   models.ID
	Status    ReservationStatus
	CreatedAt time.Time
}

// Stock tracks a single item's availability and the reservation decision
// per order id. The order id is the idempotency key: replaying a known
// reservation returns the recorded decision without consuming another
// unit.
type Stock struct {
	available    atomic.Int64
	reservations *xsync.MapOf[string, Reservation]
}

// NewStock creates a stock pool with the given capacity
func NewStock(capacity int64) *Stock {
	s := &Stock{
		reservations: xsync.NewMapOf[string, Reservation](),
	}
	s.available.Store(capacity)
	return s
}

// Available returns the number of unreserved units
func (s *Stock) Available() int64 {
	return s.available.Load()
}

// Reserve takes one unit for the order, or replays the recorded decision
func (s *Stock) Reserve(orderID models.ID) Reservation {
	reservation, _ := s.reservations.LoadOrCompute(orderID.String(), func() Reservation {
		status := ReservationStatusReserved
		if s.available.Add(-1) < 0 {
			s.available.Add(1)
			status = ReservationStatusOutOfStock
		}
		return Reservation{
			OrderID:   orderID,
			Status:    status,
			CreatedAt: time.Now(),
		}
	})
	return reservation
}

// Release returns the order's unit to the pool. Releasing twice is a
// no-op, and releasing a reservation that never got stock frees nothing.
func (s *Stock) Release(orderID models.ID) (Reservation, error) {
	var found bool
	reservation, _ := s.reservations.Compute(orderID.String(), func(old Reservation, loaded bool) (Reservation, bool) {
		if !loaded {
			return old, true
		}
		found = true
		if old.Status == ReservationStatusReserved {
			old.Status = ReservationStatusReleased
			s.available.Add(1)
		}
		return old, false
	})

	if !found {
		return Reservation{}, ErrReservationNotFound
	}
	return reservation, nil
}

// Get returns the recorded reservation for an order id
func (s *Stock) Get(orderID models.ID) (Reservation, bool) {
	return s.reservations.Load(orderID.String())
}
