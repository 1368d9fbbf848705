package domain

import (
	"time"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultDeclineThreshold is the charge amount, in minor units, above
// which the participant declines
const DefaultDeclineThreshold int64 = 1000

// ErrChargeNotFound is returned when no charge exists for an order id
var ErrChargeNotFound = errors.New("charge not found")

// ChargeStatus represents the recorded decision for a charge
type ChargeStatus string

const (
	ChargeStatusApproved ChargeStatus = "approved"
	ChargeStatusDeclined ChargeStatus = "declined"
	ChargeStatusRefunded ChargeStatus = "refunded"
)

// Charge is one recorded charge decision
type Charge struct {
	OrderID   models.ID
	Amount    models.Money
	Status    ChargeStatus
	CreatedAt time.Time
}

// Ledger records every charge decision keyed by the order id, which the
// orchestrator sends as the idempotency key. A replayed charge for a
// known key returns the recorded decision without touching funds again,
// so a retry after an ambiguous timeout can never charge twice.
type Ledger struct {
	declineThreshold int64
	charges          *xsync.MapOf[string, Charge]
}

// NewLedger creates an empty ledger with the given decline threshold
func NewLedger(declineThreshold int64) *Ledger {
	return &Ledger{
		declineThreshold: declineThreshold,
		charges:          xsync.NewMapOf[string, Charge](),
	}
}

// Charge applies the charge decision for an order, or replays the
// recorded one
func (l *Ledger) Charge(orderID models.ID, amount models.Money) Charge {
	charge, _ := l.charges.LoadOrCompute(orderID.String(), func() Charge {
		status := ChargeStatusApproved
		if amount.Amount > l.declineThreshold {
			status = ChargeStatusDeclined
		}
		return Charge{
			OrderID:   orderID,
			Amount:    amount,
			Status:    status,
			CreatedAt: time.Now(),
		}
	})
	return charge
}

// Refund marks an approved charge as refunded. Refunding an already
// refunded charge is a no-op.
func (l *Ledger) Refund(orderID models.ID) (Charge, error) {
	var found bool
	charge, _ := l.charges.Compute(orderID.String(), func(old Charge, loaded bool) (Charge, bool) {
		if !loaded {
			return old, true
		}
		found = true
		if old.Status == ChargeStatusApproved {
			old.Status = ChargeStatusRefunded
		}
		return old, false
	})

	if !found {
		return Charge{}, ErrChargeNotFound
	}
	return charge, nil
}

// Get returns the recorded charge for an order id
func (l *Ledger) Get(orderID models.ID) (Charge, bool) {
	return l.charges.Load(orderID.String())
}
