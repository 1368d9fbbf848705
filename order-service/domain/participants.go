package domain

import (
	"context"

	"github.com/draftea/order-system/shared/models"
)

// ChargeOutcome is the three-way result of a payment charge attempt
type ChargeOutcome string

const (
	ChargeApproved ChargeOutcome = "approved"
	ChargeDeclined ChargeOutcome = "declined"
	// ChargeUnreachable covers timeouts, connection failures and remote
	// 5xx responses. The remote side may still have committed.
	ChargeUnreachable ChargeOutcome = "unreachable"
)

// ReserveOutcome is the three-way result of an inventory reservation attempt
type ReserveOutcome string

const (
	ReserveReserved    ReserveOutcome = "reserved"
	ReserveOutOfStock  ReserveOutcome = "out_of_stock"
	ReserveUnreachable ReserveOutcome = "unreachable"
)

// PaymentClient invokes the remote payment participant. Calls carry the
// order id as idempotency key and are bounded by the configured timeout;
// retry policy belongs to the orchestrator, never the client.
type PaymentClient interface {
	Charge(ctx context.Context, orderID models.ID, amount models.Money) (ChargeOutcome, error)
	Refund(ctx context.Context, orderID models.ID) error
}

// InventoryClient invokes the remote inventory participant
type InventoryClient interface {
	Reserve(ctx context.Context, orderID models.ID) (ReserveOutcome, error)
	Release(ctx context.Context, orderID models.ID) error
}
