package domain

import (
	"fmt"

	"github.com/draftea/order-system/shared/saga"
	"github.com/pkg/errors"
)

// Saga failure taxonomy surfaced to callers of CreateOrder. Participant
// call errors never propagate raw; they are converted into one of these.
var (
	// ErrPaymentDeclined is a terminal business rejection; nothing was
	// committed, so no compensation runs.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrInventoryUnavailable is a terminal business rejection after
	// payment committed; the payment compensation runs.
	ErrInventoryUnavailable = errors.New("inventory unavailable")

	// ErrOrderNotFound is returned when no order exists for an id
	ErrOrderNotFound = errors.New("order not found")
)

// ParticipantUnreachableError reports an infrastructure failure (timeout,
// connection error, 5xx) on a participant call. The outcome is ambiguous:
// compensations run defensively for committed steps and reconciliation
// tooling can verify the remote side later.
type ParticipantUnreachableError struct {
	Step  saga.Step
	Cause error
}

func (e *ParticipantUnreachableError) Error() string {
	return fmt.Sprintf("participant unreachable: %s", e.Step)
}

func (e *ParticipantUnreachableError) Unwrap() error {
	return e.Cause
}
