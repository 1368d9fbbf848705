// Package saga implements orchestration-based saga coordination: one component
// sequences forward steps against remote participants, records a compensating
// action for every committed step, and runs the recorded compensations in
// reverse order when a later step fails.
package saga

import (
	"time"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// Status represents the current status of a saga instance
type Status string

const (
	StatusOrderInitiated               Status = "order_initiated"
	StatusPaymentProcessed             Status = "payment_processed"
	StatusInventoryReserved            Status = "inventory_reserved"
	StatusOrderCompleted               Status = "order_completed"
	StatusOrderCancelled               Status = "order_cancelled"
	StatusCancelledPendingCompensation Status = "order_cancelled_pending_compensation"
)

// IsTerminal reports whether no further transitions are permitted.
// A cancellation with pending compensations is not terminal: the
// reconciler still has to finish the rollback.
func (s Status) IsTerminal() bool {
	return s == StatusOrderCompleted || s == StatusOrderCancelled
}

// validTransitions encodes the forward path plus the cancellation branch
// reachable from every non-terminal state.
var validTransitions = map[Status][]Status{
	StatusOrderInitiated:               {StatusPaymentProcessed, StatusOrderCancelled, StatusCancelledPendingCompensation},
	StatusPaymentProcessed:             {StatusInventoryReserved, StatusOrderCancelled, StatusCancelledPendingCompensation},
	StatusInventoryReserved:            {StatusOrderCompleted, StatusOrderCancelled, StatusCancelledPendingCompensation},
	StatusCancelledPendingCompensation: {StatusOrderCancelled},
}

// Step identifies a forward step of the saga
type Step string

const (
	StepPayment   Step = "payment"
	StepInventory Step = "inventory"
)

// Compensation describes one undo action recorded after a forward step
// committed. It is owned by the instance that recorded it and consumed
// only during rollback.
type Compensation struct {
	Step         Step      `json:"step"`
	Action       string    `json:"action"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewCompensation creates a compensation descriptor for a step
func NewCompensation(step Step, action string) Compensation {
	return Compensation{
		Step:         step,
		Action:       action,
		RegisteredAt: time.Now(),
	}
}

// Instance is the orchestrator's bookkeeping record for one order's saga
// execution. Its status is the authoritative one; the order aggregate
// mirrors it.
type Instance struct {
	OrderID       models.ID
	Status        Status
	Compensations []Compensation
	// Uncertain is set when a participant call timed out: the remote side
	// may have committed even though the saga treats the step as failed.
	Uncertain       bool
	RollbackStarted bool
	Timestamps      models.Timestamps
	Version         models.Version
}

// NewInstance creates the bookkeeping record for a fresh order saga
func NewInstance(orderID models.ID) *Instance {
	return &Instance{
		OrderID:    orderID,
		Status:     StatusOrderInitiated,
		Timestamps: models.NewTimestamps(),
		Version:    models.NewVersion(),
	}
}

// Transition moves the instance to the next status, validating the move
// against the state machine
func (i *Instance) Transition(next Status) error {
	if i.Status.IsTerminal() {
		return errors.Errorf("saga for order %s is terminal (%s)", i.OrderID, i.Status)
	}

	for _, allowed := range validTransitions[i.Status] {
		if next == allowed {
			i.Status = next
			i.Timestamps = i.Timestamps.Update()
			i.Version = i.Version.Update()
			return nil
		}
	}

	return errors.Errorf("invalid saga transition %s -> %s for order %s", i.Status, next, i.OrderID)
}

// AddCompensation records an undo action for a committed forward step.
// Appends are deduplicated by step identity so a retried step never
// registers its compensation twice, and rejected once rollback has begun.
func (i *Instance) AddCompensation(c Compensation) error {
	if i.RollbackStarted {
		return errors.Errorf("cannot register compensation for step %s: rollback already started", c.Step)
	}

	for _, existing := range i.Compensations {
		if existing.Step == c.Step {
			return nil
		}
	}

	i.Compensations = append(i.Compensations, c)
	return nil
}

// BeginRollback freezes the compensation list before it is consumed
func (i *Instance) BeginRollback() {
	i.RollbackStarted = true
}
