package saga

import (
	"context"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Compensator undoes the effect of one forward step for a given order
type Compensator interface {
	Step() Step
	Compensate(ctx context.Context, orderID models.ID) error
}

// CompensatorFunc adapts a function to the Compensator interface
type CompensatorFunc struct {
	step Step
	fn   func(ctx context.Context, orderID models.ID) error
}

func NewCompensatorFunc(step Step, fn func(ctx context.Context, orderID models.ID) error) *CompensatorFunc {
	return &CompensatorFunc{step: step, fn: fn}
}

func (c *CompensatorFunc) Step() Step {
	return c.step
}

func (c *CompensatorFunc) Compensate(ctx context.Context, orderID models.ID) error {
	return c.fn(ctx, orderID)
}

// CompensationResult is the outcome of one compensation attempt
type CompensationResult struct {
	Step Step
	Err  error
}

// Succeeded reports whether the compensation was applied
func (r CompensationResult) Succeeded() bool {
	return r.Err == nil
}

// AllSucceeded reports whether every compensation in the result set was applied
func AllSucceeded(results []CompensationResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return false
		}
	}
	return true
}

// Registry maps steps to their compensators and executes recorded
// compensations in LIFO order during rollback.
type Registry struct {
	compensators map[Step]Compensator
	logger       *zap.Logger
}

// NewRegistry creates an empty compensation registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		compensators: make(map[Step]Compensator),
		logger:       logger,
	}
}

// Register registers the compensator for a step, replacing any previous one
func (r *Registry) Register(c Compensator) {
	r.compensators[c.Step()] = c
}

// RunAll executes the instance's recorded compensations in strict reverse
// order of registration. A failing compensation is logged and recorded in
// its result but never aborts the remaining compensations; the caller
// inspects the result list to decide whether manual follow-up is needed.
func (r *Registry) RunAll(ctx context.Context, instance *Instance) []CompensationResult {
	instance.BeginRollback()

	results := make([]CompensationResult, 0, len(instance.Compensations))

	for idx := len(instance.Compensations) - 1; idx >= 0; idx-- {
		comp := instance.Compensations[idx]

		compensator, ok := r.compensators[comp.Step]
		if !ok {
			err := errors.Errorf("no compensator registered for step %s", comp.Step)
			r.logger.Error("compensation skipped",
				zap.String("order_id", instance.OrderID.String()),
				zap.String("step", string(comp.Step)),
				zap.Error(err),
			)
			results = append(results, CompensationResult{Step: comp.Step, Err: err})
			continue
		}

		if err := compensator.Compensate(ctx, instance.OrderID); err != nil {
			r.logger.Error("compensation failed",
				zap.String("order_id", instance.OrderID.String()),
				zap.String("step", string(comp.Step)),
				zap.String("action", comp.Action),
				zap.Error(err),
			)
			results = append(results, CompensationResult{Step: comp.Step, Err: err})
			continue
		}

		r.logger.Info("compensation applied",
			zap.String("order_id", instance.OrderID.String()),
			zap.String("step", string(comp.Step)),
			zap.String("action", comp.Action),
		)
		results = append(results, CompensationResult{Step: comp.Step})
	}

	return results
}
