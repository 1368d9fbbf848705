package saga

import (
	"context"
	"sync"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no saga instance exists for an order id
var ErrNotFound = errors.New("saga instance not found")

// ErrVersionConflict is returned when a concurrent writer updated the
// same instance first. Each order id is exclusively owned by the flow
// currently processing it, so a conflict indicates a bug or a retry race.
var ErrVersionConflict = errors.New("saga instance version conflict")

// Store persists saga instances keyed by order id. Every state transition
// is written through the store before the next remote call begins, so a
// crash mid-saga leaves a durable, inspectable state.
type Store interface {
	// Save upserts the instance. Updates carry the instance's version and
	// fail with ErrVersionConflict when the stored version has moved on.
	Save(ctx context.Context, instance *Instance) error

	// Load returns the instance for an order id or ErrNotFound
	Load(ctx context.Context, orderID models.ID) (*Instance, error)

	// AppendCompensation records one compensation for a committed step.
	// Duplicate appends for the same step are deduplicated, so a retried
	// step is safe.
	AppendCompensation(ctx context.Context, orderID models.ID, comp Compensation) error

	// ListUnfinished returns instances that have not reached a terminal
	// status, for crash recovery and the compensation reconciler.
	ListUnfinished(ctx context.Context) ([]*Instance, error)
}

// MemoryStore is an in-memory Store for tests and single-process use
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[models.ID]*Instance
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		instances: make(map[models.ID]*Instance),
	}
}

// Save upserts a copy of the instance, enforcing optimistic versioning
func (s *MemoryStore) Save(ctx context.Context, instance *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.instances[instance.OrderID]; ok {
		if instance.Version.Value <= existing.Version.Value {
			return ErrVersionConflict
		}
	}

	s.instances[instance.OrderID] = copyInstance(instance)
	return nil
}

// Load returns a copy of the stored instance
func (s *MemoryStore) Load(ctx context.Context, orderID models.ID) (*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instance, ok := s.instances[orderID]
	if !ok {
		return nil, ErrNotFound
	}

	return copyInstance(instance), nil
}

// AppendCompensation records a compensation, deduplicating by step
func (s *MemoryStore) AppendCompensation(ctx context.Context, orderID models.ID, comp Compensation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance, ok := s.instances[orderID]
	if !ok {
		return ErrNotFound
	}

	return instance.AddCompensation(comp)
}

// ListUnfinished returns copies of all non-terminal instances
func (s *MemoryStore) ListUnfinished(ctx context.Context) ([]*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unfinished []*Instance
	for _, instance := range s.instances {
		if !instance.Status.IsTerminal() {
			unfinished = append(unfinished, copyInstance(instance))
		}
	}

	return unfinished, nil
}

func copyInstance(instance *Instance) *Instance {
	cp := *instance
	cp.Compensations = make([]Compensation, len(instance.Compensations))
	copy(cp.Compensations, instance.Compensations)
	return &cp
}
