package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/saga"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresSagaStore implements saga.Store using PostgreSQL. Optimistic
// versioning on the instance row enforces the single-writer rule per
// order id; compensation appends are deduplicated by a unique constraint
// on (order_id, step).
type PostgresSagaStore struct {
	db *sqlx.DB
}

// NewPostgresSagaStore creates a new PostgresSagaStore
func NewPostgresSagaStore(db *sqlx.DB) *PostgresSagaStore {
	return &PostgresSagaStore{db: db}
}

type postgresSagaInstance struct {
	OrderID         string    `db:"order_id"`
	Status          string    `db:"status"`
	Uncertain       bool      `db:"uncertain"`
	RollbackStarted bool      `db:"rollback_started"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	Version         int       `db:"version"`
}

type postgresCompensation struct {
	Seq          int64     `db:"seq"`
	OrderID      string    `db:"order_id"`
	Step         string    `db:"step"`
	Action       string    `db:"action"`
	RegisteredAt time.Time `db:"registered_at"`
}

// Save upserts the instance with an optimistic version check
func (s *PostgresSagaStore) Save(ctx context.Context, instance *saga.Instance) error {
	pgInstance := &postgresSagaInstance{
		OrderID:         instance.OrderID.String(),
		Status:          string(instance.Status),
		Uncertain:       instance.Uncertain,
		RollbackStarted: instance.RollbackStarted,
		CreatedAt:       instance.Timestamps.CreatedAt,
		UpdatedAt:       instance.Timestamps.UpdatedAt,
		Version:         instance.Version.Value,
	}

	if instance.Version.Value == 1 {
		query := `
			INSERT INTO saga_instances (
				order_id, status, uncertain, rollback_started, created_at, updated_at, version
			) VALUES (
				:order_id, :status, :uncertain, :rollback_started, :created_at, :updated_at, :version
			)`

		_, err := s.db.NamedExecContext(ctx, query, pgInstance)
		if err != nil {
			return errors.Wrap(err, "failed to insert saga instance")
		}
		return nil
	}

	query := `
		UPDATE saga_instances
		SET status = :status, uncertain = :uncertain, rollback_started = :rollback_started,
			updated_at = :updated_at, version = :version
		WHERE order_id = :order_id AND version = :old_version`

	res, err := s.db.NamedExecContext(ctx, query, map[string]interface{}{
		"order_id":         pgInstance.OrderID,
		"status":           pgInstance.Status,
		"uncertain":        pgInstance.Uncertain,
		"rollback_started": pgInstance.RollbackStarted,
		"updated_at":       pgInstance.UpdatedAt,
		"version":          pgInstance.Version,
		"old_version":      pgInstance.Version - 1,
	})
	if err != nil {
		return errors.Wrap(err, "failed to update saga instance")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return saga.ErrVersionConflict
	}

	return nil
}

// Load returns the instance for an order id with its compensations in
// registration order
func (s *PostgresSagaStore) Load(ctx context.Context, orderID models.ID) (*saga.Instance, error) {
	query := `
		SELECT order_id, status, uncertain, rollback_started, created_at, updated_at, version
		FROM saga_instances
		WHERE order_id = $1`

	var pgInstance postgresSagaInstance
	err := s.db.GetContext(ctx, &pgInstance, query, orderID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, saga.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load saga instance")
	}

	instance, err := s.toDomain(&pgInstance)
	if err != nil {
		return nil, err
	}

	if err := s.loadCompensations(ctx, instance); err != nil {
		return nil, err
	}

	return instance, nil
}

// AppendCompensation records one compensation; a duplicate append for the
// same step is a no-op
func (s *PostgresSagaStore) AppendCompensation(ctx context.Context, orderID models.ID, comp saga.Compensation) error {
	query := `
		INSERT INTO saga_compensations (order_id, step, action, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, step) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query, orderID.String(), string(comp.Step), comp.Action, comp.RegisteredAt)
	if err != nil {
		return errors.Wrap(err, "failed to append compensation")
	}

	return nil
}

// ListUnfinished returns all instances that have not reached a terminal
// status
func (s *PostgresSagaStore) ListUnfinished(ctx context.Context) ([]*saga.Instance, error) {
	query := `
		SELECT order_id, status, uncertain, rollback_started, created_at, updated_at, version
		FROM saga_instances
		WHERE status NOT IN ($1, $2)
		ORDER BY created_at ASC`

	var pgInstances []postgresSagaInstance
	err := s.db.SelectContext(ctx, &pgInstances, query,
		string(saga.StatusOrderCompleted), string(saga.StatusOrderCancelled))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list unfinished sagas")
	}

	instances := make([]*saga.Instance, len(pgInstances))
	for i, pgInstance := range pgInstances {
		instance, err := s.toDomain(&pgInstance)
		if err != nil {
			return nil, err
		}
		if err := s.loadCompensations(ctx, instance); err != nil {
			return nil, err
		}
		instances[i] = instance
	}

	return instances, nil
}

func (s *PostgresSagaStore) loadCompensations(ctx context.Context, instance *saga.Instance) error {
	query := `
		SELECT seq, order_id, step, action, registered_at
		FROM saga_compensations
		WHERE order_id = $1
		ORDER BY seq ASC`

	var pgComps []postgresCompensation
	err := s.db.SelectContext(ctx, &pgComps, query, instance.OrderID.String())
	if err != nil {
		return errors.Wrap(err, "failed to load compensations")
	}

	instance.Compensations = make([]saga.Compensation, len(pgComps))
	for i, pgComp := range pgComps {
		instance.Compensations[i] = saga.Compensation{
			Step:         saga.Step(pgComp.Step),
			Action:       pgComp.Action,
			RegisteredAt: pgComp.RegisteredAt,
		}
	}

	return nil
}

func (s *PostgresSagaStore) toDomain(pgInstance *postgresSagaInstance) (*saga.Instance, error) {
	orderID, err := models.NewID(pgInstance.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	return &saga.Instance{
		OrderID:         orderID,
		Status:          saga.Status(pgInstance.Status),
		Uncertain:       pgInstance.Uncertain,
		RollbackStarted: pgInstance.RollbackStarted,
		Timestamps: models.Timestamps{
			CreatedAt: pgInstance.CreatedAt,
			UpdatedAt: pgInstance.UpdatedAt,
		},
		Version: models.Version{Value: pgInstance.Version},
	}, nil
}
