package config

import (
	"fmt"
	"net/http"

	"github.com/draftea/order-system/order-service/application"
	"github.com/draftea/order-system/order-service/handlers"
	"github.com/draftea/order-system/order-service/infrastructure"
	sharedinfra "github.com/draftea/order-system/shared/infrastructure"
	"github.com/draftea/order-system/shared/saga"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Dependencies struct {
	// Logging
	Logger *zap.Logger

	// Database
	DB *sqlx.DB

	// Shared outbound HTTP client for participant calls
	HTTPClient *http.Client

	// Repositories and stores
	OrderRepository *infrastructure.PostgresOrderRepository
	SagaStore       *infrastructure.PostgresSagaStore

	// Participant clients
	PaymentClient   *infrastructure.HTTPPaymentClient
	InventoryClient *infrastructure.HTTPInventoryClient

	// Saga compensation registry
	Registry *saga.Registry

	// Use Cases
	CreateOrder            *application.CreateOrder
	GetOrder               *application.GetOrder
	ListOrders             *application.ListOrders
	ReconcileCompensations *application.ReconcileCompensations
	RecoverUnfinished      *application.RecoverUnfinished

	// HTTP Handlers
	OrderHandlers *handlers.OrderHandlers

	// Event Handlers
	OrderEventHandlers *handlers.OrderEventHandlers

	// Infrastructure
	EventPublisher  *sharedinfra.SNSPublisherAdapter
	EventSubscriber *sharedinfra.SQSSubscriberAdapter
}

func BuildDependencies(config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	deps.Logger = logger

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db

	// Initialize AWS infrastructure
	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(config.AWS.SNSTopicArn)
	if err != nil {
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	eventSubscriber, err := sharedinfra.NewSQSSubscriberAdapter(config.AWS.CompensationSQSQueueURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQS subscriber: %w", err)
	}
	deps.EventSubscriber = eventSubscriber

	// Initialize repositories and stores
	deps.OrderRepository = infrastructure.NewPostgresOrderRepository(db)
	deps.SagaStore = infrastructure.NewPostgresSagaStore(db)

	// One pooled client shared by both participant clients, owned here
	// for the lifetime of the process
	deps.HTTPClient = infrastructure.NewParticipantHTTPClient()
	deps.PaymentClient = infrastructure.NewHTTPPaymentClient(
		deps.HTTPClient, config.Participants.PaymentBaseURL, config.Participants.CallTimeout)
	deps.InventoryClient = infrastructure.NewHTTPInventoryClient(
		deps.HTTPClient, config.Participants.InventoryBaseURL, config.Participants.CallTimeout)

	// Register the undo action for every forward step
	deps.Registry = saga.NewRegistry(logger)
	deps.Registry.Register(saga.NewCompensatorFunc(saga.StepPayment, deps.PaymentClient.Refund))
	deps.Registry.Register(saga.NewCompensatorFunc(saga.StepInventory, deps.InventoryClient.Release))

	// Initialize use cases
	deps.CreateOrder = application.NewCreateOrder(
		deps.OrderRepository,
		deps.SagaStore,
		deps.Registry,
		deps.PaymentClient,
		deps.InventoryClient,
		eventPublisher,
		logger,
	)
	deps.GetOrder = application.NewGetOrder(deps.OrderRepository)
	deps.ListOrders = application.NewListOrders(deps.OrderRepository)
	deps.ReconcileCompensations = application.NewReconcileCompensations(
		deps.OrderRepository,
		deps.SagaStore,
		deps.Registry,
		eventPublisher,
		logger,
	)
	deps.RecoverUnfinished = application.NewRecoverUnfinished(
		deps.OrderRepository,
		deps.SagaStore,
		deps.Registry,
		eventPublisher,
		logger,
	)

	// Initialize handlers
	deps.OrderHandlers = handlers.NewOrderHandlers(deps.CreateOrder, deps.GetOrder, deps.ListOrders)
	deps.OrderEventHandlers = handlers.NewOrderEventHandlers(deps.ReconcileCompensations)

	return deps, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event subscriber: %w", err))
		}
	}

	if d.Logger != nil {
		d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
