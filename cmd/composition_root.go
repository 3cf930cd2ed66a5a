package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	apihttp "fooddispatch/internal/adapters/in/http"
	"fooddispatch/internal/adapters/out/inmemory"
	"fooddispatch/internal/adapters/out/jwtsession"
	"fooddispatch/internal/adapters/out/postgres"
	"fooddispatch/internal/adapters/out/postgres/catalogrepo"
	"fooddispatch/internal/adapters/out/postgres/migrations"
	"fooddispatch/internal/adapters/out/postgres/orderreader"
	"fooddispatch/internal/core/application/auth"
	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/jobs"

	"gorm.io/gorm"
)

// Infrastructure is the storage side of the wiring: one of the postgres or
// in-memory stores.
type Infrastructure struct {
	NewUoW  func() commands.UoW
	Catalog ports.MenuCatalog
	Reader  queries.OrderReader
}

// NewPostgresInfrastructure migrates the schema and wires the gorm stores.
func NewPostgresInfrastructure(
	ctx context.Context,
	gormDB *gorm.DB,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) (Infrastructure, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return Infrastructure{}, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if err = migrations.Up(ctx, sqlDB); err != nil {
		return Infrastructure{}, fmt.Errorf("migrate: %w", err)
	}
	return newPostgresInfrastructure(gormDB, sqlDB, publisher, logger), nil
}

func newPostgresInfrastructure(
	gormDB *gorm.DB,
	sqlDB *sql.DB,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) Infrastructure {
	factory := postgres.NewGormUnitOfWorkFactory(gormDB, publisher, logger)
	return Infrastructure{
		NewUoW:  func() commands.UoW { return factory.NewUnitOfWork() },
		Catalog: catalogrepo.NewGormCatalog(gormDB),
		Reader:  orderreader.NewReader(sqlDB),
	}
}

// NewMemoryInfrastructure wires the process-local store. The catalog starts
// empty and is returned for seeding.
func NewMemoryInfrastructure(publisher ports.EventPublisher, logger *slog.Logger) (Infrastructure, *inmemory.Catalog) {
	store := inmemory.NewStore(publisher, logger)
	catalog := inmemory.NewCatalog()
	return Infrastructure{
		NewUoW:  func() commands.UoW { return store.NewUnitOfWork() },
		Catalog: catalog,
		Reader:  store,
	}, catalog
}

type CompositionRoot struct {
	cfg    Config
	infra  Infrastructure
	clock  ports.Clock
	logger *slog.Logger
}

func NewCompositionRoot(cfg Config, infra Infrastructure, clock ports.Clock, logger *slog.Logger) CompositionRoot {
	if logger == nil {
		logger = slog.Default()
	}
	return CompositionRoot{cfg: cfg, infra: infra, clock: clock, logger: logger}
}

func (c *CompositionRoot) uowFactory() FuncUoWFactory {
	return FuncUoWFactory(c.infra.NewUoW)
}

func (c *CompositionRoot) orderUoWFactory() FuncOrderUoWFactory {
	return func() commands.OrderUoW { return c.infra.NewUoW() }
}

func (c *CompositionRoot) driverUoWFactory() FuncDriverUoWFactory {
	return func() commands.DriverUoW { return c.infra.NewUoW() }
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	return commands.NewAssignDriverCommandHandler(c.uowFactory(), c.clock, c.cfg.CandidateBatchSize)
}

func (c *CompositionRoot) CreateMatchPendingCommandHandler() commands.MatchPendingCommandHandler {
	return commands.NewMatchPendingCommandHandler(c.orderUoWFactory(), c.CreateAssignDriverCommandHandler(),
		c.cfg.DispatchConcurrency, c.logger)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.infra.Catalog, c.clock)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateMarkReadyCommandHandler() commands.MarkReadyCommandHandler {
	return commands.NewMarkReadyCommandHandler(c.orderUoWFactory(), c.CreateAssignDriverCommandHandler(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.uowFactory(), c.clock)
}

func (c *CompositionRoot) CreateConfirmDeliveredCommandHandler() commands.ConfirmDeliveredCommandHandler {
	return commands.NewConfirmDeliveredCommandHandler(c.uowFactory(), c.clock)
}

func (c *CompositionRoot) CreateReassignDriverCommandHandler() commands.ReassignDriverCommandHandler {
	return commands.NewReassignDriverCommandHandler(c.uowFactory(), c.CreateAssignDriverCommandHandler(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateRegisterDriverCommandHandler() commands.RegisterDriverCommandHandler {
	return commands.NewRegisterDriverCommandHandler(c.driverUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateSetDriverAvailabilityCommandHandler() commands.SetDriverAvailabilityCommandHandler {
	return commands.NewSetDriverAvailabilityCommandHandler(c.driverUoWFactory(), c.CreateMatchPendingCommandHandler(),
		c.clock, c.cfg.DispatchBatchSize, c.logger)
}

func (c *CompositionRoot) CreateSetDriverActivationCommandHandler() commands.SetDriverActivationCommandHandler {
	return commands.NewSetDriverActivationCommandHandler(c.driverUoWFactory(), c.CreateMatchPendingCommandHandler(),
		c.cfg.DispatchBatchSize, c.logger)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.infra.Reader)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.infra.Reader)
}

func (c *CompositionRoot) CreateListDriversQueryHandler() queries.ListDriversQueryHandler {
	return queries.NewListDriversQueryHandler(c.infra.Reader)
}

func (c *CompositionRoot) CreateGuard() (*auth.Guard, error) {
	resolver, err := jwtsession.NewResolver([]byte(c.cfg.JWTSecret), c.cfg.JWTIssuer, c.clock)
	if err != nil {
		return nil, err
	}
	return auth.NewGuard(resolver, c.clock)
}

func (c *CompositionRoot) CreateHTTPServer(ctx context.Context) (*apihttp.Server, error) {
	guard, err := c.CreateGuard()
	if err != nil {
		return nil, err
	}
	spec, err := apihttp.LoadSpec(ctx)
	if err != nil {
		return nil, err
	}

	handlers := apihttp.Handlers{
		CreateOrder:      c.CreateCreateOrderCommandHandler(),
		AcceptOrder:      c.CreateAcceptOrderCommandHandler(),
		MarkReady:        c.CreateMarkReadyCommandHandler(),
		CancelOrder:      c.CreateCancelOrderCommandHandler(),
		ConfirmDelivered: c.CreateConfirmDeliveredCommandHandler(),
		ReassignDriver:   c.CreateReassignDriverCommandHandler(),
		AssignDriver:     c.CreateAssignDriverCommandHandler(),
		RegisterDriver:   c.CreateRegisterDriverCommandHandler(),
		SetAvailability:  c.CreateSetDriverAvailabilityCommandHandler(),
		SetActivation:    c.CreateSetDriverActivationCommandHandler(),
		ListOrders:       c.CreateListOrdersQueryHandler(),
		GetOrder:         c.CreateGetOrderQueryHandler(),
		ListDrivers:      c.CreateListDriversQueryHandler(),
	}
	return apihttp.NewServer(handlers, guard, spec, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateMatchPendingCommandHandler(), c.cfg.DispatchSchedule,
		c.cfg.DispatchBatchSize, c.logger)
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
