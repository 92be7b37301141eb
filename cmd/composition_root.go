package cmd

import (
	"database/sql"
	"log/slog"
	"net/http"
	"slices"

	"ordering/internal/adapters/in/auth"
	apihttp "ordering/internal/adapters/in/http"
	"ordering/internal/adapters/in/ws"
	"ordering/internal/adapters/out/audit"
	"ordering/internal/adapters/out/dms"
	"ordering/internal/adapters/out/postgres"
	"ordering/internal/adapters/out/postgres/orderrepo"
	"ordering/internal/adapters/out/realtime"
	"ordering/internal/core/application/editing"
	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/application/usecases/queries"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
	"ordering/internal/jobs"
	"ordering/internal/pkg/keylock"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// CompositionRoot owns the process-wide singletons. The key locker, the hub,
// the coordinator and the DMS sync handler must exist exactly once: they are
// what serializes writers and deduplicates sync passes.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	clock      kernel.Clock
	logger     *slog.Logger

	keys        *keylock.Locker
	hub         *realtime.Hub
	audit       ports.AuditSink
	closeAudit  func() error
	coordinator *editing.Coordinator
	writer      *commands.OrderWriter
	syncHandler *commands.SyncDMSCommandHandler
	tokens      *auth.TokenParser
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, dmsDB *sql.DB, logger *slog.Logger) *CompositionRoot {
	c := &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		clock:      kernel.SystemClock{},
		logger:     logger,
		keys:       keylock.New(),
		hub:        realtime.NewHub(config.RealtimeQueueSize, logger),
		tokens:     auth.NewTokenParser(config.JWTSecret),
		closeAudit: func() error { return nil },
	}

	if len(config.KafkaBrokers) > 0 {
		sink := audit.NewKafkaSink(audit.NewKafkaWriter(config.KafkaBrokers, config.KafkaAuditTopic),
			config.AuditBufferSize, logger)
		c.audit = sink
		c.closeAudit = sink.Close
	} else {
		c.audit = audit.NewLogSink(logger)
	}

	c.coordinator = editing.NewCoordinator(
		c.keys,
		c.hub,
		orderrepo.NewGormEditingProjector(gormDB),
		c.audit,
		c.clock,
		config.EditLockTTL(),
		logger,
	)
	c.writer = commands.NewOrderWriter(c.keys, c.hub, c.audit, c.clock, logger)

	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	c.syncHandler = commands.NewSyncDMSCommandHandler(
		f,
		c.writer,
		dms.NewSQLClient(dmsDB, config.DMSTable, config.DMSTimeout(), logger),
		c.audit,
		c.clock,
		logger,
	)

	return c
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	h := commands.NewCreateOrderCommandHandler(c.keys, c.orderUoWFactory(), c.hub, c.audit, c.clock)
	return &h
}

func (c *CompositionRoot) CreateRequestTransitionCommandHandler() *commands.RequestTransitionCommandHandler {
	h := commands.NewRequestTransitionCommandHandler(
		c.orderUoWFactory(),
		c.writer,
		c.coordinator,
		services.NewTransitionGuard(c.config.ValidationCooldown()),
	)
	return &h
}

func (c *CompositionRoot) CreateUpdateOrderItemsCommandHandler() *commands.UpdateOrderItemsCommandHandler {
	h := commands.NewUpdateOrderItemsCommandHandler(c.orderUoWFactory(), c.writer, c.coordinator)
	return &h
}

func (c *CompositionRoot) CreateSetEditingCommandHandler() *commands.SetEditingCommandHandler {
	h := commands.NewSetEditingCommandHandler(c.orderUoWFactory(), c.coordinator)
	return &h
}

// SyncDMSCommandHandler is shared by the HTTP endpoint and the scheduled job
// so that a manual request joins a running pass.
func (c *CompositionRoot) SyncDMSCommandHandler() *commands.SyncDMSCommandHandler {
	return c.syncHandler
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB, c.coordinator, c.clock, c.config.ValidationCooldown())
}

func (c *CompositionRoot) CreateListCompanyOrdersQueryHandler() queries.ListCompanyOrdersQueryHandler {
	return queries.NewListCompanyOrdersQueryHandler(c.gormDB, c.coordinator)
}

func (c *CompositionRoot) Coordinator() *editing.Coordinator {
	return c.coordinator
}

func (c *CompositionRoot) Tokens() *auth.TokenParser {
	return c.tokens
}

func (c *CompositionRoot) CreateServer() *apihttp.Server {
	return apihttp.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateRequestTransitionCommandHandler(),
		c.CreateUpdateOrderItemsCommandHandler(),
		c.CreateSetEditingCommandHandler(),
		c.SyncDMSCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateListCompanyOrdersQueryHandler(),
		c.logger,
	)
}

func (c *CompositionRoot) CreateRateLimiter() *apihttp.RateLimiter {
	return apihttp.NewRateLimiter(rate.Limit(c.config.RateLimitPerSecond), c.config.RateLimitBurst)
}

func (c *CompositionRoot) CreateWSHandler() *ws.Handler {
	var checkOrigin func(r *http.Request) bool
	if len(c.config.AllowedOrigins) > 0 {
		allowed := c.config.AllowedOrigins
		checkOrigin = func(r *http.Request) bool {
			return slices.Contains(allowed, r.Header.Get("Origin"))
		}
	}
	return ws.NewHandler(c.hub, c.tokens, c.CreateGetOrderQueryHandler(), c.coordinator, checkOrigin, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.syncHandler,
		c.coordinator,
		c.config.DMSSyncInterval(),
		c.config.EditLockSweep(),
		c.logger,
	)
}

// Close interrupts a running DMS pass, then flushes the audit sink.
func (c *CompositionRoot) Close() error {
	c.syncHandler.Close()
	return c.closeAudit()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
