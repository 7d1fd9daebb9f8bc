package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"reservation-backend/internal/config"
	"reservation-backend/internal/infrastructure/broker"
	infraCache "reservation-backend/internal/infrastructure/cache"
	"reservation-backend/internal/infrastructure/database"
	"reservation-backend/internal/infrastructure/queue"
	"reservation-backend/internal/shared/middleware"
	"reservation-backend/pkg/cache"
	txdb "reservation-backend/pkg/database"
	"reservation-backend/pkg/jwt"
	"reservation-backend/pkg/logger"

	notifRepo "reservation-backend/internal/domains/notification/repository"
	notifService "reservation-backend/internal/domains/notification/service"
	"reservation-backend/internal/domains/payment/gateway"
	paymentMock "reservation-backend/internal/domains/payment/gateway/mock"
	"reservation-backend/internal/domains/payment/gateway/portone"
	paymentHandler "reservation-backend/internal/domains/payment/handler"
	paymentRepo "reservation-backend/internal/domains/payment/repository"
	paymentService "reservation-backend/internal/domains/payment/service"
	reservationHandler "reservation-backend/internal/domains/reservation/handler"
	reservationRepo "reservation-backend/internal/domains/reservation/repository"
	reservationService "reservation-backend/internal/domains/reservation/service"
	userRepo "reservation-backend/internal/domains/user/repository"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph shared by cmd/api and cmd/worker.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	SQLDB      *sql.DB // lib/pq, used by the user repository
	Redis      *infraCache.RedisClient
	Cache      cache.Cache
	JWTManager *jwt.Manager
	TxManager  txdb.TxManager
	TaskClient *queue.TaskClient
	Publisher  broker.Publisher

	// Repositories
	UserRepo         userRepo.Repository
	ReservationRepo  reservationRepo.Repository
	PaymentRepo      paymentRepo.Repository
	NotificationRepo notifRepo.NotificationRepository

	// Provider
	PortOne gateway.PortOneGateway

	// Services
	Sink               notifService.Sink
	Roster             notifService.Roster
	DeliveryService    notifService.DeliveryService
	ReservationService reservationService.ReservationService
	SettlementService  paymentService.SettlementService
	RefundService      paymentService.RefundService
	QueryService       paymentService.QueryService

	// Handlers
	ReservationHandler *reservationHandler.ReservationHandler
	PaymentHandler     *paymentHandler.PaymentHandler
	SettlementLimiter  *middleware.RateLimiter
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the graph in dependency order:
// config -> infrastructure -> repositories -> services -> handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	// STEP 1: Configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("Config loaded", map[string]interface{}{
		"environment":  cfg.App.Environment,
		"portone_mode": cfg.PortOne.Mode,
	})

	// STEP 2: Infrastructure
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// STEP 3: Repositories
	c.initRepositories()

	// STEP 4: Services
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// STEP 5: Handlers
	c.initHandlers()

	logger.Info("Container initialized", nil)
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	// PostgreSQL (pgx pool)
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	c.TxManager = txdb.NewTxManager(db.Pool)

	// PostgreSQL (database/sql) for the profile reads
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open sql database: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(time.Minute)
	c.SQLDB = sqlDB

	// Redis: cache failures are not fatal, lookups fall through to Postgres
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		logger.Warn("Redis connection failed (non-critical)", map[string]interface{}{"error": err.Error()})
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client, "reservation")

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)
	c.TaskClient = queue.NewTaskClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	if cfg.RabbitMQ.Enabled {
		c.Publisher = broker.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	} else {
		c.Publisher = broker.NoopPublisher{}
	}

	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = userRepo.NewPostgresRepository(c.SQLDB, c.Cache)
	c.ReservationRepo = reservationRepo.NewPostgresRepository(c.DB.Pool)
	c.PaymentRepo = paymentRepo.NewPaymentRepository(c.DB.Pool)
	c.NotificationRepo = notifRepo.NewNotificationRepository(c.DB.Pool)
}

func (c *Container) initServices() error {
	cfg := c.Config

	// PortOne gateway
	switch cfg.PortOne.Mode {
	case "mock":
		logger.Warn("Using in-memory PortOne gateway", nil)
		c.PortOne = paymentMock.NewPortOneMock()
	default:
		c.PortOne = portone.NewClient(portone.NewConfig(cfg.PortOne.APISecret, cfg.PortOne.BaseURL, cfg.PortOne.Timeout))
		if !c.PortOne.Configured() {
			logger.Warn("PortOne secret missing: settlement and refund requests will fail", nil)
		}
	}

	// Notifications
	c.Sink = notifService.NewQueueSink(c.TaskClient, cfg.Notification.EnqueueTimeout)
	c.Roster = notifService.NewCachedRoster(c.UserRepo, c.Cache, cfg.Notification.RosterTTL)
	c.DeliveryService = notifService.NewDeliveryService(c.NotificationRepo, c.Roster, c.Publisher)

	// Reservations
	c.ReservationService = reservationService.NewReservationService(
		c.ReservationRepo,
		c.TxManager,
		c.UserRepo,
		c.PaymentRepo,
		c.Sink,
	)

	// Payments
	c.SettlementService = paymentService.NewSettlementService(
		c.PortOne,
		c.PaymentRepo,
		c.ReservationRepo,
		c.TxManager,
		c.UserRepo,
		c.Sink,
	)
	c.RefundService = paymentService.NewRefundService(
		c.PortOne,
		c.PaymentRepo,
		c.ReservationRepo,
		c.TxManager,
		c.UserRepo,
		c.Sink,
	)
	c.QueryService = paymentService.NewQueryService(c.PortOne, c.PaymentRepo)

	return nil
}

func (c *Container) initHandlers() {
	c.ReservationHandler = reservationHandler.NewReservationHandler(c.ReservationService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.SettlementService, c.RefundService, c.QueryService)
	c.SettlementLimiter = middleware.NewRateLimiter(c.Config.RateLimit.SettlementRPS, c.Config.RateLimit.SettlementBurst)
}

// Cleanup closes pools and clients on shutdown.
func (c *Container) Cleanup() {
	if c.TaskClient != nil {
		if err := c.TaskClient.Close(); err != nil {
			logger.Error("Failed to close task client", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("Failed to close Redis", err)
		}
	}
	if c.SQLDB != nil {
		_ = c.SQLDB.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Error("Failed to close database", err)
		}
	}
	logger.Info("Container cleanup completed", nil)
}
