package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"nplusone-backend/internal/config"
	auditHandler "nplusone-backend/internal/domains/audit/handler"
	auditRepo "nplusone-backend/internal/domains/audit/repository"
	auditService "nplusone-backend/internal/domains/audit/service"
	authHandler "nplusone-backend/internal/domains/auth/handler"
	logisticsClient "nplusone-backend/internal/domains/logistics/client"
	logisticsHandler "nplusone-backend/internal/domains/logistics/handler"
	logisticsService "nplusone-backend/internal/domains/logistics/service"
	orderHandler "nplusone-backend/internal/domains/order/handler"
	orderRepo "nplusone-backend/internal/domains/order/repository"
	orderService "nplusone-backend/internal/domains/order/service"
	"nplusone-backend/internal/domains/payment/gateway"
	"nplusone-backend/internal/domains/payment/gateway/mock"
	"nplusone-backend/internal/domains/payment/gateway/phonepe"
	paymentHandler "nplusone-backend/internal/domains/payment/handler"
	paymentService "nplusone-backend/internal/domains/payment/service"
	infraCache "nplusone-backend/internal/infrastructure/cache"
	"nplusone-backend/internal/infrastructure/database"
	"nplusone-backend/pkg/cache"
	"nplusone-backend/pkg/jwt"
)

// =====================================================
// DEPENDENCY INJECTION CONTAINER
// =====================================================
// Container wires the whole application graph in one place.
// Initialization is staged: config -> infrastructure -> repositories ->
// services -> handlers. Each stage only sees what earlier stages built.

type Container struct {
	// Core
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager

	// Repositories
	OrderRepo orderRepo.OrderRepository
	AuditRepo auditRepo.SystemLogRepository

	// Services
	AuditService     auditService.AuditService
	LogisticsService logisticsService.LogisticsService
	OrderService     orderService.OrderService
	PaymentService   paymentService.PaymentService

	// Handlers
	OrderHandler     *orderHandler.OrderHandler
	PaymentHandler   *paymentHandler.PaymentHandler
	LogisticsHandler *logisticsHandler.LogisticsHandler
	AuthHandler      *authHandler.AuthHandler
	AuditHandler     *auditHandler.AuditHandler
}

// NewContainer builds the full dependency graph.
func NewContainer() (*Container, error) {
	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("[CONTAINER] Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("[CONTAINER] Config loaded (env=%s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("[CONTAINER] Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("[CONTAINER] Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	log.Println("[CONTAINER] Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	// Redis failure is non-critical at boot: the payment callback guard
	// fails open and pincode lookups just skip the cache.
	if err := redisCache.Connect(context.Background()); err != nil {
		log.Printf("[CONTAINER] WARNING: Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("[CONTAINER] Redis connected")
	}

	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.Admin.JWTSecret, cfg.Admin.TokenExpiryHours)

	// ========================================
	// STEP 4: INITIALIZE REPOSITORIES
	// ========================================
	log.Println("[CONTAINER] Initializing repositories...")

	c.initRepositories()

	// ========================================
	// STEP 5: INITIALIZE SERVICES
	// ========================================
	log.Println("[CONTAINER] Initializing services...")

	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// ========================================
	// STEP 6: INITIALIZE HANDLERS
	// ========================================
	log.Println("[CONTAINER] Initializing handlers...")

	c.initHandlers()

	log.Println("[CONTAINER] DI container initialized successfully")
	return c, nil
}

// =====================================================
// PRIVATE INITIALIZATION METHODS
// =====================================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.OrderRepo = orderRepo.NewPostgresOrderRepository(pool)
	c.AuditRepo = auditRepo.NewPostgresSystemLogRepository(pool)
}

func (c *Container) initServices() error {
	cfg := c.Config

	c.AuditService = auditService.NewAuditService(c.AuditRepo)

	// Logistics first: the order service books shipments through it.
	carrier := logisticsClient.NewClient(&logisticsClient.Config{
		BaseURL:     cfg.Logistics.BaseURL,
		AccessToken: cfg.Logistics.AccessToken,
		SecretKey:   cfg.Logistics.SecretKey,
		PickupID:    cfg.Logistics.PickupID,
	})
	c.LogisticsService = logisticsService.NewLogisticsService(carrier, c.Cache, c.AuditService)

	c.OrderService = orderService.NewOrderService(
		c.OrderRepo,
		c.AuditService,
		c.LogisticsService,
		cfg.App.TaxRatePercent,
	)

	gw, err := c.buildPaymentGateway()
	if err != nil {
		return err
	}

	c.PaymentService = paymentService.NewPaymentService(
		gw,
		c.OrderRepo,
		c.Cache,
		c.AuditService,
		cfg.App.BaseURL,
		cfg.PhonePe.CallbackURL,
	)

	return nil
}

// buildPaymentGateway returns the real PhonePe client when credentials are
// configured, otherwise a mock so the rest of the API still works locally.
// Production refuses to boot without credentials.
func (c *Container) buildPaymentGateway() (gateway.PhonePeGateway, error) {
	cfg := c.Config.PhonePe

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		if c.Config.App.Environment == "production" {
			return nil, fmt.Errorf("PhonePe credentials are required in production")
		}
		log.Println("[CONTAINER] WARNING: PhonePe credentials not set, using mock gateway")
		return mock.NewPhonePeMock(), nil
	}

	return phonepe.NewClient(phonepe.NewConfig(
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.ClientVersion,
		cfg.Environment,
	))
}

func (c *Container) initHandlers() {
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService)
	c.LogisticsHandler = logisticsHandler.NewLogisticsHandler(c.LogisticsService)
	c.AuthHandler = authHandler.NewAuthHandler(c.JWTManager, c.Config.Admin.PasswordHash)
	c.AuditHandler = auditHandler.NewAuditHandler(c.AuditService)
}

// Cleanup releases infrastructure resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("[CONTAINER] Cleaning up container resources...")

	if c.DB != nil {
		c.DB.Close()
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("[CONTAINER] Failed to close Redis: %v", err)
			}
		}
	}

	log.Println("[CONTAINER] Container cleanup completed")
}
