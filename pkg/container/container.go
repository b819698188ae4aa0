package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"library-gateway/internal/config"
	"library-gateway/internal/infrastructure/backend"
	"library-gateway/internal/infrastructure/broker"

	authHandler "library-gateway/internal/domains/auth/handler"
	authService "library-gateway/internal/domains/auth/service"
	bookHandler "library-gateway/internal/domains/book/handler"
	bookService "library-gateway/internal/domains/book/service"
	notificationHandler "library-gateway/internal/domains/notification/handler"
	notificationService "library-gateway/internal/domains/notification/service"
	requestHandler "library-gateway/internal/domains/request/handler"
	requestService "library-gateway/internal/domains/request/service"
	transactionHandler "library-gateway/internal/domains/transaction/handler"
	transactionService "library-gateway/internal/domains/transaction/service"
	userHandler "library-gateway/internal/domains/user/handler"
	userService "library-gateway/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is a
// process-wide singleton.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config  *config.Config
	Backend backend.Library
	Redis   *broker.RedisClient // nil unless REDIS_ENABLED

	// backendClient is set when the container dialled the backend itself.
	backendClient *backend.Client

	// ========================================
	// NOTIFICATION CHANNEL
	// ========================================

	Hub      *notificationService.Hub
	Notifier notificationService.Notifier
	Relay    *notificationService.RedisRelay // nil unless REDIS_ENABLED

	relayCancel context.CancelFunc
	relayDone   chan struct{}

	// ========================================
	// SERVICE LAYER
	// ========================================

	AuthService        authService.ServiceInterface
	BookService        bookService.ServiceInterface
	UserService        userService.ServiceInterface
	TransactionService transactionService.ServiceInterface
	RequestService     *requestService.RequestService

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	AuthHandler        *authHandler.AuthHandler
	BookHandler        *bookHandler.BookHandler
	UserHandler        *userHandler.UserHandler
	TransactionHandler *transactionHandler.TransactionHandler
	RequestHandler     *requestHandler.RequestHandler
	WebSocketHandler   *notificationHandler.WebSocketHandler
}

// ========================================
// CONSTRUCTORS
// ========================================

// NewContainer loads configuration, dials the backend and wires every domain.
//
// Order matters:
// 1. Config
// 2. Infrastructure (backend, Redis)
// 3. Notification channel
// 4. Services
// 5. Handlers
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Info().Msg("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Info().Str("environment", cfg.App.Environment).Msg("✅ Config loaded")

	// ========================================
	// STEP 2: BACKEND CLIENT
	// ========================================
	// The connection is lazy; an unreachable backend surfaces per request as 500.
	log.Info().Str("address", cfg.BackendAddress()).Msg("📡 Connecting to library backend...")

	client, err := backend.Dial(cfg.Backend.Host, cfg.Backend.Port, cfg.Backend.CallTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	log.Info().Msg("✅ Backend client ready")

	c := &Container{Config: cfg, Backend: client, backendClient: client}

	// ========================================
	// STEP 3: REDIS (OPTIONAL)
	// ========================================
	if cfg.Redis.Enabled {
		log.Info().Str("host", cfg.Redis.Host).Msg("🔴 Connecting to Redis...")

		rc := broker.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rc.Connect(ctx)
		cancel()

		if err != nil {
			// Non-critical: notifications fall back to this instance only.
			log.Warn().Err(err).Msg("⚠️  Redis connection failed, using local notifications")
			_ = rc.Close()
		} else {
			c.Redis = rc
			log.Info().Msg("✅ Redis connected")
		}
	}

	c.wire()

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

// New wires a container around an existing backend, without Redis.
func New(cfg *config.Config, lib backend.Library) *Container {
	c := &Container{Config: cfg, Backend: lib}
	c.wire()
	return c
}

func (c *Container) wire() {
	c.initNotifications()
	c.initServices()
	c.initHandlers()
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initNotifications() {
	c.Hub = notificationService.NewHub()
	c.Notifier = c.Hub

	if c.Redis == nil {
		return
	}

	c.Relay = notificationService.NewRedisRelay(c.Redis, c.Config.Redis.NotifyChannel, c.Hub)
	c.Notifier = c.Relay

	ctx, cancel := context.WithCancel(context.Background())
	c.relayCancel = cancel
	c.relayDone = make(chan struct{})

	go func() {
		defer close(c.relayDone)
		// Without a subscription the relay pushes to local users itself.
		if err := c.Relay.Run(ctx); err != nil {
			log.Error().Err(err).Msg("❌ Notification relay stopped, local users are notified directly")
		}
	}()
	log.Info().Str("channel", c.Config.Redis.NotifyChannel).Msg("✅ Notification relay started")
}

func (c *Container) initServices() {
	adminID := c.Config.Backend.AdminID

	c.AuthService = authService.NewAuthService(c.Backend)
	c.BookService = bookService.NewBookService(c.Backend)
	c.UserService = userService.NewUserService(c.Backend)
	c.TransactionService = transactionService.NewTransactionService(c.Backend, adminID)
	c.RequestService = requestService.NewRequestService(c.Backend, c.Notifier, adminID, c.Config.Notify.Timeout)
}

func (c *Container) initHandlers() {
	c.AuthHandler = authHandler.NewAuthHandler(c.AuthService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.TransactionHandler = transactionHandler.NewTransactionHandler(c.TransactionService)
	c.RequestHandler = requestHandler.NewRequestHandler(c.RequestService)
	c.WebSocketHandler = notificationHandler.NewWebSocketHandler(c.Hub, c.Config.WebSocket)
}

// ========================================
// HELPER METHODS
// ========================================

// BackendState reports the gRPC connectivity state, or "external" when the
// backend was injected.
func (c *Container) BackendState() string {
	if c.backendClient == nil {
		return "external"
	}
	return c.backendClient.State()
}

// RedisState is "disabled", "healthy" or "unhealthy".
func (c *Container) RedisState(ctx context.Context) string {
	if c.Redis == nil {
		return "disabled"
	}
	if err := c.Redis.HealthCheck(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// Cleanup releases resources on shutdown. In-flight notifications are allowed
// to finish before the backend connection closes.
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.RequestService != nil {
		c.RequestService.Wait()
	}

	if c.relayCancel != nil {
		c.relayCancel()
		<-c.relayDone
		log.Info().Msg("✅ Notification relay stopped")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		} else {
			log.Info().Msg("✅ Redis connections closed")
		}
	}

	if c.backendClient != nil {
		if err := c.backendClient.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close backend connection")
		} else {
			log.Info().Msg("✅ Backend connection closed")
		}
	}

	log.Info().Msg("✅ Container cleanup completed")
}
