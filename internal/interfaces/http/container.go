package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bizcard/internal/application/payment/paymentgateway"
	"bizcard/internal/application/payment/usecases"
	"bizcard/internal/infrastructure/auth"
	"bizcard/internal/infrastructure/config"
	"bizcard/internal/infrastructure/permission"
	"bizcard/internal/infrastructure/scheduler"
	"bizcard/internal/interfaces/http/middleware"
	"bizcard/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and background services. It wires everything together and
// provides Shutdown for graceful termination.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Gateway adapter and webhook verification
	gateway  paymentgateway.PaymentGateway
	verifier paymentgateway.WebhookVerifier

	// Operator auth
	jwtSvc               *auth.JWTService
	enforcer             *permission.Enforcer
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware

	schedulerManager *scheduler.SchedulerManager
}

// NewContainer creates a Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, Repositories, Operator auth
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Payments - Gateway, Publication gate, Issuance, Use cases
	if err := c.initPayments(); err != nil {
		return nil, err
	}

	// Section 3: Handlers
	c.initHandlers()

	// Section 4: Background jobs
	if err := c.initScheduler(); err != nil {
		return nil, err
	}

	return c, nil
}

// Shutdown stops background jobs and closes Redis. The database is owned by
// the caller.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Errorw("failed to close redis client", "error", err)
		}
	}
}

// SweepPendingPayments runs one pass of the pending payment sweep outside the
// scheduler.
func (c *Container) SweepPendingPayments(ctx context.Context) (*usecases.SweepResult, error) {
	return c.ucs.sweepPendingPayments.Execute(ctx)
}
