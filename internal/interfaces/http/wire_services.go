package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizcard/internal/application/issuance/issuancetrigger"
	"bizcard/internal/application/publication/publicationgate"
	"bizcard/internal/infrastructure/artifact"
	"bizcard/internal/infrastructure/auth"
	"bizcard/internal/infrastructure/config"
	"bizcard/internal/infrastructure/email"
	"bizcard/internal/infrastructure/payment/stripegateway"
	"bizcard/internal/infrastructure/permission"
	"bizcard/internal/infrastructure/scheduler"
	"bizcard/internal/interfaces/http/middleware"
	"bizcard/internal/shared/logger"
)

// ============================================================
// Section 1: Infrastructure - Redis, Repositories, Operator auth
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	redisClient, err := initRedis(cfg, log)
	if err != nil {
		return err
	}
	c.redis = redisClient

	c.repos = newRepositories(c.db)

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes, cfg.Auth.JWT.Issuer)

	enforcer, err := permission.NewEnforcer(c.db, log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to initialize permission enforcer: %w", err)
	}
	if err := enforcer.SyncPolicies(cfg.Auth.Policies); err != nil {
		return fmt.Errorf("failed to sync operator policies: %w", err)
	}
	c.enforcer = enforcer

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, log)

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}

// ============================================================
// Section 2: Payments - Gateway, Publication gate, Issuance
// ============================================================

func (c *Container) initPayments() error {
	cfg := c.cfg
	log := c.log

	gateway := stripegateway.New(cfg.Gateway, log.Named("gateway"))
	c.gateway = gateway
	c.verifier = stripegateway.NewWebhookVerifier(cfg.Gateway.WebhookSecret, cfg.Gateway.WebhookTolerance)

	gate := publicationgate.NewGate(c.repos.paymentRepo, c.repos.cardRepo, log.Named("publication"))

	generator, err := newArtifactGenerator(cfg, log)
	if err != nil {
		return err
	}

	notifier := email.NewIssuanceNotifier(
		c.repos.cardRepo,
		c.repos.paymentRepo,
		newEmailSender(cfg, log),
		email.IssuanceNotifierConfig{
			CardURLFormat: cfg.Billing.PublicCardURL,
			OpsAddress:    cfg.Email.OpsAddress,
		},
		log.Named("notifier"),
	)

	trigger := issuancetrigger.NewTrigger(c.repos.issuanceRepo, c.repos.cardRepo, generator, notifier, log.Named("issuance"))

	c.ucs = newUseCases(c, gate, trigger)
	return nil
}

// newArtifactGenerator stores artifacts in S3 when a bucket is configured and
// inline otherwise.
func newArtifactGenerator(cfg *config.Config, log logger.Interface) (*artifact.Generator, error) {
	var store artifact.ObjectStore = artifact.InlineStore{}
	if cfg.Artifact.Bucket != "" {
		s3Store, err := artifact.NewS3StoreFromConfig(cfg.Artifact)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact store: %w", err)
		}
		store = s3Store
	} else {
		log.Warnw("artifact bucket not configured, artifacts are stored inline")
	}

	return artifact.NewGenerator(artifact.PayloadRenderer{}, store, cfg.Billing.PublicCardURL, log.Named("artifact")), nil
}

func newEmailSender(cfg *config.Config, log logger.Interface) email.Sender {
	sender, err := email.NewSMTPSender(cfg.Email)
	if err != nil {
		log.Warnw("SMTP not configured, issuance emails are logged only", "error", err)
		return email.NewLogSender(log.Named("email"))
	}
	return sender
}

// ============================================================
// Section 4: Background jobs
// ============================================================

func (c *Container) initScheduler() error {
	if !c.cfg.Sweeper.Enabled {
		c.log.Infow("pending payment sweeper disabled")
		return nil
	}

	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := manager.RegisterPendingSweepJob(c.ucs.sweepPendingPayments, c.cfg.Sweeper.Interval); err != nil {
		return fmt.Errorf("failed to register pending sweep job: %w", err)
	}
	c.schedulerManager = manager
	return nil
}

// StartBackgroundJobs starts the scheduler. It is separate from NewContainer
// so commands that only need wiring do not run jobs.
func (c *Container) StartBackgroundJobs() {
	if c.schedulerManager != nil {
		c.schedulerManager.Start()
	}
}
