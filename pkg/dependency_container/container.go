package dependency_container

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/SiteGuard/pkg/app/blocklist"
	"github.com/NeuralTrust/SiteGuard/pkg/app/detection"
	"github.com/NeuralTrust/SiteGuard/pkg/app/eventlog"
	"github.com/NeuralTrust/SiteGuard/pkg/app/ratelimit"
	"github.com/NeuralTrust/SiteGuard/pkg/config"
	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	handlers "github.com/NeuralTrust/SiteGuard/pkg/handlers/http"
	wsHandlers "github.com/NeuralTrust/SiteGuard/pkg/handlers/websocket"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/cache"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/database"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/metrics"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/repository"
	infraTelemetry "github.com/NeuralTrust/SiteGuard/pkg/infra/telemetry"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/telemetry/kafka"
	infraWebsocket "github.com/NeuralTrust/SiteGuard/pkg/infra/websocket"
	"github.com/NeuralTrust/SiteGuard/pkg/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const upstreamBreakerFailures = 5

type Container struct {
	Redis                    *redis.Client
	DB                       *database.DB
	JWTManager               jwt.Manager
	Detector                 detection.Detector
	Limiter                  ratelimit.Limiter
	EventLog                 eventlog.Service
	BlockList                blocklist.Service
	FeedHub                  *infraWebsocket.Hub
	MetricsWorker            metrics.Worker
	TelemetryExporterLocator *infraTelemetry.ExporterLocator
	HandlerTransport         handlers.HandlerTransport
	WSHandlerTransport       wsHandlers.HandlerTransport
	SiteMiddlewareTransport  *middleware.Transport
	AdminMiddlewareTransport *middleware.Transport
	InspectorMiddleware      middleware.Middleware
	AdminAuthMiddleware      middleware.Middleware
	FeedUpgradeMiddleware    middleware.Middleware

	cfg           *config.Config
	logger        *logrus.Logger
	memoryLimiter *ratelimit.MemoryLimiter
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg, logger := di.Cfg, di.Logger
	c := &Container{cfg: cfg, logger: logger}

	if cfg.NeedsRedis() {
		client, err := cache.NewClient(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.Redis = client
	}
	if cfg.EventLog.Backend == config.BackendPostgres {
		db, err := database.NewDB(logger, cfg.Database)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
	}

	// event export
	c.FeedHub = infraWebsocket.NewHub(logger)
	c.TelemetryExporterLocator = infraTelemetry.NewExporterLocator(
		infraTelemetry.WithExporter(kafka.NewKafkaExporter()),
	)
	sinks, err := c.TelemetryExporterLocator.Build(cfg.Telemetry.Exporters)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize telemetry exporters: %w", err)
	}
	c.MetricsWorker = metrics.NewWorker(logger, append(sinks, c.FeedHub)...)
	c.MetricsWorker.StartWorkers(cfg.EventLog.Workers)

	// repositories
	eventRepo, err := c.eventRepository()
	if err != nil {
		c.Close()
		return nil, err
	}
	blockRepo, err := c.blockRepository()
	if err != nil {
		c.Close()
		return nil, err
	}

	// services
	c.EventLog = eventlog.NewService(logger, eventRepo, c.MetricsWorker, nil)
	c.BlockList = blocklist.NewService(logger, blockRepo, c.EventLog, &blocklist.Options{
		Observer: prometheus.SetBlockedClients,
	})
	c.Detector = detection.NewDetector(logger, detection.NewSignatureDatabase())
	if c.Limiter, err = c.limiter(); err != nil {
		c.Close()
		return nil, err
	}
	c.JWTManager = jwt.NewJwtManager(&cfg.Server)

	// middleware
	c.InspectorMiddleware = middleware.NewInspectorMiddleware(
		logger,
		c.Detector,
		c.Limiter,
		c.BlockList,
		c.EventLog,
		middleware.InspectorOptions{
			AuthPaths:    cfg.Security.AuthPaths,
			MaxBodyBytes: cfg.Security.Detection.MaxBodyBytes,
			BodyMode:     cfg.Security.RequestBody.Mode,
			RedactFields: cfg.Security.RequestBody.RedactFields,
		},
	)
	c.AdminAuthMiddleware = middleware.NewAdminAuthMiddleware(logger, c.JWTManager)
	c.FeedUpgradeMiddleware = middleware.NewFeedUpgradeMiddleware(
		logger,
		infraWebsocket.NewSemaphore(cfg.Security.Feed.MaxConnections),
	)
	c.SiteMiddlewareTransport = middleware.NewTransport(
		middleware.NewPanicRecoverMiddleware(logger),
		middleware.NewSecurityHeadersMiddleware(cfg.Security.Headers),
		middleware.NewIdentityMiddleware(logger, c.JWTManager),
	)
	c.AdminMiddlewareTransport = middleware.NewTransport(
		middleware.NewPanicRecoverMiddleware(logger),
		middleware.NewSecurityHeadersMiddleware(cfg.Security.Headers),
	)

	// handlers
	forwardedHandler, err := handlers.NewForwardedHandler(
		logger,
		httpx.NewUpstreamClient(httpx.WithTimeout(cfg.Server.UpstreamTimeout)),
		httpx.NewCircuitBreaker(logger, "upstream", cfg.Server.UpstreamTimeout, upstreamBreakerFailures),
		cfg.Server.UpstreamURL,
		cfg.Server.UpstreamTimeout,
	)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.HandlerTransport = handlers.HandlerTransport{
		ForwardedHandler:        forwardedHandler,
		HealthHandler:           handlers.NewHealthHandler(cfg.Server.Environment),
		ListSecurityLogsHandler: handlers.NewListSecurityLogsHandler(logger, c.EventLog),
		SecurityStatsHandler:    handlers.NewSecurityStatsHandler(logger, c.EventLog),
		BlockIPHandler:          handlers.NewBlockIPHandler(logger, c.BlockList),
		UnblockIPHandler:        handlers.NewUnblockIPHandler(logger, c.BlockList),
		ListBlockedIPsHandler:   handlers.NewListBlockedIPsHandler(logger, c.BlockList),
		GetVersionHandler:       handlers.NewGetVersionHandler(),
	}
	c.WSHandlerTransport = wsHandlers.HandlerTransport{
		SecurityFeedHandler: wsHandlers.NewSecurityFeedHandler(logger, c.FeedHub),
	}

	return c, nil
}

func (c *Container) eventRepository() (security.EventRepository, error) {
	ev := c.cfg.EventLog
	switch ev.Backend {
	case config.BackendMemory:
		return repository.NewMemoryEventRepository(ev.Capacity), nil
	case config.BackendFile:
		repo, err := repository.NewFileEventRepository(c.logger, ev.FilePath, ev.Capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to open event log file: %w", err)
		}
		return repo, nil
	case config.BackendPostgres:
		return repository.NewPostgresEventRepository(c.DB.DB, ev.Capacity), nil
	case config.BackendRedis:
		return repository.NewRedisEventRepository(c.logger, c.Redis, ev.RedisKey, ev.Capacity), nil
	}
	return nil, fmt.Errorf("unknown event log backend: %s", ev.Backend)
}

func (c *Container) blockRepository() (security.BlockRepository, error) {
	bl := c.cfg.Security.BlockList
	switch bl.Backend {
	case config.BackendMemory:
		return repository.NewMemoryBlockRepository(), nil
	case config.BackendRedis:
		return repository.NewRedisBlockRepository(c.logger, c.Redis, bl.Key), nil
	}
	return nil, fmt.Errorf("unknown block list backend: %s", bl.Backend)
}

func (c *Container) limiter() (ratelimit.Limiter, error) {
	rl := c.cfg.Security.RateLimit
	policy := ratelimit.Policy{Window: rl.Window, MaxRequests: rl.MaxRequests}
	switch rl.Backend {
	case config.BackendMemory:
		c.memoryLimiter = ratelimit.NewMemoryLimiter(c.logger, policy, nil)
		return c.memoryLimiter, nil
	case config.BackendRedis:
		return ratelimit.NewRedisLimiter(c.logger, c.Redis, policy, nil), nil
	}
	return nil, fmt.Errorf("unknown rate limit backend: %s", rl.Backend)
}

// Run performs background maintenance until ctx is cancelled.
func (c *Container) Run(ctx context.Context) {
	if c.memoryLimiter == nil {
		<-ctx.Done()
		return
	}
	c.memoryLimiter.Run(ctx, c.cfg.Security.RateLimit.SweepInterval)
}

// Close drains the export queue and releases backend connections.
func (c *Container) Close() {
	if c.MetricsWorker != nil {
		c.MetricsWorker.Shutdown()
	} else if c.FeedHub != nil {
		c.FeedHub.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.logger.WithError(err).Warn("failed to close database")
		}
	}
}
