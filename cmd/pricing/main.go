package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/messaging"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/mysql"
	httphandler "github.com/wyfcoding/optionpricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/pkg/app"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/health"
	"github.com/wyfcoding/pkg/limiter"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/pkg/middleware"
	"google.golang.org/grpc"
)

// BootstrapName 服务唯一标识
const BootstrapName = "pricing"

// Config 服务扩展配置
type Config struct {
	config.Config `mapstructure:",squash"`
	Pricing       struct {
		OutboxBatchSize int           `mapstructure:"outbox_batch_size" toml:"outbox_batch_size"`
		OutboxInterval  time.Duration `mapstructure:"outbox_interval" toml:"outbox_interval"`
	} `mapstructure:"pricing" toml:"pricing"`
}

// AppContext 应用上下文
type AppContext struct {
	AppService *application.PricingService
	Limiter    limiter.Limiter
	Config     *Config
	DB         *database.DB
	Redis      *cache.RedisCache
}

func main() {
	if err := app.NewBuilder(BootstrapName).
		WithConfig(&Config{}).
		WithService(initService).
		WithGRPC(registerGRPC).
		WithGin(registerGin).
		WithGinMiddleware(
			middleware.CORS(),
			middleware.TimeoutMiddleware(30*time.Second),
		).
		Build().
		Run(); err != nil {
		slog.Error("service bootstrap failed", "error", err)
	}
}

func registerGRPC(s *grpc.Server, srv interface{}) {
	ctx := srv.(*AppContext)
	health.RegisterGRPCHealthServer(s, BootstrapName, []health.Checker{
		health.DBChecker(ctx.DB),
		health.RedisChecker(ctx.Redis.GetClient()),
	})
	slog.Default().Info("gRPC health service registered", "service", BootstrapName)
}

func registerGin(e *gin.Engine, srv interface{}) {
	ctx := srv.(*AppContext)
	if ctx.Config.Server.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	e.Use(middleware.RateLimitWithLimiter(ctx.Limiter))
	httpHandler := httphandler.NewPricingHandler(ctx.AppService.Command, ctx.AppService.Query)
	api := e.Group("/api/v1")
	{
		httpHandler.RegisterRoutes(api)
	}
	slog.Default().Info("HTTP routes registered", "service", BootstrapName)
}

func initService(cfg interface{}, m *metrics.Metrics) (interface{}, func(), error) {
	c := cfg.(*Config)
	slog.Info("initializing service dependencies...")
	logger := logging.Default()

	// 1. 数据库
	db, err := database.NewDB(c.Data.Database, c.CircuitBreaker, logger, m)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init db: %w", err)
	}
	gormDB := db.RawDB()

	if err := gormDB.AutoMigrate(&mysql.ValuationModel{}, &outbox.OutboxMessage{}); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	// 2. 缓存与限流
	redisCache, err := cache.NewRedisCache(c.Data.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init redis: %w", err)
	}
	rateLimiter := limiter.NewRedisLimiter(redisCache.GetClient(), c.RateLimit.Rate, time.Second)

	// 3. 消息队列 & Outbox
	pusher := messaging.NewKafkaPusher(c.MessageQueue.Kafka, logger)
	batchSize := c.Pricing.OutboxBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	interval := c.Pricing.OutboxInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	outboxMgr := outbox.NewManager(gormDB, logger.Logger)
	outboxProc := outbox.NewProcessor(outboxMgr, pusher.Push, batchSize, interval)
	outboxProc.Start()

	// 4. 仓储与服务
	valuationRepo := mysql.NewValuationRepository(gormDB)
	publisher := outbox.NewPublisher(outboxMgr)
	appService := application.NewPricingService(valuationRepo, publisher)

	cleanup := func() {
		slog.Info("cleaning up resources...")
		outboxProc.Stop()
		pusher.Close()
		redisCache.Close()
		if sqlDB, err := gormDB.DB(); err == nil && sqlDB != nil {
			sqlDB.Close()
		}
	}

	return &AppContext{
		AppService: appService,
		Limiter:    rateLimiter,
		Config:     c,
		DB:         db,
		Redis:      redisCache,
	}, cleanup, nil
}
