package game

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/liangdas/mqant/conf"
	"github.com/liangdas/mqant/module"
	basemodule "github.com/liangdas/mqant/module/base"
	"github.com/liangdas/mqant/server"
	_ "github.com/lib/pq"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "rpg-backend/docs/game" // Swagger 生成的文档
	custommiddleware "rpg-backend/internal/middleware"
	"rpg-backend/internal/modules/game/handler"
	"rpg-backend/internal/modules/game/service"
	"rpg-backend/internal/modules/game/tasks"
	"rpg-backend/internal/pkg/config"
	"rpg-backend/internal/pkg/i18n"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
	natshealth "rpg-backend/internal/pkg/nats"
	"rpg-backend/internal/pkg/notify"
	redisClient "rpg-backend/internal/pkg/redis"
	"rpg-backend/internal/pkg/response"
	"rpg-backend/internal/pkg/security"
	"rpg-backend/internal/pkg/trace"
	"rpg-backend/internal/pkg/validator"
)

const maxOpenConns = 25

type GameModule struct {
	basemodule.BaseModule
	cfg              config.GameConfig
	logger           log.Logger
	db               *sql.DB
	redis            *redisClient.Client
	natsHealth       *natshealth.HealthChecker
	stopHealth       context.CancelFunc
	httpServer       *echo.Echo
	serviceContainer *service.ServiceContainer
	rpcHandler       *handler.ProgressionRPCHandler
	cleanupTask      *tasks.CleanupTask
	respWriter       response.Writer
}

func (m *GameModule) GetType() string {
	return "game"
}

func (m *GameModule) Version() string {
	return "1.0.0"
}

func (m *GameModule) OnAppConfigurationLoaded(app module.App) {
	m.BaseModule.OnAppConfigurationLoaded(app)
}

func (m *GameModule) OnInit(app module.App, settings *conf.ModuleSettings) {
	metrics.SetServiceName("game")
	m.BaseModule.OnInit(m, app, settings,
		server.RegisterInterval(15*time.Second),
		server.RegisterTTL(30*time.Second),
	)

	if err := m.initConfig(settings); err != nil {
		panic(fmt.Sprintf("Failed to load game config: %v", err))
	}

	if err := m.initDatabase(); err != nil {
		panic(fmt.Sprintf("Failed to initialize database: %v", err))
	}

	m.initRedis()
	m.initNatsHealth()

	m.respWriter = response.NewResponseHandler(m.logger, m.cfg.Environment)

	if err := m.initServices(); err != nil {
		panic(fmt.Sprintf("Failed to initialize services: %v", err))
	}

	m.initHTTPServer()
	m.setupRoutes()
	m.setupRPCMethods()

	if err := m.startCronTasks(); err != nil {
		panic(fmt.Sprintf("Failed to start cron tasks: %v", err))
	}

	go m.startHTTPServer()
}

// initConfig 环境变量优先，mqant Settings 只补充未设置的项
func (m *GameModule) initConfig(settings *conf.ModuleSettings) error {
	cfg, err := config.LoadGameConfig()
	if err != nil {
		return err
	}

	var values map[string]any
	if settings != nil {
		values = settings.Settings
	}
	cfg.DatabaseURL = config.SettingString(values, "database_url", cfg.DatabaseURL)
	cfg.JWTSecret = config.SettingString(values, "jwt_secret", cfg.JWTSecret)
	cfg.RedisHost = config.SettingString(values, "redis_host", cfg.RedisHost)
	if port := config.SettingString(values, "http_port", ""); port != "" && config.GetEnvOrDefault("GAME_HTTP_PORT", "") == "" {
		cfg.HTTPPort = port
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" && !cfg.TrustGatewayHeader {
		return fmt.Errorf("JWT_SECRET not set and gateway header not trusted")
	}

	m.cfg = cfg
	m.logger = log.GetLogger().With("module", "game")
	m.logger.Info("[Game Module] 配置加载完成", "config", cfg.LogFields())
	return nil
}

func (m *GameModule) initDatabase() error {
	db, err := sql.Open("postgres", m.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	m.db = db
	m.logger.Info("[Game Module] Database initialized successfully")
	return nil
}

// initRedis 未配置或连接失败时限流退化为进程内
func (m *GameModule) initRedis() {
	if m.cfg.RedisHost == "" {
		m.logger.Warn("[Game Module] REDIS_HOST 未配置，关卡配置限流仅在本进程内生效")
		return
	}

	client, err := redisClient.NewClient(redisClient.Config{
		Host:     m.cfg.RedisHost,
		Port:     m.cfg.RedisPort,
		Password: m.cfg.RedisPassword,
		DB:       m.cfg.RedisDB,
	}, metrics.GetServiceName())
	if err != nil {
		m.logger.Error("[Game Module] Redis 连接失败，限流仅在本进程内生效", err)
		return
	}

	m.redis = client
	m.logger.Info("[Game Module] Redis connected successfully", "host", m.cfg.RedisHost, "port", m.cfg.RedisPort, "db", m.cfg.RedisDB)
}

func (m *GameModule) initNatsHealth() {
	ctx, cancel := context.WithCancel(context.Background())
	m.stopHealth = cancel
	m.natsHealth = natshealth.NewHealthChecker(notify.Conn(), 10*time.Second)
	go m.natsHealth.Start(ctx)
}

func (m *GameModule) initServices() error {
	opts := service.ContainerOptions{
		Publisher: notify.NatsPublisher{},
		Logger:    m.logger,
	}
	if m.redis != nil {
		opts.RedisCounter = m.redis
	}

	container, err := service.NewServiceContainer(m.db, m.cfg, opts)
	if err != nil {
		return err
	}

	m.serviceContainer = container
	m.rpcHandler = handler.NewProgressionRPCHandler(container)
	m.logger.Info("[Game Module] Services initialized", "validator", container.GetProgressionService().ValidatorName())
	return nil
}

func (m *GameModule) initHTTPServer() {
	m.httpServer = echo.New()
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true
	m.httpServer.Validator = validator.New()

	m.httpServer.Use(trace.Middleware())
	m.httpServer.Use(metrics.Middleware(metrics.GetServiceName()))
	m.httpServer.Use(i18n.Middleware())

	loggingConfig := custommiddleware.DefaultLoggingConfig()
	if !m.cfg.IsProduction() {
		loggingConfig.Detailed = true
		loggingConfig.LogRequestBody = true
	}
	m.httpServer.Use(custommiddleware.LoggingMiddlewareWithConfig(m.logger, loggingConfig))
	m.httpServer.Use(custommiddleware.RecoveryMiddleware(m.respWriter, m.logger))
	m.httpServer.Use(custommiddleware.ErrorMiddleware(m.respWriter, m.logger))

	corsConfig := security.DefaultCORSConfig()
	if len(m.cfg.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = m.cfg.CORSAllowOrigins
	}
	m.httpServer.Use(security.CORSMiddleware(corsConfig))
	m.httpServer.Use(security.HeadersMiddleware())

	if m.cfg.HTTPRateLimit > 0 {
		m.httpServer.Use(custommiddleware.RateLimitMiddleware(m.cfg.HTTPRateLimit))
	}
}

func (m *GameModule) setupRoutes() {
	handler.RegisterRoutes(m.httpServer.Group("/api/v1/game"), handler.RouteDeps{
		Container:  m.serviceContainer,
		RespWriter: m.respWriter,
		Auth: custommiddleware.AuthConfig{
			JWTSecret:          []byte(m.cfg.JWTSecret),
			TrustGatewayHeader: m.cfg.TrustGatewayHeader,
		},
		Logger: m.logger,
	})

	if !m.cfg.IsProduction() {
		m.httpServer.GET("/swagger/*", echoSwagger.WrapHandler)
	}
	m.httpServer.GET("/health", m.health)
	m.httpServer.GET("/metrics", metrics.EchoHandler())

	m.logger.Info("[Game Module] Routes configured", "prefix", "/api/v1/game", "port", m.cfg.HTTPPort)
}

// health 数据库不可用时返回 503，Redis 与 NATS 只做降级报告
func (m *GameModule) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]any{
		"status": "ok",
		"module": "game",
		"nats":   m.natsHealth.Status(),
	}

	if err := m.db.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unavailable"
	} else {
		body["database"] = "ok"
	}

	switch {
	case m.redis == nil:
		body["redis"] = "disabled"
	case m.redis.Healthy(ctx) != nil:
		body["redis"] = "unavailable"
	default:
		body["redis"] = "ok"
	}

	return c.JSON(status, body)
}

func (m *GameModule) setupRPCMethods() {
	m.GetServer().RegisterGO("GetChapterProgress", m.rpcHandler.GetChapterProgress)
	m.logger.Info("[Game Module] RPC methods registered", "methods", []string{"GetChapterProgress"})
}

func (m *GameModule) startCronTasks() error {
	m.cleanupTask = tasks.NewCleanupTask(
		m.serviceContainer.GetBattleSessionRepo(),
		m.cfg.SessionRetention,
		m.db,
		m.logger,
	)
	return m.cleanupTask.Start()
}

func (m *GameModule) startHTTPServer() {
	addr := ":" + m.cfg.HTTPPort
	if _, err := strconv.Atoi(m.cfg.HTTPPort); err != nil {
		addr = m.cfg.HTTPPort
	}

	m.logger.Info("[Game Module] Starting HTTP server", "addr", addr)
	if err := m.httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
		m.logger.Error("[Game Module] HTTP server error", err)
	}
}

func (m *GameModule) Run(closeSig chan bool) {
	m.logger.Info("[Game Module] Started successfully")
	<-closeSig
}

func (m *GameModule) OnDestroy() {
	if m.cleanupTask != nil {
		m.cleanupTask.Stop()
	}

	if m.stopHealth != nil {
		m.stopHealth()
	}

	if m.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := m.httpServer.Shutdown(ctx); err != nil {
			m.logger.Error("[Game Module] Failed to shut down HTTP server", err)
		}
		cancel()
	}

	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			m.logger.Error("[Game Module] Failed to close Redis", err)
		}
	}

	if m.db != nil {
		if err := m.db.Close(); err != nil {
			m.logger.Error("[Game Module] Failed to close database", err)
		}
	}

	m.BaseModule.OnDestroy()
	m.logger.Info("[Game Module] Destroyed")
}

func Module() module.Module {
	return new(GameModule)
}
