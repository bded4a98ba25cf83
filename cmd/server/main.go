package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	identityapp "github.com/salesdash/backend/internal/application/identity"
	reportapp "github.com/salesdash/backend/internal/application/report"
	"github.com/salesdash/backend/internal/domain/sales"
	"github.com/salesdash/backend/internal/domain/venue"
	"github.com/salesdash/backend/internal/infrastructure/auth"
	"github.com/salesdash/backend/internal/infrastructure/cache"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"github.com/salesdash/backend/internal/infrastructure/logger"
	"github.com/salesdash/backend/internal/infrastructure/metrics"
	"github.com/salesdash/backend/internal/infrastructure/persistence"
	"github.com/salesdash/backend/internal/infrastructure/scheduler"
	"github.com/salesdash/backend/internal/infrastructure/telemetry"
	"github.com/salesdash/backend/internal/infrastructure/upstream"
	"github.com/salesdash/backend/internal/interfaces/http/handler"
	"github.com/salesdash/backend/internal/interfaces/http/middleware"
	"github.com/salesdash/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.ForEnvironment(cfg.App.Env, logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	// OpenTelemetry: traces always, logs when export_logs is set
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	logsCfg := otelCfg
	logsCfg.Enabled = otelCfg.Enabled && cfg.Telemetry.ExportLogs
	loggerProvider, err := telemetry.NewLoggerProvider(context.Background(), logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting sales dashboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("upstream", cfg.Upstream.Mode),
	)
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis backs both the line item cache and session revocation when enabled
	var redisClient *redis.Client
	if cfg.Cache.Driver == config.CacheDriverRedis {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-process stores", zap.Error(err))
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("Error closing Redis", zap.Error(err))
				}
			}()
		}
	}

	// Initialize database connection with the zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterGormTracing(db.DB, cfg.Database.Driver); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	if err := db.Migrate(log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	recorder := metrics.NewRecorder()
	catalog := venue.DefaultCatalog()

	// Sales pipeline
	var sharedClient redis.UniversalClient
	if redisClient != nil {
		sharedClient = redisClient
	}
	lineCache := cache.NewLineItemCache(cfg.Cache, sharedClient, log)
	source := upstream.NewSource(cfg.Upstream, lineCache, cfg.Cache.SettledTTL, recorder, log)
	aggregator := sales.NewAggregator(
		sales.NewVenueRules(cfg.Venues.TieringVenues, cfg.Venues.DropZeroConsumoVenues), nil, nil)

	runs := persistence.NewReportRunRepository(db.DB)
	reportService := reportapp.NewReportService(
		source,
		aggregator,
		catalog,
		runs,
		recorder,
		reportapp.ServiceConfig{MaxConcurrency: cfg.Upstream.MaxConcurrency},
		log,
	)

	// Daily maintenance: warm settled nights into the cache, prune old history
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Scheduler.Enabled {
		venues := catalog.All()
		venueIDs := make([]int, 0, len(venues))
		for _, v := range venues {
			venueIDs = append(venueIDs, v.ID)
		}
		executor := scheduler.NewMaintenanceExecutor(source, runs, cfg.Scheduler.HistoryRetention, log)
		maintenance, err = scheduler.NewMaintenanceScheduler(cfg.Scheduler, executor, venueIDs, log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := maintenance.Start(context.Background()); err != nil {
			log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
		}
	}

	// Identity
	accounts, err := auth.NewAccountDirectory(cfg.Accounts, catalog)
	if err != nil {
		log.Fatal("Invalid account configuration", zap.Error(err))
	}
	if accounts.Len() == 0 {
		log.Warn("No accounts configured, every login will be rejected")
	}

	var revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	if redisClient != nil {
		revocations = auth.NewRedisRevocationStore(redisClient)
	}
	sessions := auth.NewSessionService(cfg.JWT, revocations)
	authService := identityapp.NewAuthService(accounts, sessions, catalog, log)

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	tracingService := ""
	if tracerProvider.IsEnabled() {
		tracingService = cfg.Telemetry.ServiceName
	}

	var loginLimiter *middleware.RateLimiter
	if cfg.HTTP.LoginRateLimit > 0 {
		loginLimiter = middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateBurst)
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		Sessions:       sessions,
		Recorder:       recorder,
		MetricsPath:    metricsPath,
		LoginLimiter:   loginLimiter,
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		TracingService: tracingService,
	}, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Venue:  handler.NewVenueHandler(reportService),
		Report: handler.NewReportHandler(reportService, catalog),
		System: handler.NewSystemHandler(cfg.App.Name, version, checks),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if maintenance != nil {
		if err := maintenance.Stop(ctx); err != nil {
			log.Warn("Maintenance scheduler did not stop cleanly", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider did not flush", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(ctx); err != nil {
		log.Warn("Logger provider did not flush", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
