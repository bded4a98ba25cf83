package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salesdash/backend/internal/infrastructure/auth"
	"github.com/salesdash/backend/internal/infrastructure/logger"
	"github.com/salesdash/backend/internal/infrastructure/metrics"
	"github.com/salesdash/backend/internal/interfaces/http/handler"
	"github.com/salesdash/backend/internal/interfaces/http/middleware"
)

// Handlers groups the API handlers
type Handlers struct {
	Auth   *handler.AuthHandler
	Venue  *handler.VenueHandler
	Report *handler.ReportHandler
	System *handler.SystemHandler
}

// EngineConfig carries the cross-cutting pieces of the HTTP stack
type EngineConfig struct {
	Logger         *zap.Logger
	Sessions       *auth.SessionService
	Recorder       *metrics.Recorder
	MetricsPath    string // empty disables the metrics endpoint
	LoginLimiter   *middleware.RateLimiter
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	TracingService string // empty disables server spans
}

// NewEngine builds the gin engine with the middleware chain and every route.
//
// Middleware order:
//  1. RequestID, so every later log line and error carries it
//  2. Tracing, so log lines carry trace and span ids
//  3. Recovery and request logging
//  4. Metrics, security headers, CORS and body limit
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	if cfg.TracingService != "" {
		engine.Use(middleware.Tracing(cfg.TracingService)...)
	}
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(middleware.HTTPMetrics(cfg.Recorder))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)
	if cfg.MetricsPath != "" {
		engine.GET(cfg.MetricsPath, gin.WrapH(cfg.Recorder.Handler()))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	session := middleware.SessionAuth(cfg.Sessions)

	// Public: login only, throttled per client IP
	authRoutes := NewGroup("/auth")
	login := []gin.HandlerFunc{h.Auth.Login}
	if cfg.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimitByIP(cfg.LoginLimiter)}, login...)
	}
	authRoutes.POST("/login", login...)
	sessionRoutes := authRoutes.Group("")
	sessionRoutes.Use(session)
	sessionRoutes.POST("/logout", h.Auth.Logout)
	sessionRoutes.GET("/me", h.Auth.Me)

	venueRoutes := NewGroup("/venues").Use(session)
	venueRoutes.GET("", h.Venue.ListVenues)

	reportRoutes := NewGroup("/reports").Use(session)
	reportRoutes.GET("/sales", h.Report.GetSalesReport)
	reportRoutes.GET("/sales/export", h.Report.ExportSalesReport)
	reportRoutes.GET("/summary", h.Report.GetSummary)
	reportRoutes.GET("/history", h.Report.GetHistory)

	systemRoutes := NewGroup("/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)

	r.Register(authRoutes).
		Register(venueRoutes).
		Register(reportRoutes).
		Register(systemRoutes)
	r.Setup()

	return engine, nil
}
