package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	commissiondomain "github.com/smallbiznis/remag/internal/commission/domain"
	"github.com/smallbiznis/remag/internal/config"
	"github.com/smallbiznis/remag/internal/observability"
	obsmiddleware "github.com/smallbiznis/remag/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/remag/internal/observability/metrics"
	obstracing "github.com/smallbiznis/remag/internal/observability/tracing"
	"github.com/smallbiznis/remag/internal/ratelimit"
	settlementdomain "github.com/smallbiznis/remag/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// quoteLimiter is satisfied by *ratelimit.QuoteLimiter, including a nil one.
type quoteLimiter interface {
	Enabled() bool
	Allow(ctx context.Context, clientID string) (*ratelimit.Result, error)
}

type Server struct {
	engine       *gin.Engine
	commission   commissiondomain.Engine
	settlements  settlementdomain.Service
	quoteLimiter quoteLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Commission   commissiondomain.Engine
	Settlements  settlementdomain.Service
	QuoteLimiter *ratelimit.QuoteLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		commission:   p.Commission,
		settlements:  p.Settlements,
		quoteLimiter: p.QuoteLimiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Commission --------
	api.GET("/commission/tiers", s.ListCommissionTiers)
	api.GET("/commission/quote", s.QuoteRateLimit(), s.GetCommissionQuote)
	api.POST("/commission/quotes", s.QuoteRateLimit(), s.CreateCommissionQuotes)

	// -------- Settlements --------
	api.POST("/settlements", s.CreateSettlement)
	api.GET("/settlements", s.ListSettlements)
	api.GET("/settlements/:id", s.GetSettlementByID)
	api.GET("/sellers/:id/settlement-summary", s.GetSellerSettlementSummary)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
