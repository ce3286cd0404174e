package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/entitle/internal/cache"
	"github.com/smallbiznis/entitle/internal/config"
	entitlementdomain "github.com/smallbiznis/entitle/internal/entitlement/domain"
	"github.com/smallbiznis/entitle/internal/observability"
	obsmiddleware "github.com/smallbiznis/entitle/internal/observability/logger"
	"github.com/smallbiznis/entitle/internal/observability/metrics"
	obstracing "github.com/smallbiznis/entitle/internal/observability/tracing"
	"github.com/smallbiznis/entitle/internal/payment/webhook"
	reconciledomain "github.com/smallbiznis/entitle/internal/reconcile/domain"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	userdomain "github.com/smallbiznis/entitle/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	db             *gorm.DB
	entitlementSvc entitlementdomain.Service
	reconcileSvc   reconciledomain.Service
	webhookSvc     *webhook.Service
	users          userdomain.Repository
	tiers          tierdomain.Repository
	subCache       cache.SubscriptionCache
	metrics        *metrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	DB             *gorm.DB
	EntitlementSvc entitlementdomain.Service
	ReconcileSvc   reconciledomain.Service
	WebhookSvc     *webhook.Service
	Users          userdomain.Repository
	Tiers          tierdomain.Repository
	SubCache       cache.SubscriptionCache
	Metrics        *metrics.Metrics
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		db:             p.DB,
		entitlementSvc: p.EntitlementSvc,
		reconcileSvc:   p.ReconcileSvc,
		webhookSvc:     p.WebhookSvc,
		users:          p.Users,
		tiers:          p.Tiers,
		subCache:       p.SubCache,
		metrics:        p.Metrics,
	}
}

func registerRoutes(s *Server) {
	v1 := s.engine.Group("/v1")
	v1.GET("/users/:uuid/entitlement", s.GetUserEntitlement)
	v1.GET("/users/:uuid/subscription", s.GetUserSubscription)
	v1.POST("/webhooks/payments", s.HandlePaymentWebhook)
	v1.POST("/licenses/redeem", s.RedeemLicense)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
