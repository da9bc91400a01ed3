package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/coverbase/internal/config"
	"github.com/smallbiznis/coverbase/internal/customer"
	customerdomain "github.com/smallbiznis/coverbase/internal/customer/domain"
	obslogger "github.com/smallbiznis/coverbase/internal/observability/logger"
	"github.com/smallbiznis/coverbase/internal/risk"
	riskdomain "github.com/smallbiznis/coverbase/internal/risk/domain"
	"github.com/smallbiznis/coverbase/internal/risktype"
	risktypedomain "github.com/smallbiznis/coverbase/internal/risktype/domain"
	"github.com/smallbiznis/coverbase/internal/state"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	state.Module,
	risktype.Module,
	customer.Module,
	risk.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.ServerAddr))
			go func() {
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

type Params struct {
	fx.In

	Engine      *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	RiskTypeSvc risktypedomain.Service
	CustomerSvc customerdomain.Service
	RiskSvc     riskdomain.Service
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	riskTypeSvc risktypedomain.Service
	customerSvc customerdomain.Service
	riskSvc     riskdomain.Service
}

func NewServer(p Params) *Server {
	s := &Server{
		engine:      p.Engine,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		riskTypeSvc: p.RiskTypeSvc,
		customerSvc: p.CustomerSvc,
		riskSvc:     p.RiskSvc,
	}
	s.registerAPIRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/risk_types", s.RiskTypes)
	api.POST("/get_risk_type", s.GetRiskType)
	api.POST("/add_risk_type", s.AddRiskType)
	api.POST("/add_risk_type_fields", s.AddRiskTypeFields)

	api.GET("/customers", s.Customers)
	api.POST("/register_customer", s.RegisterCustomer)

	api.POST("/subscribe_risk", s.SubscribeRisk)
	api.GET("/customers/:id/risks", s.CustomerRisks)
}
