package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/seology-ai/seology/internal/audit/domain"
	"github.com/seology-ai/seology/internal/chat"
	"github.com/seology-ai/seology/internal/config"
	connectionservice "github.com/seology-ai/seology/internal/connection/service"
	usageservice "github.com/seology-ai/seology/internal/usage/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServerParam struct {
	fx.In

	Cfg         config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	Engine      *gin.Engine
	Chat        *chat.Service
	Connections *connectionservice.Service
	Usage       *usageservice.Service
	AuditRepo   auditdomain.Repository
}

// Server owns the HTTP surface. Handlers are methods so they share the
// service graph injected at startup.
type Server struct {
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	engine *gin.Engine

	chatSvc     *chat.Service
	connections *connectionservice.Service
	usageSvc    *usageservice.Service
	auditRepo   auditdomain.Repository

	chatLimiter *rateLimiter
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:    p.Cfg,
		db:     p.DB,
		log:    p.Log.Named("server"),
		engine: p.Engine,

		chatSvc:     p.Chat,
		connections: p.Connections,
		usageSvc:    p.Usage,
		auditRepo:   p.AuditRepo,

		chatLimiter: newRateLimiter(p.Cfg.RateLimit.ChatPerShop, p.Cfg.RateLimit.ChatWindow),
	}
}

// RegisterAPIRoutes mounts every endpoint on the engine.
func (s *Server) RegisterAPIRoutes() {
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.POST("/shopify/chat", s.Chat)
	api.GET("/usage", s.SessionRequired(), s.Usage)
	api.GET("/audit", s.SessionRequired(), s.Audit)
	api.POST("/test/cleanup", s.TestCleanup)
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
