package server

import (
	"github.com/gin-gonic/gin"
	"github.com/seology-ai/seology/internal/config"
	"github.com/seology-ai/seology/internal/observability/logger"
	"github.com/seology-ai/seology/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type EngineParam struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`
}

// NewEngine builds the gin engine with recovery, request logging and HTTP
// metrics. Health and metrics endpoints are excluded from request logs.
func NewEngine(p EngineParam) *gin.Engine {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	if p.HTTPMetrics != nil {
		engine.Use(metrics.GinMiddleware(p.HTTPMetrics))
	}
	return engine
}
