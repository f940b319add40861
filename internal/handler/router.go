package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/limaJavier/coursetabling/internal/config"
	"github.com/limaJavier/coursetabling/internal/logger"
	"github.com/limaJavier/coursetabling/internal/metrics"
	"github.com/limaJavier/coursetabling/internal/middleware"
)

// NewRouter registers every route with the shared middleware chain.
func NewRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *metrics.Service, svc timetableService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), logger.GinMiddleware(logr), middleware.Metrics(metricsSvc))

	metricsHandler := NewMetricsHandler(metricsSvc)
	router.GET("/health", metricsHandler.Health)
	router.GET("/metrics", metricsHandler.Prometheus)

	timetableHandler := NewTimetableHandler(svc)
	api := router.Group(cfg.APIPrefix)
	api.POST("/timetables", timetableHandler.Generate)
	api.POST("/timetables/pdf", timetableHandler.RenderPDF)

	return router
}
