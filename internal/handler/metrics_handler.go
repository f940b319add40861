package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limaJavier/coursetabling/internal/metrics"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *metrics.Service
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metricsSvc *metrics.Service) *MetricsHandler {
	return &MetricsHandler{metrics: metricsSvc}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for readiness/liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
