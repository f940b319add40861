package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/limaJavier/coursetabling/internal/config"
	"github.com/limaJavier/coursetabling/internal/middleware"
	"github.com/limaJavier/coursetabling/pkg/model"
)

func New(cfg config.LogConfig, env string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if cfg.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		reqID := middleware.RequestIDValue(c)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		if reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}

		l.Info("http_request", fields...)
	}
}

// InstanceFields describe the size of a problem instance
func InstanceFields(input model.ModelInput) []zap.Field {
	return []zap.Field{
		zap.Int("courses", len(input.Courses)),
		zap.Int("teachers", len(input.Teachers)),
		zap.Int("rooms", len(input.Rooms)),
		zap.Int("slots", len(input.Slots)),
		zap.Int("students", len(input.Students)),
	}
}

// ResultFields describe how a solve ended
func ResultFields(result model.Result) []zap.Field {
	return []zap.Field{
		zap.Stringer("status", result.Status),
		zap.Uint64("steps", result.Stats.Steps),
		zap.Uint64("backtracks", result.Stats.Backtracks),
		zap.Duration("duration", result.Stats.Duration),
	}
}
