package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health           HealthService
	API              *APIHandlers
	Metrics          http.Handler
	AllowedOrigins   []string
	AllowCredentials bool
}

// NewRouter wires the HTTP routes exposed by the route service.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	if corsMiddleware, ok := buildCORS(logger, deps.AllowedOrigins, deps.AllowCredentials); ok {
		engine.Use(corsMiddleware)
	}

	engine.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := gin.H{"status": "ok"}
		if deps.Health != nil {
			if err := deps.Health.Probe(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
				payload["error"] = err.Error()
			}
		}
		c.JSON(status, payload)
	})

	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	if deps.API != nil {
		deps.API.Register(engine)
	}

	return engine
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func buildCORS(logger *slog.Logger, allowedOrigins []string, allowCredentials bool) (gin.HandlerFunc, bool) {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		switch {
		case origin == "":
		case origin == "*":
			cfg.AllowAllOrigins = true
		default:
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	if cfg.AllowAllOrigins {
		cfg.AllowOrigins = nil
		// Browsers reject credentialed responses with a wildcard origin.
		cfg.AllowCredentials = false
	}
	if !cfg.AllowAllOrigins && len(cfg.AllowOrigins) == 0 {
		return nil, false
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("cors disabled: invalid allowed origins", "error", err, "origins", allowedOrigins)
		return nil, false
	}
	return cors.New(cfg), true
}
