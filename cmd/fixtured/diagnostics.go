package main

import (
	"net/http"
	"time"

	"github.com/danmuck/fixturectl/internal/config"
	"github.com/danmuck/fixturectl/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// serveDiagnostics exposes link metrics and a liveness probe for bench
// dashboards. It never takes the fixture link down with it.
func serveDiagnostics(cfg config.DiagnosticsConfig, logger zerolog.Logger) {
	observability.RegisterMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))

	if len(cfg.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CorsOrigins,
			AllowMethods: []string{http.MethodGet},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/statusz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Info().Str("addr", cfg.Addr).Msg("diagnostics listening")
	if err := r.Run(cfg.Addr); err != nil {
		logger.Error().Err(err).Msg("diagnostics server failed")
	}
}
