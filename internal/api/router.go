// Package api exposes the HTTP surface of the certificate service: organizer
// auth, event and participant management, template storage for the canvas
// editor, certificate issuing and the WebSocket notification bridge.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MR-Munggaran/belajar-sertif/internal/api/middleware"
	"github.com/MR-Munggaran/belajar-sertif/internal/config"
	"github.com/MR-Munggaran/belajar-sertif/internal/metrics"
)

// NewRouter builds the Gin engine with the shared middleware stack and the
// health/metrics endpoints.
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		gin.Recovery(),
		metrics.GinMiddleware(),
	)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.API.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization", "X-Correlation-ID")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.GinHandler())

	return router
}
