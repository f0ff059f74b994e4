package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MR-Munggaran/belajar-sertif/internal/api/middleware"
	"github.com/MR-Munggaran/belajar-sertif/internal/auth"
	"github.com/MR-Munggaran/belajar-sertif/internal/export"
	"github.com/MR-Munggaran/belajar-sertif/internal/storage"
)

// RegisterRoutes mounts every API route under /v1.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
	exporter *export.Exporter,
	clamdAddr string,
	allowedOrigins []string,
) {
	authHandler := NewAuthHandler(db, authService, redisClient, logger)
	eventHandler := NewEventHandler(db, storageClient)
	participantHandler := NewParticipantHandler(db)
	templateHandler := NewTemplateHandler(db, exporter)
	certificateHandler := NewCertificateHandler(db, asynqClient, storageClient)
	assetHandler := NewAssetHandler(storageClient, logger, clamdAddr)
	wsHandler := NewWsHandler(redisClient, authService, logger, allowedOrigins)
	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		eventGroup := v1.Group("/events")
		eventGroup.Use(authMiddleware)
		{
			eventGroup.POST("", eventHandler.CreateEvent)
			eventGroup.GET("", eventHandler.ListEvents)
			eventGroup.GET("/:id", eventHandler.GetEvent)
			eventGroup.PUT("/:id", eventHandler.UpdateEvent)
			eventGroup.DELETE("/:id", eventHandler.DeleteEvent)

			eventGroup.POST("/:id/participants", participantHandler.AddParticipant)
			eventGroup.GET("/:id/participants", participantHandler.ListParticipants)
			eventGroup.DELETE("/:id/participants/:participantID", participantHandler.RemoveParticipant)
			eventGroup.POST("/:id/participants/import", participantHandler.ImportParticipants)
		}

		templateGroup := v1.Group("/templates")
		templateGroup.Use(authMiddleware)
		{
			templateGroup.POST("", templateHandler.CreateTemplate)
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
			templateGroup.PUT("/:id", templateHandler.UpdateTemplate)
			templateGroup.DELETE("/:id", templateHandler.DeleteTemplate)
			templateGroup.GET("/:id/preview", templateHandler.PreviewTemplate)
		}

		certificateGroup := v1.Group("/certificates")
		certificateGroup.Use(authMiddleware)
		{
			certificateGroup.POST("", certificateHandler.IssueCertificate)
			certificateGroup.POST("/bulk", certificateHandler.BulkIssue)
			certificateGroup.GET("/:id", certificateHandler.GetCertificate)
			certificateGroup.GET("/:id/download-link", certificateHandler.GetDownloadLink)
		}

		assetGroup := v1.Group("/assets")
		assetGroup.Use(authMiddleware)
		{
			assetGroup.POST("/upload", assetHandler.UploadAsset)
			assetGroup.GET("", assetHandler.ListAssets)
			assetGroup.GET("/view", assetHandler.GetAssetURL)
			assetGroup.DELETE("", assetHandler.DeleteAsset)
		}
	}
}
