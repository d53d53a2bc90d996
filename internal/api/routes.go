package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)
	router.GET("/api/health/db", handler.DatabaseHealth)

	// Media proxy
	router.GET("/api/media/:assetId", handler.ServeMedia)

	// Public site data
	v1 := router.Group("/api/v1")
	{
		v1.GET("/alumni", handler.ListAlumni)
		v1.GET("/alumni/cohorts", handler.ListCohorts)
		v1.GET("/resources", handler.ListResources)
		v1.GET("/media/slots/:slot", handler.ListSlotMedia)
	}

	router.POST("/api/admin/login", handler.Login)
	router.POST("/api/admin/logout", handler.Logout)

	adminGroup := router.Group("/api/admin", RequireSession())
	{
		adminGroup.GET("/session", handler.Session)

		adminGroup.POST("/alumni/upload", handler.ImportAlumni)
		adminGroup.POST("/resources/upload", handler.ImportResources)
		adminGroup.POST("/media/activity", handler.CreateMedia)
		adminGroup.GET("/batches/:batch_id", handler.GetBatch)

		adminGroup.GET("/alumni", handler.ListAlumniAdmin)
		adminGroup.POST("/alumni", handler.CreateAlumni)
		adminGroup.GET("/alumni/:id", handler.GetAlumniAdmin)
		adminGroup.PUT("/alumni/:id", handler.UpdateAlumni)
		adminGroup.POST("/alumni/:id/archive", handler.ArchiveAlumni)
		adminGroup.POST("/alumni/:id/unarchive", handler.UnarchiveAlumni)

		adminGroup.GET("/resources", handler.ListResourcesAdmin)
		adminGroup.POST("/resources", handler.CreateResource)
		adminGroup.PUT("/resources/:id", handler.UpdateResource)
		adminGroup.DELETE("/resources/:id", handler.DeleteResource)

		adminGroup.GET("/media", handler.ListMediaAdmin)
		adminGroup.PUT("/media/:id", handler.UpdateMedia)
		adminGroup.DELETE("/media/:id", handler.DeleteMedia)
	}
}

// NewRouter assembles the engine with the shared middleware chain.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware(handler.cfg.Server.AllowedOrigins))
	router.Use(SessionMiddleware(handler.Tokens))
	router.MaxMultipartMemory = 32 << 20

	SetupRoutes(router, handler)
	return router
}
