package routes

import (
	"poolride/internal/handlers"
	"poolride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPoolRoutes sets up routes for pool lifecycle and membership
func SetupPoolRoutes(r *gin.RouterGroup, poolHandler *handlers.PoolHandler, jwtSecret string) {
	pools := r.Group("/pools")
	pools.Use(middleware.AuthRequired(jwtSecret))
	{
		pools.POST("/", poolHandler.CreatePool)
		pools.GET("/", poolHandler.ListPools)
		pools.GET("/my-pools", poolHandler.ListMyPools)
		pools.GET("/:id", poolHandler.GetPool)
		pools.POST("/:id/join", poolHandler.JoinPool)
		pools.POST("/:id/leave", poolHandler.LeavePool)
		pools.PATCH("/:id/status", poolHandler.UpdateStatus)
		pools.DELETE("/:id", poolHandler.DeletePool)

		// Maintenance
		pools.POST("/cleanup", poolHandler.CleanupOldPools)
	}
}
