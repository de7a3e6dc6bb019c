package routes

import (
	"poolride/internal/handlers"
	"poolride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up routes for signup, login and profile management
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, jwtSecret string) {
	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	// Protected profile routes
	protected := r.Group("/auth")
	protected.Use(middleware.AuthRequired(jwtSecret))
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/profile/:id", authHandler.UpdateProfile)
	}
}
