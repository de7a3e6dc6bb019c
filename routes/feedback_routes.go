package routes

import (
	"poolride/internal/handlers"
	"poolride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupFeedbackRoutes sets up routes for ride feedback
func SetupFeedbackRoutes(r *gin.RouterGroup, feedbackHandler *handlers.FeedbackHandler, jwtSecret string) {
	feedback := r.Group("/feedback")
	feedback.Use(middleware.AuthRequired(jwtSecret))
	{
		feedback.POST("/", feedbackHandler.SubmitFeedback)
		feedback.GET("/my-feedback", feedbackHandler.GetMyFeedback)
		feedback.GET("/user/:userId", feedbackHandler.GetUserFeedback)
		feedback.GET("/pool/:poolId", feedbackHandler.GetRideFeedback)
	}
}
