package handlers

import (
	"poolride/internal/middleware"
	"poolride/internal/services"
	"poolride/internal/utils"
	"poolride/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FeedbackHandler struct {
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

// SubmitFeedback records one rating of a co-rider for a completed ride
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	raterID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.FeedbackCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	feedback, err := h.feedbackService.SubmitFeedback(c.Request.Context(), raterID, &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Feedback submitted successfully", feedback)
}

// GetUserFeedback returns all feedback about a user plus the plain average
func (h *FeedbackHandler) GetUserFeedback(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	response, err := h.feedbackService.GetUserFeedback(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Feedback retrieved successfully", response)
}

// GetRideFeedback returns all feedback recorded for a ride
func (h *FeedbackHandler) GetRideFeedback(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("poolId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pool ID")
		return
	}

	feedbacks, err := h.feedbackService.GetRideFeedback(c.Request.Context(), rideID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Feedback retrieved successfully", feedbacks, &utils.Meta{Count: len(feedbacks)})
}

// GetMyFeedback returns feedback the caller has authored
func (h *FeedbackHandler) GetMyFeedback(c *gin.Context) {
	raterID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	feedbacks, err := h.feedbackService.GetMyFeedback(c.Request.Context(), raterID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Feedback retrieved successfully", feedbacks, &utils.Meta{Count: len(feedbacks)})
}
