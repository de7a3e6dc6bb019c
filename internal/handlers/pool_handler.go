package handlers

import (
	"poolride/internal/middleware"
	"poolride/internal/models"
	"poolride/internal/services"
	"poolride/internal/utils"
	"poolride/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PoolHandler struct {
	poolService services.PoolService
}

func NewPoolHandler(poolService services.PoolService) *PoolHandler {
	return &PoolHandler{
		poolService: poolService,
	}
}

// CreatePool creates a new pool with the caller auto-joined as creator
func (h *PoolHandler) CreatePool(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.PoolCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	pool, err := h.poolService.CreatePool(c.Request.Context(), userID, &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Pool created successfully", pool)
}

// ListPools lists pools by status/type/date, optionally restricted to the
// pools the caller is eligible to see
func (h *PoolHandler) ListPools(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var query validators.PoolListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query: "+err.Error())
		return
	}

	page := utils.GetPaginationParams(c)
	if c.Query("sort") == "" {
		// Pools list soonest-first unless the caller asks otherwise.
		page.Sort = "date"
		page.Order = "asc"
	}

	pools, meta, err := h.poolService.ListPools(c.Request.Context(), userID, &query, page)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Pools retrieved successfully", pools, &utils.Meta{Pagination: meta, Count: len(pools)})
}

// ListMyPools lists pools the caller created or joined
func (h *PoolHandler) ListMyPools(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	pools, err := h.poolService.ListMyPools(c.Request.Context(), userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Pools retrieved successfully", pools, &utils.Meta{Count: len(pools)})
}

// GetPool returns one pool by id
func (h *PoolHandler) GetPool(c *gin.Context) {
	poolID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pool ID")
		return
	}

	pool, err := h.poolService.GetPool(c.Request.Context(), poolID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Pool retrieved successfully", pool)
}

// JoinPool adds the caller to an upcoming pool
func (h *PoolHandler) JoinPool(c *gin.Context) {
	poolID, userID, ok := h.poolAndCaller(c)
	if !ok {
		return
	}

	result, err := h.poolService.JoinPool(c.Request.Context(), poolID, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result.Message, result)
}

// LeavePool removes the caller from an upcoming pool
func (h *PoolHandler) LeavePool(c *gin.Context) {
	poolID, userID, ok := h.poolAndCaller(c)
	if !ok {
		return
	}

	result, err := h.poolService.LeavePool(c.Request.Context(), poolID, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result.Message, result)
}

// UpdateStatus transitions a pool to ongoing, completed, or cancelled
func (h *PoolHandler) UpdateStatus(c *gin.Context) {
	poolID, userID, ok := h.poolAndCaller(c)
	if !ok {
		return
	}

	var request validators.PoolStatusUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if validationErrors := validators.ValidatePoolStatusUpdate(&request); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors.Details())
		return
	}

	result, err := h.poolService.UpdateStatus(c.Request.Context(), poolID, userID, models.PoolStatus(request.Status))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result.Message, result)
}

// DeletePool hard-deletes a pool while the creator is its only rider
func (h *PoolHandler) DeletePool(c *gin.Context) {
	poolID, userID, ok := h.poolAndCaller(c)
	if !ok {
		return
	}

	if err := h.poolService.DeletePool(c.Request.Context(), poolID, userID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Pool deleted successfully", nil)
}

// CleanupOldPools deletes completed pools past the retention window
func (h *PoolHandler) CleanupOldPools(c *gin.Context) {
	deleted, err := h.poolService.CleanupOldPools(c.Request.Context())
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Cleanup completed", gin.H{"deleted": deleted})
}

func (h *PoolHandler) poolAndCaller(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	poolID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pool ID")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	return poolID, userID, true
}
