package timelogs

import (
	"net/http"

	users_middleware "timebridge/internal/features/users/middleware"
	"timebridge/internal/util/app_errors"

	"github.com/gin-gonic/gin"
)

type TimeLogController struct {
	timeLogService *TimeLogService
}

func (c *TimeLogController) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/timelogs")

	routes.POST("", c.Submit)
	routes.POST("/batch", c.SubmitBatch)
	routes.GET("", c.List)
	routes.GET("/pending-approvals", c.PendingApprovals)
	routes.GET("/my-projects", c.MyProjects)
	routes.GET("/:id", c.Get)
	routes.DELETE("/:id", c.Delete)
	routes.POST("/:id/status", c.ChangeStatus)
}

// Submit
// @Summary Log hours
// @Tags timelogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitTimeLogRequestDTO true "Time log"
// @Success 201 {object} TimeLog
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /timelogs [post]
func (c *TimeLogController) Submit(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request SubmitTimeLogRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	timeLog, err := c.timeLogService.Submit(identity, &request)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, timeLog)
}

// SubmitBatch
// @Summary Log a week of hours
// @Description Stores every non-empty row of a weekly grid, or none of them
// @Tags timelogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitBatchRequestDTO true "Weekly grid"
// @Success 201 {object} SubmitBatchResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /timelogs/batch [post]
func (c *TimeLogController) SubmitBatch(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request SubmitBatchRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.timeLogService.SubmitBatch(identity, &request)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// List
// @Summary List time logs
// @Tags timelogs
// @Produce json
// @Security BearerAuth
// @Param projectId query string false "Project ID"
// @Param subcontractorId query string false "Subcontractor ID"
// @Param status query string false "Status"
// @Param from query string false "First date, YYYY-MM-DD"
// @Param to query string false "Last date, YYYY-MM-DD"
// @Success 200 {object} ListTimeLogsResponseDTO
// @Router /timelogs [get]
func (c *TimeLogController) List(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var filter Filter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	timeLogs, err := c.timeLogService.List(identity, filter)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, ListTimeLogsResponseDTO{TimeLogs: timeLogs})
}

// PendingApprovals
// @Summary List time logs awaiting the caller's decision
// @Tags timelogs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListTimeLogsResponseDTO
// @Router /timelogs/pending-approvals [get]
func (c *TimeLogController) PendingApprovals(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	timeLogs, err := c.timeLogService.PendingApprovals(identity)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, ListTimeLogsResponseDTO{TimeLogs: timeLogs})
}

// MyProjects
// @Summary List projects the caller may log hours on
// @Tags timelogs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MyProjectsResponseDTO
// @Router /timelogs/my-projects [get]
func (c *TimeLogController) MyProjects(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := c.timeLogService.MyProjects(identity)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	ctx.JSON(http.StatusOK, MyProjectsResponseDTO{Projects: projects})
}

// Get
// @Summary Get time log
// @Tags timelogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Time log ID"
// @Success 200 {object} TimeLog
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /timelogs/{id} [get]
func (c *TimeLogController) Get(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	timeLog, err := c.timeLogService.Get(identity, ctx.Param("id"))
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, timeLog)
}

// Delete
// @Summary Delete a pending time log
// @Tags timelogs
// @Security BearerAuth
// @Param id path string true "Time log ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /timelogs/{id} [delete]
func (c *TimeLogController) Delete(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := c.timeLogService.Delete(identity, ctx.Param("id")); err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ChangeStatus
// @Summary Approve, reject or ratify a time log
// @Tags timelogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Time log ID"
// @Param request body ChangeStatusRequestDTO true "Target status"
// @Success 200 {object} approval.TransitionResult
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /timelogs/{id}/status [post]
func (c *TimeLogController) ChangeStatus(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request ChangeStatusRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := c.timeLogService.Transition(identity, ctx.Param("id"), request.Status, request.Feedback)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}
