package quota

import (
	"net/http"

	users_middleware "timebridge/internal/features/users/middleware"
	"timebridge/internal/util/app_errors"

	"github.com/gin-gonic/gin"
)

type QuotaController struct {
	quotaService *QuotaService
}

type ProjectUsageResponseDTO struct {
	Usages []*Usage `json:"usages"`
}

func (c *QuotaController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/projects/:id/quota", c.GetProjectUsage)
	router.GET("/projects/:id/quota/:subcontractorId", c.GetAssignmentUsage)
}

// GetProjectUsage
// @Summary Quota usage of every assignment of a project
// @Tags quota
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectUsageResponseDTO
// @Failure 404 {object} map[string]string
// @Router /projects/{id}/quota [get]
func (c *QuotaController) GetProjectUsage(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	usages, err := c.quotaService.GetProjectUsage(identity, ctx.Param("id"))
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, ProjectUsageResponseDTO{Usages: usages})
}

// GetAssignmentUsage
// @Summary Quota usage of one subcontractor on a project
// @Tags quota
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param subcontractorId path string true "Subcontractor ID"
// @Success 200 {object} Usage
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /projects/{id}/quota/{subcontractorId} [get]
func (c *QuotaController) GetAssignmentUsage(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	usage, err := c.quotaService.GetAssignmentUsage(identity, ctx.Param("id"), ctx.Param("subcontractorId"))
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, usage)
}
