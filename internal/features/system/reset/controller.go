package system_reset

import (
	"net/http"

	users_middleware "timebridge/internal/features/users/middleware"
	"timebridge/internal/util/app_errors"

	"github.com/gin-gonic/gin"
)

type ResetController struct {
	resetService *ResetService
}

func (c *ResetController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/admin/reset", c.ResetAll)
}

// ResetAll
// @Summary Delete all business data
// @Description Removes every time log, invoice, project and subcontractor. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ResetResponseDTO
// @Failure 403 {object} map[string]string
// @Router /admin/reset [post]
func (c *ResetController) ResetAll(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	response, err := c.resetService.ResetAll(identity)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
