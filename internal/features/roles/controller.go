package roles

import (
	"net/http"

	users_middleware "timebridge/internal/features/users/middleware"
	"timebridge/internal/util/app_errors"

	"github.com/gin-gonic/gin"
)

type RoleController struct {
	roleService *RoleService
}

func (c *RoleController) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/roles")

	routes.GET("", c.GetRoles)
	routes.GET("/:id", c.GetRole)
	routes.POST("", c.CreateRole)
	routes.PUT("/:id", c.UpdateRole)
	routes.DELETE("/:id", c.DeleteRole)
}

// GetRoles
// @Summary List role definitions
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListRolesResponseDTO
// @Router /roles [get]
func (c *RoleController) GetRoles(ctx *gin.Context) {
	roles, err := c.roleService.GetRoles()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve roles"})
		return
	}

	ctx.JSON(http.StatusOK, ListRolesResponseDTO{Roles: roles})
}

// GetRole
// @Summary Get role definition
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Success 200 {object} Role
// @Failure 404 {object} map[string]string
// @Router /roles/{id} [get]
func (c *RoleController) GetRole(ctx *gin.Context) {
	role, err := c.roleService.GetRole(ctx.Param("id"))
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, role)
}

// CreateRole
// @Summary Create role definition
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRoleRequestDTO true "Role"
// @Success 201 {object} Role
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /roles [post]
func (c *RoleController) CreateRole(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request CreateRoleRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	role, err := c.roleService.CreateRole(&request, user)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, role)
}

// UpdateRole
// @Summary Update role definition
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Param request body UpdateRoleRequestDTO true "Role changes"
// @Success 200 {object} Role
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /roles/{id} [put]
func (c *RoleController) UpdateRole(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request UpdateRoleRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	role, err := c.roleService.UpdateRole(ctx.Param("id"), &request, user)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, role)
}

// DeleteRole
// @Summary Delete role definition
// @Tags roles
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /roles/{id} [delete]
func (c *RoleController) DeleteRole(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := c.roleService.DeleteRole(ctx.Param("id"), user); err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.Status(http.StatusNoContent)
}
