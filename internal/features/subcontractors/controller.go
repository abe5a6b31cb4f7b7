package subcontractors

import (
	"net/http"

	users_middleware "timebridge/internal/features/users/middleware"
	"timebridge/internal/util/app_errors"

	"github.com/gin-gonic/gin"
)

type SubcontractorController struct {
	subcontractorService *SubcontractorService
}

func (c *SubcontractorController) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/subcontractors")

	routes.POST("", c.Create)
	routes.GET("", c.List)
	routes.GET("/:id", c.Get)
	routes.PUT("/:id", c.Update)
	routes.DELETE("/:id", c.Delete)
}

// Create
// @Summary Create subcontractor
// @Tags subcontractors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSubcontractorRequestDTO true "Subcontractor data"
// @Success 201 {object} Subcontractor
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /subcontractors [post]
func (c *SubcontractorController) Create(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request CreateSubcontractorRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	subcontractor, err := c.subcontractorService.Create(&request, identity)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, subcontractor)
}

// List
// @Summary List subcontractors
// @Tags subcontractors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListSubcontractorsResponseDTO
// @Router /subcontractors [get]
func (c *SubcontractorController) List(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subcontractors, err := c.subcontractorService.List(identity)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subcontractors"})
		return
	}

	ctx.JSON(http.StatusOK, ListSubcontractorsResponseDTO{Subcontractors: subcontractors})
}

// Get
// @Summary Get subcontractor
// @Tags subcontractors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subcontractor ID"
// @Success 200 {object} Subcontractor
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subcontractors/{id} [get]
func (c *SubcontractorController) Get(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subcontractor, err := c.subcontractorService.Get(ctx.Param("id"), identity)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, subcontractor)
}

// Update
// @Summary Update subcontractor
// @Tags subcontractors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subcontractor ID"
// @Param request body UpdateSubcontractorRequestDTO true "Subcontractor data"
// @Success 200 {object} Subcontractor
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subcontractors/{id} [put]
func (c *SubcontractorController) Update(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request UpdateSubcontractorRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	subcontractor, err := c.subcontractorService.Update(ctx.Param("id"), &request, identity)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, subcontractor)
}

// Delete
// @Summary Delete subcontractor
// @Description Fails with 409 while time logs or invoices reference the subcontractor
// @Tags subcontractors
// @Security BearerAuth
// @Param id path string true "Subcontractor ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /subcontractors/{id} [delete]
func (c *SubcontractorController) Delete(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := c.subcontractorService.Delete(ctx.Param("id"), identity); err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Subcontractor deleted successfully"})
}
