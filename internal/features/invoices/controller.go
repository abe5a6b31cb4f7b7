package invoices

import (
	"net/http"

	users_middleware "timebridge/internal/features/users/middleware"
	"timebridge/internal/util/app_errors"

	"github.com/gin-gonic/gin"
)

type InvoiceController struct {
	invoiceService *InvoiceService
}

func (c *InvoiceController) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/invoices")

	routes.POST("", c.Create)
	routes.GET("", c.List)
	routes.GET("/:id", c.Get)
	routes.DELETE("/:id", c.Delete)
	routes.POST("/:id/status", c.ChangeStatus)
}

// Create
// @Summary Submit an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInvoiceRequestDTO true "Invoice"
// @Success 201 {object} Invoice
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /invoices [post]
func (c *InvoiceController) Create(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request CreateInvoiceRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	invoice, err := c.invoiceService.Create(identity, &request)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, invoice)
}

// List
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param projectId query string false "Project ID"
// @Param subcontractorId query string false "Subcontractor ID"
// @Param status query string false "Status"
// @Param period query string false "Period, YYYY-MM"
// @Success 200 {object} ListInvoicesResponseDTO
// @Router /invoices [get]
func (c *InvoiceController) List(ctx *gin.Context) {
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

	invoices, err := c.invoiceService.List(identity, filter)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, ListInvoicesResponseDTO{Invoices: invoices})
}

// Get
// @Summary Get invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} Invoice
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /invoices/{id} [get]
func (c *InvoiceController) Get(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	invoice, err := c.invoiceService.Get(identity, ctx.Param("id"))
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, invoice)
}

// Delete
// @Summary Delete a pending invoice
// @Tags invoices
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /invoices/{id} [delete]
func (c *InvoiceController) Delete(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := c.invoiceService.Delete(identity, ctx.Param("id")); err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ChangeStatus
// @Summary Approve, reject or ratify an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param request body ChangeStatusRequestDTO true "Target status"
// @Success 200 {object} approval.TransitionResult
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /invoices/{id}/status [post]
func (c *InvoiceController) ChangeStatus(ctx *gin.Context) {
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

	result, err := c.invoiceService.Transition(identity, ctx.Param("id"), request.Status, request.Feedback)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}
