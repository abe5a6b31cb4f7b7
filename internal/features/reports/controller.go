package reports

import (
	"net/http"

	users_middleware "timebridge/internal/features/users/middleware"
	"timebridge/internal/util/app_errors"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	reportService *ReportService
}

func (c *ReportController) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/reports")

	routes.GET("/dashboard", c.GetDashboard)
	routes.GET("/summary", c.GetSummary)
	routes.GET("/invoice-deviations", c.GetInvoiceDeviations)
}

// GetDashboard
// @Summary Dashboard rollups
// @Description Ratified spend against budget per project, pending approvals and time log status distribution
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponseDTO
// @Failure 401 {object} map[string]string
// @Router /reports/dashboard [get]
func (c *ReportController) GetDashboard(ctx *gin.Context) {
	identity, ok := users_middleware.GetIdentityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	response, err := c.reportService.GetDashboard(identity)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetSummary
// @Summary Filtered report summary
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param projectId query string false "Project ID"
// @Param subcontractorId query string false "Subcontractor ID"
// @Param from query string false "First date, YYYY-MM-DD"
// @Param to query string false "Last date, YYYY-MM-DD"
// @Success 200 {object} SummaryResponseDTO
// @Failure 400 {object} map[string]string
// @Router /reports/summary [get]
func (c *ReportController) GetSummary(ctx *gin.Context) {
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

	response, err := c.reportService.GetSummary(identity, filter)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetInvoiceDeviations
// @Summary Invoices compared with their approved hours
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param projectId query string false "Project ID"
// @Param subcontractorId query string false "Subcontractor ID"
// @Success 200 {object} InvoiceDeviationsResponseDTO
// @Router /reports/invoice-deviations [get]
func (c *ReportController) GetInvoiceDeviations(ctx *gin.Context) {
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

	response, err := c.reportService.GetInvoiceDeviations(identity, filter)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
