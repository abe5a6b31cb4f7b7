package factorial

import (
	"context"
	"net/http"
	"strconv"

	users_middleware "timebridge/internal/features/users/middleware"
	"timebridge/internal/util/app_errors"
	"timebridge/internal/util/rate_limit"

	"github.com/gin-gonic/gin"
)

const (
	manualSyncsPerMinute = 2
	manualSyncBurst      = 2
)

type FactorialController struct {
	syncEngine      *SyncEngine
	settingsService *SettingsService
	rateLimiter     *rate_limit.RateLimiter
}

func (c *FactorialController) RegisterRoutes(router *gin.RouterGroup) {
	routes := router.Group("/integrations/factorial")

	routes.POST("/sync", c.Sync)
	routes.GET("/settings", c.GetSettings)
	routes.PUT("/settings", c.UpdateSettings)
}

// Sync
// @Summary Run a Factorial sync now
// @Description Imports employees, projects and shifts. Fails with 409 while another sync runs.
// @Tags integrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SyncReport
// @Failure 409 {object} map[string]string
// @Failure 412 {object} map[string]string "API key not configured"
// @Failure 429 {object} map[string]string
// @Failure 502 {object} SyncReport "Factorial responded with an error"
// @Router /integrations/factorial/sync [post]
func (c *FactorialController) Sync(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, err := c.rateLimiter.CheckRateLimit(user.ID.String(), manualSyncsPerMinute, manualSyncBurst)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check rate limit"})
		return
	}
	if !limit.Allowed {
		ctx.Header("Retry-After", strconv.Itoa(limit.RetryAfterSec))
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
		return
	}

	userID := user.ID
	report, err := c.syncEngine.Run(syncContext(ctx), &userID)
	if err != nil {
		if report != nil {
			ctx.JSON(app_errors.HTTPStatus(err), report)
			return
		}

		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// syncContext keeps the request's values but not its cancellation: a sync
// that started runs to completion or failure even if the client goes away.
func syncContext(ctx *gin.Context) context.Context {
	return context.WithoutCancel(ctx.Request.Context())
}

// GetSettings
// @Summary Get Factorial integration settings
// @Description The API key is never returned, only a masked form
// @Tags integrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SettingsResponseDTO
// @Router /integrations/factorial/settings [get]
func (c *FactorialController) GetSettings(ctx *gin.Context) {
	settings, err := c.settingsService.GetSettings()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, settings)
}

// UpdateSettings
// @Summary Update Factorial integration settings
// @Tags integrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateSettingsRequestDTO true "Settings"
// @Success 200 {object} SettingsResponseDTO
// @Failure 403 {object} map[string]string
// @Router /integrations/factorial/settings [put]
func (c *FactorialController) UpdateSettings(ctx *gin.Context) {
	user, ok := users_middleware.GetUserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var request UpdateSettingsRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	settings, err := c.settingsService.UpdateSettings(&request, user)
	if err != nil {
		ctx.JSON(app_errors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, settings)
}
