package users_middleware

import (
	"net/http"
	"testing"

	"timebridge/internal/features/approval"
	users_models "timebridge/internal/features/users/models"
	test_utils "timebridge/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_RequireAdmin_WithNonAdminUser_ReturnsForbidden(t *testing.T) {
	router := createMiddlewareTestRouter(&users_models.User{ID: uuid.New(), RoleID: "director"})

	test_utils.MakeGetRequest(t, router, "/admin-only", "", http.StatusForbidden)
}

func Test_RequireAdmin_WithAdminUser_PassesThrough(t *testing.T) {
	router := createMiddlewareTestRouter(&users_models.User{ID: uuid.New(), RoleID: users_models.AdminRoleID})

	test_utils.MakeGetRequest(t, router, "/admin-only", "", http.StatusOK)
}

func Test_RequireAdmin_WithoutUser_ReturnsUnauthorized(t *testing.T) {
	router := createMiddlewareTestRouter(nil)

	test_utils.MakeGetRequest(t, router, "/admin-only", "", http.StatusUnauthorized)
}

func Test_GetIdentityFromContext_WithProjectManager_ReturnsIdentity(t *testing.T) {
	user := &users_models.User{ID: uuid.New(), Email: "pm@example.com", RoleID: "project_manager"}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set("user", user)
		ctx.Next()
	})

	var identity approval.Identity
	var found bool
	router.GET("/whoami", func(ctx *gin.Context) {
		identity, found = GetIdentityFromContext(ctx)
		ctx.Status(http.StatusOK)
	})

	test_utils.MakeGetRequest(t, router, "/whoami", "", http.StatusOK)

	assert.True(t, found)
	assert.Equal(t, approval.ActorProjectManager, identity.Actor)
	assert.Equal(t, "pm@example.com", identity.Email)
}

func createMiddlewareTestRouter(user *users_models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if user != nil {
		router.Use(func(ctx *gin.Context) {
			ctx.Set("user", user)
			ctx.Next()
		})
	}

	router.GET("/admin-only", RequireAdmin(), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	return router
}
