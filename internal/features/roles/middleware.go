package roles

import (
	"net/http"

	"timebridge/internal/features/approval"
	users_middleware "timebridge/internal/features/users/middleware"

	"github.com/gin-gonic/gin"
)

// RequirePath lets the request through only when the user's role allows
// path. It must run after the auth middleware.
func RequirePath(roleService *RoleService, path string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := users_middleware.GetUserFromContext(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			ctx.Abort()
			return
		}

		allowed, err := roleService.CanAccessPath(user, path)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check role permissions"})
			ctx.Abort()
			return
		}

		if !allowed {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Your role does not grant access to " + path})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

// RequireUnscopedPath is RequirePath for endpoints that expose every record
// of a section and cannot be narrowed to the caller's own. Subcontractors are
// refused there even when their role allows path.
func RequireUnscopedPath(roleService *RoleService, path string) gin.HandlerFunc {
	requirePath := RequirePath(roleService, path)

	return func(ctx *gin.Context) {
		identity, ok := users_middleware.GetIdentityFromContext(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			ctx.Abort()
			return
		}

		if identity.Actor == approval.ActorSubcontractor {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Subcontractors can only read their own records"})
			ctx.Abort()
			return
		}

		requirePath(ctx)
	}
}
