package realtime

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"timebridge/internal/util/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func Test_RegisterRoutes_GuardsEachStreamWithItsSectionPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := &RealtimeController{hub: NewHub(logger.GetLogger())}

	guardedPaths := make(map[string]bool)
	denyAll := func(path string) gin.HandlerFunc {
		guardedPaths[path] = true

		return func(ctx *gin.Context) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "denied " + path})
		}
	}

	router := gin.New()
	controller.RegisterRoutes(router.Group(""), denyAll)

	assert.Equal(t, map[string]bool{
		"/projects":       true,
		"/subcontractors": true,
		"/timelogs":       true,
		"/invoices":       true,
	}, guardedPaths)

	for _, collection := range []string{CollectionTimeLogs, CollectionInvoices} {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/realtime/"+collection, nil))
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/realtime/"+CollectionUsers, nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, 0, controller.hub.SubscriberCount(CollectionTimeLogs))
}
