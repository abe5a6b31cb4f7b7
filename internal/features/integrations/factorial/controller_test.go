package factorial

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestKey struct{}

func Test_Sync_WhenClientDisconnectsMidRun_RunsToCompletion(t *testing.T) {
	gin.SetMode(gin.TestMode)

	requestCtx, disconnect := context.WithCancel(context.WithValue(context.Background(), requestKey{}, "req-1"))
	defer disconnect()

	ginCtx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ginCtx.Request = httptest.NewRequest(http.MethodPost, "/integrations/factorial/sync", nil).WithContext(requestCtx)

	f := newSyncFixture(&fakeRemote{
		employees:      []Employee{{ID: "1", Email: "ana@example.com"}},
		projects:       []Project{{ID: "10", Name: "Bridge"}},
		shifts:         []Shift{{ID: "a", EmployeeID: "1", ProjectID: "10", Date: "2024-05-02", Minutes: minutes(60)}},
		afterEmployees: disconnect,
	}, true)

	runCtx := syncContext(ginCtx)
	report, err := f.engine.Run(runCtx, nil)

	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Employees.Upserted)
	assert.Equal(t, 1, report.Projects.Upserted)
	assert.Equal(t, 1, report.TimeEntries.Upserted)

	assert.Error(t, requestCtx.Err())
	assert.NoError(t, runCtx.Err())
	assert.Equal(t, "req-1", runCtx.Value(requestKey{}))
}
