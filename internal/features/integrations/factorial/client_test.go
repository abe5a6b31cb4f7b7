package factorial

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"timebridge/internal/util/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_FetchEmployees_WithBareArray_DecodesAllRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, employeesPath, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		_, _ = w.Write([]byte(`[{"id": 7, "first_name": "Ana", "last_name": "Ruiz", "email": "ana@example.com"}]`))
	})

	employees, err := client.FetchEmployees(context.Background(), "secret")

	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, RemoteID("7"), employees[0].ID)
	assert.Equal(t, "Ana Ruiz", employees[0].DisplayName())
}

func Test_FetchShifts_WithDataEnvelope_DecodesAllRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [
			{"id": "s1", "employee_id": 7, "date": "2024-05-02", "start": "2024-05-02T09:00:00Z", "end": "2024-05-02T17:00:00Z"},
			{"id": "s2", "employee_id": 7, "date": "2024-05-03", "minutes": 90}
		]}`))
	})

	shifts, err := client.FetchShifts(context.Background(), "secret")

	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, RemoteID("7"), shifts[0].EmployeeID)
	require.NotNil(t, shifts[1].Minutes)
	assert.Equal(t, 90.0, *shifts[1].Minutes)
}

func Test_FetchProjects_WithUnexpectedShape_ReturnsEmptyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"projects": "nope"}`))
	})

	projects, err := client.FetchProjects(context.Background(), "secret")

	require.NoError(t, err)
	assert.Empty(t, projects)
}

func Test_FetchEmployees_WithMalformedRecord_SkipsOnlyThatRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "email": "a@example.com"}, {"id": {"bad": true}}, {"id": 3, "email": "c@example.com"}]`))
	})

	employees, err := client.FetchEmployees(context.Background(), "secret")

	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, RemoteID("3"), employees[1].ID)
}

func Test_FetchEmployees_WithoutAPIKey_FailsBeforeAnyRequest(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.FetchEmployees(context.Background(), "  ")

	var configurationErr *app_errors.ConfigurationError
	require.True(t, errors.As(err, &configurationErr))
	assert.Equal(t, int32(0), calls.Load())
}

func Test_FetchEmployees_WhenRemoteRejects_ReturnsStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	})

	_, err := client.FetchEmployees(context.Background(), "wrong")

	var externalErr *app_errors.ExternalServiceError
	require.True(t, errors.As(err, &externalErr))
	assert.Equal(t, http.StatusUnauthorized, externalErr.StatusCode)
	assert.Contains(t, externalErr.Body, "invalid api key")
	assert.Equal(t, http.StatusBadGateway, app_errors.HTTPStatus(err))
}

func Test_RemoteID_UnmarshalJSON_AcceptsNumbersAndStrings(t *testing.T) {
	var shift Shift
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "employee_id": " 34 ", "project_id": null}`), &shift))

	assert.Equal(t, RemoteID("12"), shift.ID)
	assert.Equal(t, RemoteID("34"), shift.EmployeeID)
	assert.Equal(t, RemoteID(""), shift.ProjectID)
}
