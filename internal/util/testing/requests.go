package test_utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestResponse struct {
	StatusCode int
	Body       []byte
}

func MakeGetRequest(
	t *testing.T,
	router *gin.Engine,
	url, authorization string,
	expectedStatus int,
) *TestResponse {
	return MakeRequest(t, router, http.MethodGet, url, authorization, nil, expectedStatus)
}

func MakeGetRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url, authorization string,
	expectedStatus int,
	target any,
) {
	response := MakeGetRequest(t, router, url, authorization, expectedStatus)
	require.NoError(t, json.Unmarshal(response.Body, target), "body: %s", string(response.Body))
}

func MakePostRequest(
	t *testing.T,
	router *gin.Engine,
	url, authorization string,
	body any,
	expectedStatus int,
) *TestResponse {
	return MakeRequest(t, router, http.MethodPost, url, authorization, body, expectedStatus)
}

func MakePostRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url, authorization string,
	body any,
	expectedStatus int,
	target any,
) {
	response := MakePostRequest(t, router, url, authorization, body, expectedStatus)
	require.NoError(t, json.Unmarshal(response.Body, target), "body: %s", string(response.Body))
}

func MakeRequest(
	t *testing.T,
	router *gin.Engine,
	method, url, authorization string,
	body any,
	expectedStatus int,
) *TestResponse {
	var requestBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		requestBody = bytes.NewBuffer(data)
	} else {
		requestBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, requestBody)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, expectedStatus, recorder.Code, "unexpected status, body: %s", recorder.Body.String())

	return &TestResponse{
		StatusCode: recorder.Code,
		Body:       recorder.Body.Bytes(),
	}
}
