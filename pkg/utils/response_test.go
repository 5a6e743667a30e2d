package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccessResponse_CarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(RequestIDKey, "req-1")

	SuccessResponse(c, http.StatusOK, "Query processed", map[string]string{"query": "q"})

	resp := decodeResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, map[string]interface{}{"query": "q"}, resp.Data)
}

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		code      int
		err       error
		wantError string
	}{
		{name: "client error exposes detail", code: http.StatusBadRequest, err: errors.New("missing query"), wantError: "missing query"},
		{name: "server error hides detail", code: http.StatusInternalServerError, err: errors.New("pq: connection refused")},
		{name: "no error", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponse(c, tt.code, "failed", tt.err)

			resp := decodeResponse(t, w)
			assert.Equal(t, tt.code, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Empty(t, resp.RequestID)
			assert.NotContains(t, w.Body.String(), "request_id")
		})
	}
}
