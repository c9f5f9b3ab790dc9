package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func run(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/test", handler)
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSuccess(t *testing.T) {
	w := run(func(c *gin.Context) {
		Success(c, gin.H{"hello": "world"})
	})

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestError_DefaultMessage(t *testing.T) {
	w := run(func(c *gin.Context) {
		Error(c, CodeQuotaExceeded, "")
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeQuotaExceeded, resp.Code)
	assert.Equal(t, codeMessages[CodeQuotaExceeded], resp.Message)
}

func TestError_CustomMessage(t *testing.T) {
	w := run(func(c *gin.Context) {
		PlanError(c, "需要 Elite 套餐")
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodePlanRequired, resp.Code)
	assert.Equal(t, "需要 Elite 套餐", resp.Message)
}

func TestSuccessPage(t *testing.T) {
	w := run(func(c *gin.Context) {
		SuccessPage(c, 42, 2, 20, []string{"a", "b"})
	})

	resp := parseResponse(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 42, data["total"])
	assert.EqualValues(t, 2, data["page"])
}
