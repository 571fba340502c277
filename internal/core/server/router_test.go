package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	resp "jobboard/internal/transport/http/response"
)

func TestNewRouter_PanicBecomesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop(), []string{"https://jobs.example.com"})
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, resp.CodeServerError, out.Code)
	assert.Equal(t, "internal error", out.Msg)
}

func TestNewRouter_CORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop(), []string{"https://jobs.example.com"})
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://jobs.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://jobs.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", Addr("0.0.0.0", 8080))
}
