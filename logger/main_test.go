package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

func TestSetLoggerRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SetLogger(Config{SkipPath: []string{"/ping"}}))
	r.GET("/ping", func(c *gin.Context) {
		_, ok := c.Get("_log")
		assert.Equal(t, ok, true)
		c.String(http.StatusOK, "pong")
	})
	r.GET("/fail", func(c *gin.Context) {
		c.AbortWithStatus(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, w.Code, http.StatusOK)
	assert.NotEqual(t, w.Header().Get("X-Request-Id"), "")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set("X-Request-Id", "given-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, w.Code, http.StatusBadRequest)
	assert.Equal(t, w.Header().Get("X-Request-Id"), "given-id")
}
