package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fundigo/middleware"
)

func TestGetLoggerPrefersRequestScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	scoped := zap.NewNop()
	c.Set("logger", scoped)

	if got := getLogger(c); got != scoped {
		t.Error("context logger not returned")
	}
}

func TestGetLoggerFallsBackToSharedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if getLogger(c) == nil {
		t.Error("expected the shared logger when no request logger is set")
	}
}

func TestRequestLoggerMiddlewareStashesLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(zap.NewNop()))

	var stashed bool
	r.GET("/ping", func(c *gin.Context) {
		_, stashed = c.Get("logger")
		c.Status(200)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ping", nil))

	if !stashed {
		t.Error("middleware did not stash a request logger on the context")
	}
}
