package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fyerfyer/legal-summary/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newMiddlewareRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.SetTraceID())
	router.Use(middleware.ErrorMiddleware())

	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	router.GET("/plain", func(c *gin.Context) {
		middleware.HandleError(c, errors.New("disk unreadable"))
	})
	router.GET("/pointer", func(c *gin.Context) {
		err := middleware.NewNotFoundError("没有找到")
		middleware.HandleError(c, &err)
	})
	router.GET("/wrapped", func(c *gin.Context) {
		middleware.HandleError(c, errors.Join(middleware.NewBusinessError("业务错误"), errors.New("cause")))
	})
	return router
}

func TestErrorMiddleware(t *testing.T) {
	router := newMiddlewareRouter()

	tests := []struct {
		path   string
		status int
	}{
		{"/panic", http.StatusInternalServerError},
		{"/plain", http.StatusInternalServerError},
		{"/pointer", http.StatusNotFound},
		{"/wrapped", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("X-Trace-ID", "trace-123")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w, nil)
			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, "trace-123", resp.TraceID)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestCors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Cors())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
