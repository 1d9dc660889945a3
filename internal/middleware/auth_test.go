package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// httptest.NewRecorder() captures the response without starting a real
// server, so middleware is tested in isolation without network I/O.

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		key, _ := c.Get(ContextKeyAPIKey)
		c.JSON(http.StatusOK, gin.H{"key": key})
	})
	return router
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		header string
		query  string
		want   int
	}{
		{"valid header", []string{"k1", "k2"}, "k2", "", http.StatusOK},
		{"valid query param", []string{"k1"}, "", "api_key=k1", http.StatusOK},
		{"missing", []string{"k1"}, "", "", http.StatusUnauthorized},
		{"invalid", []string{"k1"}, "nope", "", http.StatusUnauthorized},
		{"open without keys", nil, "", "", http.StatusOK},
		{"blank keys are ignored", []string{""}, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(APIKeyAuth(tt.keys))

			req := httptest.NewRequest(http.MethodGet, "/test?"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestAdminKeyAuth(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		header string
		want   int
	}{
		{"valid", []string{"admin"}, "admin", http.StatusOK},
		{"invalid", []string{"admin"}, "user", http.StatusForbidden},
		{"missing", []string{"admin"}, "", http.StatusUnauthorized},
		{"closed without keys", nil, "anything", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(AdminKeyAuth(tt.keys))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
